package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/store/base"
	"github.com/dalemusser/folio/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateExternalID is returned when a user with the same identity
// provider key already exists.
var ErrDuplicateExternalID = errors.New("a user with this external id already exists")

var errNoExternalID = errors.New("external id is required")

type Store struct {
	*base.Repository[models.User]
}

func New(db *mongo.Database) *Store {
	return &Store{Repository: base.New[models.User](db)}
}

// Create inserts a new user. Role, plan and status default to user, free
// and active.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	out, err := s.Repository.Create(ctx, u)
	if errors.Is(err, base.ErrDuplicate) {
		return out, ErrDuplicateExternalID
	}
	return out, err
}

// GetByExternalID loads a user by identity-provider key. Returns nil if
// there is none.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.FindOne(ctx, bson.M{"external_id": strings.TrimSpace(externalID)})
}

// SyncFromIdentity records what the identity provider reports about a user.
// The first sync creates the account with default role, plan and status;
// later syncs refresh email and name (when given) and leave role, plan and
// status alone.
func (s *Store) SyncFromIdentity(ctx context.Context, externalID, email, name string) (*models.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errNoExternalID
	}

	set := bson.M{}
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		set["email"] = e
	}
	if n := strings.TrimSpace(name); n != "" {
		set["name"] = n
	}
	if err := s.Schema().ValidateSet(set); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set["updated_at"] = now
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"role":       models.RoleUser,
			"plan":       models.PlanFree,
			"status":     models.UserStatusActive,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	err := s.Collection().FindOneAndUpdate(ctx, bson.M{"external_id": externalID}, update, opts).Decode(&u)
	if wafflemongo.IsDup(err) {
		// Two first-syncs raced; the loser's upsert hit the unique index and
		// the account now exists, so a plain update succeeds.
		err = s.Collection().FindOneAndUpdate(ctx, bson.M{"external_id": externalID}, bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	}
	if err != nil {
		return nil, fmt.Errorf("sync user %q: %w", externalID, err)
	}
	return &u, nil
}
