// internal/app/store/portfolios/portfoliostore.go
package portfoliostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dalemusser/folio/internal/app/store/base"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/app/system/paging"
	"github.com/dalemusser/folio/internal/app/system/slug"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateSlug is returned when an explicitly chosen slug is taken.
// It also matches base.ErrDuplicate.
var ErrDuplicateSlug = errors.New("portfolio slug already in use")

// slugAttempts bounds how many random suffixes Create tries for a derived slug.
const slugAttempts = 3

const (
	viewsCollection     = "portfolio_views"
	templatesCollection = "templates"
)

// Sort keys accepted by FindByUserID.
const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortViewCount = "viewCount"
	SortName      = "name"
)

var sortFields = map[string]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortViewCount: "view_count",
	SortName:      "profile.name",
}

// searchFields are matched (case-insensitively) by Filters.Search.
var searchFields = []string{"slug", "profile.name", "profile.title", "profile.bio"}

// Detail is a portfolio with its template joined in. Template is nil when
// the referenced template no longer exists.
type Detail struct {
	models.Portfolio `bson:",inline"`
	Template         *models.Template `bson:"template,omitempty" json:"template,omitempty"`
}

// Summary is one row of a user's portfolio listing.
type Summary struct {
	models.Portfolio `bson:",inline"`
	Template         *models.Template `bson:"template,omitempty" json:"template,omitempty"`
	ViewCount        int64            `bson:"view_count" json:"viewCount"`
}

// Filters narrows and orders FindByUserID. Zero values mean "no filter" and
// the paging defaults.
type Filters struct {
	Status     string
	TemplateID *primitive.ObjectID
	Search     string
	SortBy     string // createdAt | updatedAt | viewCount | name
	SortOrder  string // asc | desc
	Page       int
	Limit      int
}

// List is the paginated listing envelope returned by FindByUserID.
type List struct {
	Portfolios []Summary `json:"portfolios"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// Store is the portfolio repository. The generic CRUD methods come from the
// embedded base repository; Create is overridden to derive slugs.
type Store struct {
	*base.Repository[models.Portfolio]
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{Repository: base.New[models.Portfolio](db), db: db}
}

// Create stores a new portfolio. When Slug is empty one is derived from the
// profile name; if that slug is taken a short random suffix is appended.
// An explicit slug that is taken fails with ErrDuplicateSlug.
func (s *Store) Create(ctx context.Context, p models.Portfolio) (models.Portfolio, error) {
	p.Profile.Bio = htmlsanitize.Sanitize(p.Profile.Bio)

	derived := strings.TrimSpace(p.Slug) == ""
	if !derived {
		out, err := s.Repository.Create(ctx, p)
		if errors.Is(err, base.ErrDuplicate) {
			return out, fmt.Errorf("%w: %w", ErrDuplicateSlug, err)
		}
		return out, err
	}

	root := slug.Generate(p.Profile.Name)
	if len(root) < slug.MinLen {
		root = "portfolio"
	}
	p.Slug = root
	for attempt := 0; ; attempt++ {
		out, err := s.Repository.Create(ctx, p)
		if !errors.Is(err, base.ErrDuplicate) || attempt == slugAttempts {
			return out, err
		}
		p.Slug = slug.WithSuffix(root, shortID())
	}
}

// Update merges set into the portfolio. A profile bio in set is sanitized;
// set itself is left untouched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Portfolio, error) {
	clean := make(bson.M, len(set))
	for k, v := range set {
		clean[k] = v
	}
	if bio, ok := clean["profile.bio"].(string); ok {
		clean["profile.bio"] = htmlsanitize.Sanitize(bio)
	}
	switch prof := clean["profile"].(type) {
	case models.Profile:
		prof.Bio = htmlsanitize.Sanitize(prof.Bio)
		clean["profile"] = prof
	case *models.Profile:
		if prof != nil {
			cp := *prof
			cp.Bio = htmlsanitize.Sanitize(cp.Bio)
			clean["profile"] = cp
		}
	}
	out, err := s.Repository.Update(ctx, id, clean)
	if errors.Is(err, base.ErrDuplicate) {
		return nil, fmt.Errorf("%w: %w", ErrDuplicateSlug, err)
	}
	return out, err
}

// SlugAvailable reports whether no portfolio uses slug.
func (s *Store) SlugAvailable(ctx context.Context, sl string) (bool, error) {
	taken, err := s.Exists(ctx, bson.M{"slug": sl})
	return !taken, err
}

// FindBySlug loads a portfolio for public viewing with its template joined
// in. It returns nil when no portfolio has that slug.
func (s *Store) FindBySlug(ctx context.Context, sl string) (*Detail, error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"slug": sl}}},
		{{Key: "$limit", Value: 1}},
		lookupTemplate(),
		unwindTemplate(),
	}

	cur, err := s.Collection().Aggregate(ctx, pipe)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio by slug %q: %w", sl, err)
	}
	defer cur.Close(ctx)

	var rows []Detail
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to load portfolio by slug %q: %w", sl, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FindByUserID lists a user's portfolios with their templates and view
// counts. The page of rows and the total are fetched concurrently.
func (s *Store) FindByUserID(ctx context.Context, userID string, f Filters) (List, error) {
	p := paging.Normalize(f.Page, f.Limit)
	match := userFilter(userID, f)

	sortField, ok := sortFields[f.SortBy]
	if !ok {
		sortField = sortFields[SortCreatedAt]
	}

	pipe := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		lookupTemplate(),
		unwindTemplate(),
		{{Key: "$lookup", Value: bson.M{
			"from":         viewsCollection,
			"localField":   "_id",
			"foreignField": "portfolio_id",
			"as":           "views",
		}}},
		{{Key: "$addFields", Value: bson.M{"view_count": bson.M{"$size": "$views"}}}},
		{{Key: "$project", Value: bson.M{"views": 0}}},
		{{Key: "$sort", Value: paging.Sort(sortField, f.SortOrder)}},
		{{Key: "$skip", Value: p.Skip()}},
		{{Key: "$limit", Value: int64(p.Limit)}},
	}

	var (
		rows  []Summary
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur, err := s.Collection().Aggregate(gctx, pipe)
		if err != nil {
			return err
		}
		defer cur.Close(gctx)
		return cur.All(gctx, &rows)
	})
	g.Go(func() error {
		var err error
		total, err = s.Collection().CountDocuments(gctx, match)
		return err
	})
	if err := g.Wait(); err != nil {
		return List{}, fmt.Errorf("failed to list portfolios for user %q: %w", userID, err)
	}
	if rows == nil {
		rows = []Summary{}
	}

	return List{
		Portfolios: rows,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: paging.TotalPages(total, p.Limit),
	}, nil
}

func userFilter(userID string, f Filters) bson.M {
	match := bson.M{"user_id": userID}
	if f.Status != "" {
		match["status"] = f.Status
	}
	if f.TemplateID != nil {
		match["template_id"] = *f.TemplateID
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: re})
		}
		match["$or"] = or
	}
	return match
}

func lookupTemplate() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         templatesCollection,
		"localField":   "template_id",
		"foreignField": "_id",
		"as":           "template",
	}}}
}

func unwindTemplate() bson.D {
	return bson.D{{Key: "$unwind", Value: bson.M{
		"path":                       "$template",
		"preserveNullAndEmptyArrays": true,
	}}}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
