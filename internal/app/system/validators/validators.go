// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// nonBlank matches strings with at least one non-space character.
const nonBlank = ".*\\S.*"

// slugPattern mirrors slug.IsValid.
const slugPattern = "^[a-z0-9]+(?:-[a-z0-9]+)*$"

// EnsureAll creates the collections (if missing) and attaches JSON-Schema
// validators. Deployments that do not support collMod validators (some
// DocumentDB versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		// Fall back to create-and-handle-race for every collection.
		existing = nil
	}

	for _, c := range Collections() {
		if err := ensureCollection(ctx, db, c.Name, slices.Contains(existing, c.Name)); err != nil {
			problems = append(problems, c.Name+": "+err.Error())
			continue
		}
		if err := setValidator(ctx, db, c.Name, c.Schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.Name))
				continue
			}
			problems = append(problems, c.Name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Collection pairs a collection name with its server-side validator.
type Collection struct {
	Name   string
	Schema bson.M
}

// Collections lists every collection the app owns, in creation order.
func Collections() []Collection {
	return []Collection{
		{models.User{}.CollectionName(), usersSchema()},
		{models.Template{}.CollectionName(), templatesSchema()},
		{models.Portfolio{}.CollectionName(), portfoliosSchema()},
		{models.Contact{}.CollectionName(), contactsSchema()},
		{models.PortfolioView{}.CollectionName(), viewsSchema()},
	}
}

/* ---------------------- collection helpers & logging ---------------------- */

func ensureCollection(ctx context.Context, db *mongo.Database, name string, exists bool) error {
	if exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErr(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enum(vals ...string) bson.M {
	a := make(bson.A, len(vals))
	for i, v := range vals {
		a[i] = v
	}
	return bson.M{"enum": a}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"external_id", "role", "plan", "status", "created_at"},
			"properties": bson.M{
				"external_id": bson.M{"bsonType": "string", "minLength": 1, "pattern": nonBlank},
				"email":       bson.M{"bsonType": bson.A{"string", "null"}},
				"name":        bson.M{"bsonType": bson.A{"string", "null"}, "maxLength": 50},
				"role":        enum(models.RoleAdmin, models.RoleUser),
				"plan":        enum(models.PlanFree, models.PlanPremium),
				"status":      enum(models.UserStatusActive, models.UserStatusBanned, models.UserStatusSuspended),
				"created_at":  bson.M{"bsonType": "date"},
				"updated_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func templatesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "status", "premium", "tags", "created_at"},
			"properties": bson.M{
				"title":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100, "pattern": nonBlank},
				"description": bson.M{"bsonType": "string", "maxLength": 1000},
				"premium":     bson.M{"bsonType": "bool"},
				"tags":        bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"status":      enum(models.TemplateStatusActive, models.TemplateStatusInactive),
				"created_by":  bson.M{"bsonType": bson.A{"string", "null"}},
				"created_at":  bson.M{"bsonType": "date"},
				"updated_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func portfoliosSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "template_id", "slug", "status", "created_at"},
			"properties": bson.M{
				"user_id":     bson.M{"bsonType": "string", "minLength": 1},
				"template_id": bson.M{"bsonType": "objectId"},
				"slug": bson.M{
					"bsonType":  "string",
					"minLength": 3,
					"maxLength": 50,
					"pattern":   slugPattern,
				},
				"status": enum(models.PortfolioStatusDraft, models.PortfolioStatusPublished, models.PortfolioStatusArchived),
				"profile": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"name":  bson.M{"bsonType": "string", "maxLength": 100},
						"title": bson.M{"bsonType": "string", "maxLength": 120},
						"bio":   bson.M{"bsonType": "string", "maxLength": 5000},
					},
				},
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func contactsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"portfolio_id", "email", "message", "created_at"},
			"properties": bson.M{
				"portfolio_id": bson.M{"bsonType": "objectId"},
				"email":        bson.M{"bsonType": "string", "minLength": 3, "pattern": "@"},
				"name":         bson.M{"bsonType": "string", "maxLength": 100},
				"message":      bson.M{"bsonType": "string", "minLength": 1, "maxLength": 5000},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func viewsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"portfolio_id", "created_at"},
			"properties": bson.M{
				"portfolio_id": bson.M{"bsonType": "objectId"},
				"referrer":     bson.M{"bsonType": "string", "maxLength": 2048},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}
