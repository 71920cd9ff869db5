// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup (EnsureSchema hook). Each ensure* function is
idempotent. Problems are aggregated so every failing collection is reported
and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"portfolios", ensurePortfolios},
		{"templates", ensureTemplates},
		{"contacts", ensureContacts},
		{"portfolio_views", ensurePortfolioViews},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconciler                                                                  */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Weights bson.M `bson:"weights,omitempty"` // text indexes only
}

// sig identifies an index by its key pattern. Text indexes are stored as
// {_fts:"text", _ftsx:1} so they are identified by their weighted fields.
func (ix existingIndex) sig() string {
	if len(ix.Weights) > 0 {
		fields := make(bson.D, 0, len(ix.Weights))
		for k := range ix.Weights {
			fields = append(fields, bson.E{Key: k, Value: "text"})
		}
		return keySig(fields)
	}
	return keySig(ix.Key)
}

func (ix existingIndex) unique() bool { return ix.Unique != nil && *ix.Unique }

// keySig renders keys as "field:dir, ..."; text fields are sorted because
// the server does not keep their order.
func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	var text []string
	for _, kv := range keys {
		if kv.Value == "text" {
			text = append(text, kv.Key+":text")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	if len(text) > 0 {
		sort.Strings(text)
		parts = append(parts, text...)
	}
	return strings.Join(parts, ", ")
}

// Mongo/DocDB may return IndexOptionsConflict when an index with the same
// keys already exists under a different name or with different options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[idx.sig()] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet makes coll carry every index in want. An index with the
// same keys but a different name or uniqueness is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel) error {
	var errs []string

	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		existing = map[string]existingIndex{}
	}

	for _, m := range want {
		name, unique := "", false
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique != nil && *m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if ex.unique() == unique && (name == "" || ex.Name == name) {
				log.Debug("reusing existing index")
				continue
			}
			log.Info("replacing index", zap.String("existing", ex.Name))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			switch {
			case wafflemongo.IsDup(err) && unique:
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			case isOptionsConflictErr(err):
				errs = append(errs, fmt.Sprintf("%s(%s): conflicting index with different options: %v", coll.Name(), name, err))
			default:
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// One account per identity-provider key.
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_external_id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email"),
		},
	})
}

func ensurePortfolios(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("portfolios"), []mongo.IndexModel{
		// Public URLs.
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_portfolios_slug"),
		},
		// A user's listing, newest first, optionally by status.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_portfolios_user_status_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_portfolios_user_created"),
		},
		{
			Keys:    bson.D{{Key: "template_id", Value: 1}},
			Options: options.Index().SetName("idx_portfolios_template"),
		},
	})
}

func ensureTemplates(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("templates"), []mongo.IndexModel{
		// Duplication probes titles; the unique index settles races.
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_templates_title"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_templates_status_created"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_templates_tags"),
		},
		// $text search over title and description.
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("text_templates_title_description"),
		},
	})
}

func ensureContacts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("contacts"), []mongo.IndexModel{
		// One message per sender per portfolio.
		{
			Keys:    bson.D{{Key: "portfolio_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_contacts_portfolio_email"),
		},
		{
			Keys:    bson.D{{Key: "portfolio_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_contacts_portfolio_created"),
		},
	})
}

func ensurePortfolioViews(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("portfolio_views"), []mongo.IndexModel{
		// Backs the view_count $lookup and per-portfolio counts.
		{
			Keys:    bson.D{{Key: "portfolio_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_views_portfolio_created"),
		},
	})
}
