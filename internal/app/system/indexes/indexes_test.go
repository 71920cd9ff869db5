package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/folio/internal/app/system/indexes"
	"github.com/dalemusser/folio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, ctx context.Context, db *mongo.Database, coll string) map[string]bool {
	t.Helper()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", coll, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users":           {"uniq_users_external_id", "idx_users_email"},
		"portfolios":      {"uniq_portfolios_slug", "idx_portfolios_user_status_created", "idx_portfolios_user_created", "idx_portfolios_template"},
		"templates":       {"uniq_templates_title", "idx_templates_status_created", "idx_templates_tags", "text_templates_title_description"},
		"contacts":        {"uniq_contacts_portfolio_email", "idx_contacts_portfolio_created"},
		"portfolio_views": {"idx_views_portfolio_created"},
	}

	for coll, names := range expected {
		got := indexNames(t, ctx, db, coll)
		for _, name := range names {
			if !got[name] {
				t.Errorf("expected index %q to exist on %s", name, coll)
			}
		}
	}
}

func TestEnsureAll_RenamesIndexWithSameKeys(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("portfolios").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("slug_1_legacy"),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	got := indexNames(t, ctx, db, "portfolios")
	if got["slug_1_legacy"] {
		t.Error("legacy index should have been replaced")
	}
	if !got["uniq_portfolios_slug"] {
		t.Error("expected uniq_portfolios_slug")
	}
}

func TestEnsureAll_ReportsDuplicatesForUniqueIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		if _, err := db.Collection("templates").InsertOne(ctx, bson.M{"title": "Same"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	if err := indexes.EnsureAll(ctx, db); err == nil {
		t.Fatal("expected EnsureAll to fail when duplicate titles exist")
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("portfolios").InsertOne(ctx, bson.M{"slug": "jane-doe"})
	if err != nil {
		t.Fatalf("Insert portfolio failed: %v", err)
	}

	// Try to insert another portfolio with the same slug - should fail
	_, err = db.Collection("portfolios").InsertOne(ctx, bson.M{"slug": "jane-doe"})
	if err == nil {
		t.Error("expected duplicate key error for unique index on portfolios.slug")
	}
}
