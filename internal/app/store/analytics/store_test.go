package analytics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/store/analytics"
	"github.com/dalemusser/folio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_RecordView(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := analytics.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	if err := store.RecordView(ctx, pid, "https://news.example.com/"); err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}

	views, err := store.Recent(ctx, pid, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	if views[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if views[0].CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if views[0].Referrer != "https://news.example.com/" {
		t.Errorf("Referrer = %q", views[0].Referrer)
	}
}

func TestStore_RecordView_TruncatesReferrer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := analytics.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	long := "https://example.com/" + strings.Repeat("a", 3000)
	if err := store.RecordView(ctx, pid, long); err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}

	views, err := store.Recent(ctx, pid, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(views[0].Referrer) != 2048 {
		t.Errorf("len(Referrer) = %d, want 2048", len(views[0].Referrer))
	}
}

func TestStore_RecordView_RequiresPortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := analytics.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.RecordView(ctx, primitive.NilObjectID, ""); err == nil {
		t.Error("expected error for missing portfolio id")
	}
}

func TestStore_CountForPortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := analytics.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	fx.CreateViews(ctx, pid, 3)
	fx.CreateViews(ctx, primitive.NewObjectID(), 2)

	n, err := store.CountForPortfolio(ctx, pid)
	if err != nil {
		t.Fatalf("CountForPortfolio failed: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	none, err := store.CountForPortfolio(ctx, primitive.NewObjectID())
	if err != nil || none != 0 {
		t.Errorf("CountForPortfolio(unknown) = %d, %v; want 0", none, err)
	}
}

func TestStore_CountForPortfolioSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := analytics.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if err := store.RecordView(ctx, pid, ""); err != nil {
			t.Fatalf("RecordView failed: %v", err)
		}
	}

	n, err := store.CountForPortfolioSince(ctx, pid, time.Now().UTC().Add(-time.Minute))
	if err != nil || n != 2 {
		t.Errorf("since a minute ago = %d, %v; want 2", n, err)
	}
	n, err = store.CountForPortfolioSince(ctx, pid, time.Now().UTC().Add(time.Minute))
	if err != nil || n != 0 {
		t.Errorf("since the future = %d, %v; want 0", n, err)
	}
}
