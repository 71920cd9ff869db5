package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultTestURI is used when FOLIO_TEST_MONGO_URI is not set.
const DefaultTestURI = "mongodb://localhost:27017"

// testTimeout bounds each test's database work.
const testTimeout = 10 * time.Second

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// TestURI returns the MongoDB URI tests connect to.
func TestURI() string {
	if uri := strings.TrimSpace(os.Getenv("FOLIO_TEST_MONGO_URI")); uri != "" {
		return uri
	}
	return DefaultTestURI
}

func sharedClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(TestURI()).
			SetServerSelectionTimeout(2 * time.Second)
		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			clientErr = err
			return
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			clientErr = err
			return
		}
		client = c
	})
	return client, clientErr
}

// SetupTestDB returns a fresh, uniquely named database for t and drops it
// when the test finishes. The test is skipped when MongoDB is unreachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	c, err := sharedClient()
	if err != nil {
		t.Skipf("mongodb not available at %s: %v", TestURI(), err)
	}

	name := fmt.Sprintf("folio_test_%s", primitive.NewObjectID().Hex())
	db := c.Database(name)
	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

// TestContext returns a context bounded by the per-test timeout.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), testTimeout)
}
