package metricsstore

import (
	"context"

	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of collection totals exported as gauges.
type Counts struct {
	Users               int64
	Portfolios          int64
	PublishedPortfolios int64
	Templates           int64
	ActiveTemplates     int64
	Contacts            int64
	Views               int64
}

// FetchCounts returns the totals behind the entity gauges.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	count := func(coll string, filter bson.M, dst *int64) {
		if n, err := db.Collection(coll).CountDocuments(ctx, filter); err == nil {
			*dst = n
		}
	}

	count("users", bson.M{}, &out.Users)
	count("portfolios", bson.M{}, &out.Portfolios)
	count("portfolios", bson.M{"status": models.PortfolioStatusPublished}, &out.PublishedPortfolios)
	count("templates", bson.M{}, &out.Templates)
	count("templates", bson.M{"status": models.TemplateStatusActive}, &out.ActiveTemplates)
	count("contacts", bson.M{}, &out.Contacts)
	count("portfolio_views", bson.M{}, &out.Views)

	return out
}
