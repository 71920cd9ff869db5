// internal/app/store/analytics/store.go
package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/store/base"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxReferrer is the longest referrer kept; longer values are truncated.
const maxReferrer = 2048

// Store records and counts public portfolio views.
type Store struct {
	*base.Repository[models.PortfolioView]
}

// New creates a new analytics Store.
func New(db *mongo.Database) *Store {
	return &Store{Repository: base.New[models.PortfolioView](db)}
}

// RecordView records one view of a portfolio.
func (s *Store) RecordView(ctx context.Context, portfolioID primitive.ObjectID, referrer string) error {
	referrer = strings.TrimSpace(referrer)
	if len(referrer) > maxReferrer {
		referrer = referrer[:maxReferrer]
	}
	_, err := s.Create(ctx, models.PortfolioView{PortfolioID: portfolioID, Referrer: referrer})
	return err
}

// CountForPortfolio returns how many views a portfolio has had.
func (s *Store) CountForPortfolio(ctx context.Context, portfolioID primitive.ObjectID) (int64, error) {
	return s.Count(ctx, bson.M{"portfolio_id": portfolioID})
}

// CountForPortfolioSince returns how many views a portfolio has had since t.
func (s *Store) CountForPortfolioSince(ctx context.Context, portfolioID primitive.ObjectID, t time.Time) (int64, error) {
	return s.Count(ctx, bson.M{
		"portfolio_id": portfolioID,
		"created_at":   bson.M{"$gte": t},
	})
}

// Recent returns a portfolio's most recent views, newest first.
func (s *Store) Recent(ctx context.Context, portfolioID primitive.ObjectID, limit int64) ([]models.PortfolioView, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	return s.Find(ctx, bson.M{"portfolio_id": portfolioID}, opts)
}
