// internal/domain/models/portfolioview.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PortfolioView records one public view of a portfolio. Listings count these
// per portfolio to report view_count.
type PortfolioView struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PortfolioID primitive.ObjectID `bson:"portfolio_id" json:"portfolio_id" validate:"required"`
	Referrer    string             `bson:"referrer,omitempty" json:"referrer,omitempty" validate:"max=2048"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

func (PortfolioView) CollectionName() string { return "portfolio_views" }

func (v *PortfolioView) BeforeCreate(now time.Time) {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	v.CreatedAt = now
}
