// internal/domain/models/portfolio.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Portfolio is one user's published (or in-progress) portfolio site.
type Portfolio struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user_id" validate:"required"` // User.ExternalID
	TemplateID primitive.ObjectID `bson:"template_id" json:"template_id" validate:"required"`
	Slug       string             `bson:"slug" json:"slug" validate:"required,min=3,max=50,slug"`
	Status     string             `bson:"status" json:"status" validate:"oneof=draft published archived"`
	Profile    Profile            `bson:"profile" json:"profile"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Profile is the free-text portion of a portfolio. All three fields are
// covered by portfolio search.
type Profile struct {
	Name  string `bson:"name" json:"name" validate:"max=100"`
	Title string `bson:"title,omitempty" json:"title,omitempty" validate:"max=120"`
	Bio   string `bson:"bio,omitempty" json:"bio,omitempty" validate:"max=5000"`
}

// Portfolio statuses
const (
	PortfolioStatusDraft     = "draft"
	PortfolioStatusPublished = "published"
	PortfolioStatusArchived  = "archived"
)

func (Portfolio) CollectionName() string { return "portfolios" }

func (p *Portfolio) BeforeCreate(now time.Time) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.Slug = strings.TrimSpace(p.Slug)
	p.Profile.Name = strings.TrimSpace(p.Profile.Name)
	p.Profile.Title = strings.TrimSpace(p.Profile.Title)
	if p.Status == "" {
		p.Status = PortfolioStatusDraft
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}
