// internal/domain/models/contact.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact is a message left through a portfolio's contact form.
type Contact struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PortfolioID primitive.ObjectID `bson:"portfolio_id" json:"portfolio_id" validate:"required"`
	Email       string             `bson:"email" json:"email" validate:"required,email"`
	Name        string             `bson:"name,omitempty" json:"name,omitempty" validate:"max=100"`
	Message     string             `bson:"message" json:"message" validate:"required,max=5000"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (Contact) CollectionName() string { return "contacts" }

func (c *Contact) BeforeCreate(now time.Time) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Name = strings.TrimSpace(c.Name)
	c.Message = strings.TrimSpace(c.Message)
	c.CreatedAt = now
	c.UpdatedAt = now
}
