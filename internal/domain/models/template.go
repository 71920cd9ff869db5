// internal/domain/models/template.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template is a reusable portfolio design. Titles are unique across all
// templates; duplication relies on that to pick "<title> (Copy N)" names.
type Template struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title" validate:"required,max=100"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty" validate:"max=1000"`
	PrimaryColor   string             `bson:"primary_color,omitempty" json:"primary_color,omitempty" validate:"omitempty,max=32"`
	SecondaryColor string             `bson:"secondary_color,omitempty" json:"secondary_color,omitempty" validate:"omitempty,max=32"`
	Font           string             `bson:"font,omitempty" json:"font,omitempty" validate:"max=64"`
	Thumbnail      string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty" validate:"max=2048"`
	Premium        bool               `bson:"premium" json:"premium"`
	Tags           []string           `bson:"tags" json:"tags" validate:"dive,required,max=32"`
	Status         string             `bson:"status" json:"status" validate:"oneof=active inactive"`
	CreatedBy      *string            `bson:"created_by,omitempty" json:"created_by,omitempty"` // User.ExternalID

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TemplateTitleMaxLen is the longest title, in runes, a template may carry.
// It matches the max rule on Title.
const TemplateTitleMaxLen = 100

// Template statuses
const (
	TemplateStatusActive   = "active"
	TemplateStatusInactive = "inactive"
)

func (Template) CollectionName() string { return "templates" }

func (t *Template) BeforeCreate(now time.Time) {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.Title = strings.TrimSpace(t.Title)
	t.Tags = NormalizeTags(t.Tags)
	if t.Status == "" {
		t.Status = TemplateStatusActive
	}
	t.CreatedAt = now
	t.UpdatedAt = now
}

// NormalizeTags trims and lowercases tags, dropping blanks and repeats while
// keeping first-seen order. It never returns nil so the stored field is
// always an array.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
