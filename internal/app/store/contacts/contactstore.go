// internal/app/store/contacts/contactstore.go
package contactstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/folio/internal/app/store/base"
	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateSubmission is returned when the sender already left a message
// for the portfolio. It also matches base.ErrDuplicate.
var ErrDuplicateSubmission = errors.New("contact already submitted for this portfolio")

// Store is the contact-message repository.
type Store struct {
	*base.Repository[models.Contact]
}

func New(db *mongo.Database) *Store {
	return &Store{Repository: base.New[models.Contact](db)}
}

// ExistsForPortfolioEmail reports whether email already left a message for
// portfolioID. The email is compared lowercased, as stored.
func (s *Store) ExistsForPortfolioEmail(ctx context.Context, portfolioID primitive.ObjectID, email string) (bool, error) {
	return s.Exists(ctx, bson.M{
		"portfolio_id": portfolioID,
		"email":        strings.ToLower(strings.TrimSpace(email)),
	})
}

// Submit stores a contact message with its name and body stripped of markup.
// A second message from the same sender fails with ErrDuplicateSubmission;
// the unique (portfolio_id, email) index makes that hold under concurrency.
func (s *Store) Submit(ctx context.Context, c models.Contact) (models.Contact, error) {
	c.Name = htmlsanitize.StripTags(c.Name)
	c.Message = htmlsanitize.StripTags(c.Message)

	out, err := s.Create(ctx, c)
	if errors.Is(err, base.ErrDuplicate) {
		return out, fmt.Errorf("%w: %w", ErrDuplicateSubmission, err)
	}
	return out, err
}

// ListForPortfolio returns one page of a portfolio's messages, newest first.
func (s *Store) ListForPortfolio(ctx context.Context, portfolioID primitive.ObjectID, page, limit int) (base.Page[models.Contact], error) {
	return s.FindWithPagination(ctx, bson.M{"portfolio_id": portfolioID}, page, limit, nil)
}
