package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/slug"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data. Documents are
// inserted directly so fixtures do not depend on the stores under test.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateUser creates an active free-plan user with the given external id.
func (f *Fixtures) CreateUser(ctx context.Context, externalID, name, email string) models.User {
	f.t.Helper()

	u := models.User{ExternalID: externalID, Name: &name, Email: &email}
	u.BeforeCreate(time.Now().UTC())
	f.insert(ctx, u.CollectionName(), u)
	return u
}

// CreateTemplate creates an active template with the given title and tags.
func (f *Fixtures) CreateTemplate(ctx context.Context, title string, tags ...string) models.Template {
	f.t.Helper()

	tpl := models.Template{
		Title:          title,
		Description:    title + " template",
		PrimaryColor:   "#112233",
		SecondaryColor: "#445566",
		Font:           "Inter",
		Tags:           tags,
	}
	tpl.BeforeCreate(time.Now().UTC())
	f.insert(ctx, tpl.CollectionName(), tpl)
	return tpl
}

// CreatePremiumTemplate creates a premium template owned by createdBy.
func (f *Fixtures) CreatePremiumTemplate(ctx context.Context, title, createdBy string) models.Template {
	f.t.Helper()

	tpl := models.Template{Title: title, Premium: true, CreatedBy: &createdBy}
	tpl.BeforeCreate(time.Now().UTC())
	f.insert(ctx, tpl.CollectionName(), tpl)
	return tpl
}

// CreatePortfolio creates a portfolio for userID on templateID. The slug is
// derived from name.
func (f *Fixtures) CreatePortfolio(ctx context.Context, userID string, templateID primitive.ObjectID, name, status string) models.Portfolio {
	f.t.Helper()
	return f.CreatePortfolioAt(ctx, userID, templateID, name, status, time.Now().UTC())
}

// CreatePortfolioAt is like CreatePortfolio with an explicit creation time,
// for tests that depend on ordering.
func (f *Fixtures) CreatePortfolioAt(ctx context.Context, userID string, templateID primitive.ObjectID, name, status string, at time.Time) models.Portfolio {
	f.t.Helper()

	p := models.Portfolio{
		UserID:     userID,
		TemplateID: templateID,
		Slug:       slug.Generate(name),
		Status:     status,
		Profile:    models.Profile{Name: name, Title: "Designer"},
	}
	p.BeforeCreate(at)
	f.insert(ctx, p.CollectionName(), p)
	return p
}

// CreateViews records n views of portfolioID.
func (f *Fixtures) CreateViews(ctx context.Context, portfolioID primitive.ObjectID, n int) {
	f.t.Helper()

	for i := 0; i < n; i++ {
		v := models.PortfolioView{PortfolioID: portfolioID}
		v.BeforeCreate(time.Now().UTC())
		f.insert(ctx, v.CollectionName(), v)
	}
}

// CreateContact creates a contact submission for portfolioID.
func (f *Fixtures) CreateContact(ctx context.Context, portfolioID primitive.ObjectID, email, message string) models.Contact {
	f.t.Helper()

	c := models.Contact{PortfolioID: portfolioID, Email: email, Message: message}
	c.BeforeCreate(time.Now().UTC())
	f.insert(ctx, c.CollectionName(), c)
	return c
}
