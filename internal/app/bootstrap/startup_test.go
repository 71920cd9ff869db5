package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/system/paging"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "folio",
		DefaultPageSize:   10,
		ContactRateLimit:  5,
		ContactRateWindow: time.Minute,
		MetricsEnabled:    true,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"missing uri", func(c *AppConfig) { c.MongoURI = "" }, true},
		{"empty database", func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"zero page size", func(c *AppConfig) { c.DefaultPageSize = 0 }, true},
		{"page size over max", func(c *AppConfig) { c.DefaultPageSize = paging.MaxLimit + 1 }, true},
		{"negative rate limit", func(c *AppConfig) { c.ContactRateLimit = -1 }, true},
		{"rate limit without window", func(c *AppConfig) { c.ContactRateWindow = 0 }, true},
		{"rate limit disabled", func(c *AppConfig) { c.ContactRateLimit, c.ContactRateWindow = 0, 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfig_MissingURIIsSentinel(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = ""
	if err := ValidateConfig(&config.CoreConfig{}, cfg, testLogger()); err != ErrMissingMongoURI {
		t.Errorf("expected ErrMissingMongoURI, got %v", err)
	}
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, "auth0|admin", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"external_id": "auth0|admin"}).Decode(&user); err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, user.Role)
	}
	if user.Status != models.UserStatusActive || user.Plan != models.PlanFree {
		t.Errorf("defaults not applied: status=%q plan=%q", user.Status, user.Plan)
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := fx.CreateUser(ctx, "auth0|42", "Jane Doe", "jane@example.com")
	if _, err := db.Collection("users").UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{"plan": models.PlanPremium}}); err != nil {
		t.Fatalf("set plan: %v", err)
	}

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, "auth0|42", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user); err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, user.Role)
	}
	if user.Plan != models.PlanPremium {
		t.Errorf("plan changed to %q", user.Plan)
	}
	if user.Name == nil || *user.Name != "Jane Doe" {
		t.Errorf("name changed to %v", user.Name)
	}

	n, _ := db.Collection("users").CountDocuments(ctx, bson.M{})
	if n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := ensureAdmin(ctx, deps, "auth0|admin", testLogger()); err != nil {
			t.Fatalf("ensureAdmin #%d failed: %v", i+1, err)
		}
	}
	n, _ := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
	if n != 1 {
		t.Errorf("expected 1 admin, got %d", n)
	}
}

func TestStartup_AppliesRequestDefaults(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	t.Cleanup(func() { paging.SetDefaultLimit(paging.DefaultLimit) })

	cfg := validAppConfig()
	cfg.DefaultPageSize = 25
	cfg.TimeoutShort = 3 * time.Second
	cfg.TimeoutLong = time.Minute

	if err := Startup(t.Context(), &config.CoreConfig{}, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	if paging.Limit() != 25 {
		t.Errorf("paging.Limit() = %d, want 25", paging.Limit())
	}
	if timeouts.Short() != 3*time.Second || timeouts.Long() != time.Minute {
		t.Errorf("timeouts = %+v", timeouts.Current())
	}
	if timeouts.Medium() != timeouts.DefaultMedium {
		t.Errorf("unset Medium changed to %v", timeouts.Medium())
	}
}

func TestEnsureSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, &config.CoreConfig{}, validAppConfig(), deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema #%d failed: %v", i+1, err)
		}
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}

	h, err := BuildHandler(&config.CoreConfig{}, validAppConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/templates", http.StatusOK},
		{http.MethodGet, "/users/auth0%7C1/portfolios", http.StatusOK},
		{http.MethodGet, "/p/nobody", http.StatusNotFound},
		{http.MethodPost, "/templates/000000000000000000000000/duplicate", http.StatusNotFound},
		{http.MethodPost, "/portfolios/000000000000000000000000/contact", http.StatusBadRequest},
		{http.MethodGet, "/no/such/route", http.StatusNotFound},
		{http.MethodDelete, "/templates/", http.StatusMethodNotAllowed},
		{http.MethodGet, "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestBuildHandler_MetricsDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := validAppConfig()
	cfg.MetricsEnabled = false

	h, err := BuildHandler(&config.CoreConfig{}, cfg, DBDeps{MongoClient: db.Client(), MongoDatabase: db}, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not found") {
		t.Errorf("expected JSON not-found body, got %q", rec.Body.String())
	}
}

func TestShutdown_NoManager(t *testing.T) {
	if err := Shutdown(t.Context(), &config.CoreConfig{}, validAppConfig(), DBDeps{}, testLogger()); err != nil {
		t.Errorf("Shutdown without a manager: %v", err)
	}
}
