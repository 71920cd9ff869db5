package schema_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/folio/internal/app/system/schema"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fieldRules(err error) map[string]string {
	var ve *schema.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		out[f.Field] = f.Rule
	}
	return out
}

func TestFor_CachesPerType(t *testing.T) {
	a := schema.For[models.Template]()
	b := schema.For[models.Template]()
	if a != b {
		t.Error("For returned different schemas for the same type")
	}
	if a.Entity() != "template" {
		t.Errorf("Entity() = %q, want template", a.Entity())
	}
}

func TestFields_UsesBSONPaths(t *testing.T) {
	fields := schema.For[models.Portfolio]().Fields()
	want := map[string]bool{"slug": false, "user_id": false, "profile": false, "profile.name": false, "profile.bio": false}
	for _, f := range fields {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("Fields() missing %q (got %v)", f, fields)
		}
	}
}

func TestValidate_ValidDocument(t *testing.T) {
	tpl := models.Template{Title: "Minimal", Status: models.TemplateStatusActive, Tags: []string{"clean"}}
	if err := schema.For[models.Template]().Validate(&tpl); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_ReportsEveryBadField(t *testing.T) {
	p := models.Portfolio{
		UserID:     "",
		TemplateID: primitive.NewObjectID(),
		Slug:       "Not A Slug",
		Status:     "deleted",
	}
	err := schema.For[models.Portfolio]().Validate(&p)
	if !errors.Is(err, schema.ErrValidation) {
		t.Fatalf("errors.Is(err, ErrValidation) = false, err = %v", err)
	}

	rules := fieldRules(err)
	if rules["user_id"] != "required" {
		t.Errorf("user_id rule = %q, want required", rules["user_id"])
	}
	if rules["slug"] != "slug" {
		t.Errorf("slug rule = %q, want slug", rules["slug"])
	}
	if rules["status"] != "oneof" {
		t.Errorf("status rule = %q, want oneof", rules["status"])
	}
}

func TestValidate_NestedPath(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	p := models.Portfolio{
		UserID:     "user-1",
		TemplateID: primitive.NewObjectID(),
		Slug:       "jane-doe",
		Status:     models.PortfolioStatusDraft,
		Profile:    models.Profile{Name: string(long)},
	}
	rules := fieldRules(schema.For[models.Portfolio]().Validate(&p))
	if rules["profile.name"] != "max" {
		t.Errorf("profile.name rule = %q, want max (all: %v)", rules["profile.name"], rules)
	}
}

func TestValidate_EmailFormat(t *testing.T) {
	bad := "not-an-email"
	u := models.User{ExternalID: "ext-1", Email: &bad, Role: models.RoleUser, Plan: models.PlanFree, Status: models.UserStatusActive}
	rules := fieldRules(schema.For[models.User]().Validate(&u))
	if rules["email"] != "email" {
		t.Errorf("email rule = %q, want email", rules["email"])
	}
}

func TestValidateSet(t *testing.T) {
	s := schema.For[models.Template]()

	tests := []struct {
		name      string
		set       map[string]any
		wantField string
		wantRule  string
	}{
		{"valid partial", map[string]any{"status": "inactive"}, "", ""},
		{"omitted required field is fine", map[string]any{"premium": true}, "", ""},
		{"bad enum", map[string]any{"status": "archived"}, "status", "oneof"},
		{"empty required", map[string]any{"title": ""}, "title", "required"},
		{"null required", map[string]any{"title": nil}, "title", "required"},
		{"unknown field", map[string]any{"colour": "red"}, "colour", "unknown"},
		{"immutable id", map[string]any{"_id": primitive.NewObjectID()}, "_id", "immutable"},
		{"immutable created_at", map[string]any{"created_at": "x"}, "created_at", "immutable"},
		{"tag too long", map[string]any{"tags": []string{"ok", "this-tag-is-much-longer-than-thirty-two-characters"}}, "tags", "max"},
		{"bool for enum", map[string]any{"status": true}, "status", "type"},
		{"string for bool", map[string]any{"premium": "yes"}, "premium", "type"},
		{"number for string", map[string]any{"title": 42}, "title", "type"},
		{"mixed tag array", map[string]any{"tags": []any{"ok", 7}}, "tags", "type"},
		{"generic tag array", map[string]any{"tags": []any{"ok", "fine"}}, "", ""},
		{"pointer field takes its element", map[string]any{"created_by": "user-1"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateSet(tt.set)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateSet: %v", err)
				}
				return
			}
			if !errors.Is(err, schema.ErrValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
			if got := fieldRules(err)[tt.wantField]; got != tt.wantRule {
				t.Errorf("rule for %s = %q, want %q (err: %v)", tt.wantField, got, tt.wantRule, err)
			}
		})
	}
}

func TestValidateSet_NestedStructAndDottedPath(t *testing.T) {
	s := schema.For[models.Portfolio]()

	if err := s.ValidateSet(map[string]any{"profile.title": "Designer"}); err != nil {
		t.Errorf("dotted path: %v", err)
	}
	if err := s.ValidateSet(map[string]any{"profile": models.Profile{Name: "Jane"}}); err != nil {
		t.Errorf("whole profile: %v", err)
	}

	long := make([]byte, 121)
	for i := range long {
		long[i] = 'x'
	}
	rules := fieldRules(s.ValidateSet(map[string]any{"profile": models.Profile{Title: string(long)}}))
	if rules["profile.title"] != "max" {
		t.Errorf("profile.title rule = %q, want max (all: %v)", rules["profile.title"], rules)
	}
}

func TestValidateSet_NestedMapRejected(t *testing.T) {
	s := schema.For[models.Portfolio]()

	set := map[string]any{"profile": map[string]any{"bio": "<script>x</script>", "x": 1}}
	rules := fieldRules(s.ValidateSet(set))
	if rules["profile"] != "type" {
		t.Errorf("profile rule = %q, want type (all: %v)", rules["profile"], rules)
	}

	if err := s.ValidateSet(map[string]any{"profile": &models.Profile{Name: "Jane"}}); err != nil {
		t.Errorf("profile pointer: %v", err)
	}
	if rules := fieldRules(s.ValidateSet(map[string]any{"template_id": "not-an-id"})); rules["template_id"] != "type" {
		t.Errorf("template_id rule = %q, want type", rules["template_id"])
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &schema.ValidationError{
		Entity: "template",
		Fields: []schema.FieldError{{Field: "title", Rule: "required"}, {Field: "title", Rule: "max", Param: "100"}},
	}
	want := "template validation failed: title (required); title (max=100)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
