// Package schema checks entity documents against the rules declared in their
// `validate` struct tags before they are written to MongoDB.
//
// A Schema is derived once per entity type. It validates whole documents on
// create and partial `$set` maps on update; field names in errors and in
// partial updates are the document's bson paths (e.g. "profile.name").
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/folio/internal/app/system/slug"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// FieldError names one failed rule on one field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s (%s=%s)", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s (%s)", f.Field, f.Rule)
}

// ValidationError lists every field that failed validation for one entity.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s validation failed: %s", e.Entity, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// immutable fields may never appear in a partial update.
var immutable = map[string]bool{"_id": true, "created_at": true}

var (
	validate = newValidator()
	cache    sync.Map // reflect.Type -> *Schema
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(bsonName)
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.IsValid(fl.Field().String())
	})
	return v
}

func bsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("bson"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return name
}

// Schema is the validation description of one entity type.
type Schema struct {
	entity string
	rules  map[string]string       // bson path -> validate tag
	types  map[string]reflect.Type // bson path -> declared Go type
	nested map[string]reflect.Type // bson path -> embedded struct type
}

// For returns the (cached) Schema for T.
func For[T any]() *Schema {
	return Of(reflect.TypeOf((*T)(nil)).Elem())
}

// Of returns the (cached) Schema for t, which must be a struct type.
func Of(t reflect.Type) *Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if s, ok := cache.Load(t); ok {
		return s.(*Schema)
	}
	s := &Schema{
		entity: strings.ToLower(t.Name()),
		rules:  make(map[string]string),
		types:  make(map[string]reflect.Type),
		nested: make(map[string]reflect.Type),
	}
	s.collect(t, "")
	actual, _ := cache.LoadOrStore(t, s)
	return actual.(*Schema)
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	objectIDType = reflect.TypeOf(primitive.ObjectID{})
)

func (s *Schema) collect(t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := bsonName(f)
		if name == "" {
			continue
		}
		path := prefix + name
		s.rules[path] = f.Tag.Get("validate")
		s.types[path] = f.Type

		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != timeType && ft != objectIDType {
			s.nested[path] = ft
			s.collect(ft, path+".")
		}
	}
}

// Entity is the lowercase type name used in error messages.
func (s *Schema) Entity() string { return s.entity }

// Fields returns the known bson paths, sorted.
func (s *Schema) Fields() []string {
	out := make([]string, 0, len(s.rules))
	for k := range s.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate checks a whole document. doc must be a T or *T for this schema.
func (s *Schema) Validate(doc any) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Entity: s.entity}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: trimRoot(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// ValidateSet checks the fields of a partial update. Unknown paths and the
// immutable _id/created_at are rejected, as are values whose Go type does
// not fit the field (rule "type"); an embedded struct must be replaced by a
// value of its own type, not a map. Each known path is checked against its
// own rule only, so omitted fields are never reported as missing.
func (s *Schema) ValidateSet(set map[string]any) error {
	out := &ValidationError{Entity: s.entity}

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, path := range keys {
		val := set[path]
		if immutable[path] {
			out.Fields = append(out.Fields, FieldError{Field: path, Rule: "immutable"})
			continue
		}
		rule, known := s.rules[path]
		if !known {
			out.Fields = append(out.Fields, FieldError{Field: path, Rule: "unknown"})
			continue
		}
		if val != nil && !fits(reflect.ValueOf(val), s.types[path]) {
			out.Fields = append(out.Fields, FieldError{Field: path, Rule: "type", Param: s.types[path].String()})
			continue
		}

		if _, isStruct := s.nested[path]; isStruct && val != nil {
			if err := s.validateNested(path, val); err != nil {
				var ve *ValidationError
				if errors.As(err, &ve) {
					out.Fields = append(out.Fields, ve.Fields...)
					continue
				}
				return err
			}
		}

		if val == nil {
			if strings.HasPrefix(rule, "required") {
				out.Fields = append(out.Fields, FieldError{Field: path, Rule: "required"})
			}
			continue
		}
		if rule == "" {
			continue
		}
		if err := validate.Var(val, rule); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return fmt.Errorf("validate %s: %w", path, err)
			}
			for _, fe := range verrs {
				out.Fields = append(out.Fields, FieldError{Field: path, Rule: fe.Tag(), Param: fe.Param()})
			}
		}
	}

	if len(out.Fields) > 0 {
		return out
	}
	return nil
}

// validateNested checks a whole embedded struct replacing the value at path.
func (s *Schema) validateNested(path string, val any) error {
	if reflect.Indirect(reflect.ValueOf(val)).Kind() != reflect.Struct {
		return nil
	}
	err := validate.Struct(val)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %s: %w", path, err)
	}
	out := &ValidationError{Entity: s.entity}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: path + "." + trimRoot(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// fits reports whether v can be stored in a field of type want without the
// validator misreading it. Numbers may cross widths, a pointer field takes
// its element type, and slices are checked element by element so bson.A
// works for []string fields.
func fits(v reflect.Value, want reflect.Type) bool {
	if !v.IsValid() {
		return false
	}
	if v.Kind() == reflect.Interface {
		return fits(v.Elem(), want)
	}
	t := v.Type()
	if t.AssignableTo(want) {
		return true
	}
	if want.Kind() == reflect.Pointer && fits(v, want.Elem()) {
		return true
	}
	if v.Kind() == reflect.Pointer {
		return !v.IsNil() && fits(v.Elem(), want)
	}
	switch want.Kind() {
	case reflect.Slice:
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return false
		}
		for i := 0; i < v.Len(); i++ {
			if !fits(v.Index(i), want.Elem()) {
				return false
			}
		}
		return true
	case reflect.Struct, reflect.Map, reflect.Array:
		return false
	}
	if isNumber(t.Kind()) && isNumber(want.Kind()) {
		return true
	}
	return t.Kind() == want.Kind()
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// trimRoot drops the leading struct name from a validator namespace
// ("Portfolio.profile.name" -> "profile.name").
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
