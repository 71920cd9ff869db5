// internal/app/store/templates/templatestore.go
package templatestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/folio/internal/app/store/base"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrTitleExhausted is returned by DuplicateTemplate when every copy title
// it tried was taken by a concurrent writer.
var ErrTitleExhausted = errors.New("could not find a free title for the template copy")

// maxTitleConflicts bounds how many insert races DuplicateTemplate absorbs.
const maxTitleConflicts = 5

// Filters narrows FindAllWithFilters. Nil/zero fields are ignored.
type Filters struct {
	Status    string
	Premium   *bool
	Tags      []string
	CreatedBy string
	Search    string // $text over title and description
	Page      int
	Limit     int
}

// Store is the template repository.
type Store struct {
	*base.Repository[models.Template]
}

func New(db *mongo.Database) *Store {
	return &Store{Repository: base.New[models.Template](db)}
}

// FindAllWithFilters returns one page of templates matching f, newest first.
func (s *Store) FindAllWithFilters(ctx context.Context, f Filters) (base.Page[models.Template], error) {
	return s.FindWithPagination(ctx, f.query(), f.Page, f.Limit, nil)
}

func (f Filters) query() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Premium != nil {
		q["premium"] = *f.Premium
	}
	if tags := models.NormalizeTags(f.Tags); len(tags) > 0 {
		q["tags"] = bson.M{"$in": tags}
	}
	if f.CreatedBy != "" {
		q["created_by"] = f.CreatedBy
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q["$text"] = bson.M{"$search": s}
	}
	return q
}

// Update merges set into the template. Tags are normalized the same way as
// on create and a title is trimmed; set itself is left untouched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Template, error) {
	clean := make(bson.M, len(set))
	for k, v := range set {
		clean[k] = v
	}
	if tags, ok := clean["tags"].([]string); ok {
		clean["tags"] = models.NormalizeTags(tags)
	}
	if title, ok := clean["title"].(string); ok {
		clean["title"] = strings.TrimSpace(title)
	}
	return s.Repository.Update(ctx, id, clean)
}

// DuplicateTemplate copies the template with the given id under the first
// free title of "<title> (Copy)", "<title> (Copy 2)", "<title> (Copy 3)", ...
// The copy is inactive, has no creator and gets fresh identity and
// timestamps. It returns nil when the source does not exist.
//
// The probe can race with another duplication; the unique title index turns
// that into a duplicate-key error and probing resumes at the next counter.
func (s *Store) DuplicateTemplate(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	src, err := s.FindByID(ctx, id)
	if err != nil || src == nil {
		return nil, err
	}

	counter := 1
	for conflicts := 0; conflicts <= maxTitleConflicts; conflicts++ {
		title, next, err := s.freeCopyTitle(ctx, src.Title, counter)
		if err != nil {
			return nil, err
		}

		dup := models.Template{
			Title:          title,
			Description:    src.Description,
			PrimaryColor:   src.PrimaryColor,
			SecondaryColor: src.SecondaryColor,
			Font:           src.Font,
			Thumbnail:      src.Thumbnail,
			Premium:        src.Premium,
			Tags:           append([]string(nil), src.Tags...),
			Status:         models.TemplateStatusInactive,
		}
		out, err := s.Create(ctx, dup)
		if err == nil {
			return &out, nil
		}
		if !errors.Is(err, base.ErrDuplicate) {
			return nil, err
		}
		counter = next
	}
	return nil, fmt.Errorf("duplicate template %s: %w", id.Hex(), ErrTitleExhausted)
}

// freeCopyTitle probes copy titles starting at counter and returns the first
// one no template uses, plus the counter to resume from if it is lost.
func (s *Store) freeCopyTitle(ctx context.Context, title string, counter int) (string, int, error) {
	for {
		candidate := CopyTitle(title, counter)
		taken, err := s.Exists(ctx, bson.M{"title": candidate})
		if err != nil {
			return "", 0, err
		}
		if !taken {
			return candidate, counter + 1, nil
		}
		counter++
	}
}

// CopyTitle names the n-th copy of title: "(Copy)" for n <= 1, then
// "(Copy n)". The base is cut short when needed so the result stays within
// models.TemplateTitleMaxLen runes.
func CopyTitle(title string, n int) string {
	suffix := " (Copy)"
	if n > 1 {
		suffix = fmt.Sprintf(" (Copy %d)", n)
	}
	room := models.TemplateTitleMaxLen - utf8.RuneCountInString(suffix)
	if r := []rune(title); len(r) > room {
		title = strings.TrimRightFunc(string(r[:room]), unicode.IsSpace)
	}
	return title + suffix
}
