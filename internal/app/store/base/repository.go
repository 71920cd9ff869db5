// internal/app/store/base/repository.go
package base

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/folio/internal/app/system/paging"
	"github.com/dalemusser/folio/internal/app/system/schema"
	"github.com/dalemusser/folio/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicate is returned (wrapping the driver error) when a write violates
// a unique index.
var ErrDuplicate = errors.New("duplicate key")

// Page is one page of results plus the counts needed to render paging
// controls. JSON keys match the public listing envelope.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// DeleteResult reports how many documents a bulk delete removed.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// Repository is the CRUD layer shared by every entity store. T is the
// entity value type; its CollectionName picks the collection and its
// `validate` tags define the schema checked before each write.
type Repository[T models.Document] struct {
	c      *mongo.Collection
	schema *schema.Schema
	now    func() time.Time
}

// New builds a Repository over T's collection in db.
func New[T models.Document](db *mongo.Database) *Repository[T] {
	var zero T
	return &Repository[T]{
		c:      db.Collection(zero.CollectionName()),
		schema: schema.For[T](),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Collection exposes the underlying collection for entity-specific queries
// (aggregations, index-backed lookups) the generic methods do not cover.
func (r *Repository[T]) Collection() *mongo.Collection { return r.c }

// Schema returns the validation schema derived from T.
func (r *Repository[T]) Schema() *schema.Schema { return r.schema }

// Create applies T's defaults and timestamps, validates, and inserts doc.
// The stored document (with its generated ID) is returned.
func (r *Repository[T]) Create(ctx context.Context, doc T) (T, error) {
	if c, ok := any(&doc).(models.Creatable); ok {
		c.BeforeCreate(r.now())
	}
	if err := r.schema.Validate(&doc); err != nil {
		return doc, err
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return doc, mapWriteErr(err)
	}
	return doc, nil
}

// FindByID returns the document with the given _id, or nil if there is none.
func (r *Repository[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return r.FindOne(ctx, bson.M{"_id": id})
}

// FindOne returns the first document matching filter, or nil.
func (r *Repository[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := r.c.FindOne(ctx, orAll(filter)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// Find returns every document matching filter. A nil filter matches all.
func (r *Repository[T]) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := r.c.Find(ctx, orAll(filter), opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindWithPagination returns one page of documents matching filter. The data
// query and the count run concurrently. page and limit fall back to the
// paging defaults when not positive; a nil sort means newest first.
func (r *Repository[T]) FindWithPagination(ctx context.Context, filter bson.M, page, limit int, sort bson.D) (Page[T], error) {
	p := paging.Normalize(page, limit)
	if len(sort) == 0 {
		sort = paging.DefaultSort()
	}
	filter = orAll(filter)

	var (
		data  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := options.Find().
			SetSort(sort).
			SetSkip(p.Skip()).
			SetLimit(int64(p.Limit))
		var err error
		data, err = r.Find(gctx, filter, opts)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = r.c.CountDocuments(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: paging.TotalPages(total, p.Limit),
	}, nil
}

// Update merges set into the document with the given _id and returns the
// updated document, or nil if there is none.
func (r *Repository[T]) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	return r.UpdateOne(ctx, bson.M{"_id": id}, set)
}

// UpdateOne merges set into the first document matching filter. The fields
// in set are validated first and updated_at is always refreshed.
func (r *Repository[T]) UpdateOne(ctx context.Context, filter, set bson.M) (*T, error) {
	if err := r.schema.ValidateSet(set); err != nil {
		return nil, err
	}

	fields := bson.M{}
	for k, v := range set {
		fields[k] = v
	}
	fields["updated_at"] = r.now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err := r.c.FindOneAndUpdate(ctx, orAll(filter), bson.M{"$set": fields}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, mapWriteErr(err)
	}
	return &doc, nil
}

// Delete removes the document with the given _id and returns what was
// removed, or nil if there was nothing to remove.
func (r *Repository[T]) Delete(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	if err := r.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// DeleteMany removes every document matching filter.
func (r *Repository[T]) DeleteMany(ctx context.Context, filter bson.M) (DeleteResult, error) {
	res, err := r.c.DeleteMany(ctx, orAll(filter))
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{DeletedCount: res.DeletedCount}, nil
}

// Count returns the number of documents matching filter.
func (r *Repository[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.c.CountDocuments(ctx, orAll(filter))
}

// Exists reports whether any document matches filter. Only _id is fetched.
func (r *Repository[T]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	var hit bson.M
	if err := r.c.FindOne(ctx, orAll(filter), opts).Decode(&hit); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func orAll(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

func mapWriteErr(err error) error {
	if wafflemongo.IsDup(err) {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}
