// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
)

// DefaultPage is the page used when none (or an invalid one) is given.
const DefaultPage = 1

// DefaultLimit is the page size used when none is given and SetDefaultLimit
// has not been called.
const DefaultLimit = 10

// MaxLimit caps the page size accepted from HTTP query strings.
const MaxLimit = 100

var defaultLimit atomic.Int64

func init() { defaultLimit.Store(DefaultLimit) }

// SetDefaultLimit overrides the fallback page size (FOLIO_DEFAULT_PAGE_SIZE).
// Non-positive values are ignored.
func SetDefaultLimit(n int) {
	if n > 0 {
		defaultLimit.Store(int64(n))
	}
}

// Limit returns the current fallback page size.
func Limit() int { return int(defaultLimit.Load()) }

// Params is a normalized 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// Normalize replaces a non-positive page with DefaultPage and a non-positive
// limit with the fallback page size.
func Normalize(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = Limit()
	}
	return Params{Page: page, Limit: limit}
}

// Skip is the number of documents before this page: (page-1)*limit.
func (p Params) Skip() int64 { return int64(p.Page-1) * int64(p.Limit) }

// TotalPages is ceil(total/limit); zero when there is nothing to show.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// DefaultSort orders newest first.
func DefaultSort() bson.D {
	return bson.D{{Key: "created_at", Value: -1}}
}

// Direction maps "asc" to 1; anything else (including "") is descending.
func Direction(order string) int {
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		return 1
	}
	return -1
}

// Sort builds a single-field sort with _id as the tiebreaker so pages stay
// stable when the field has repeats.
func Sort(field, order string) bson.D {
	dir := Direction(order)
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

// ParseRequest reads the "page" and "limit" query parameters. Missing or
// invalid values fall back to the defaults; limit is capped at MaxLimit.
func ParseRequest(r *http.Request) Params {
	page := atoiOr(query.Get(r, "page"), DefaultPage)
	limit := atoiOr(query.Get(r, "limit"), 0)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Normalize(page, limit)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
