package paging

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Params
	}{
		{"explicit", 3, 20, Params{Page: 3, Limit: 20}},
		{"zero page", 0, 20, Params{Page: 1, Limit: 20}},
		{"negative page", -4, 20, Params{Page: 1, Limit: 20}},
		{"zero limit", 2, 0, Params{Page: 2, Limit: DefaultLimit}},
		{"both missing", 0, 0, Params{Page: 1, Limit: DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.page, tt.limit); got != tt.want {
				t.Errorf("Normalize(%d, %d) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestSetDefaultLimit(t *testing.T) {
	defer SetDefaultLimit(DefaultLimit)

	SetDefaultLimit(25)
	if got := Normalize(1, 0).Limit; got != 25 {
		t.Errorf("Limit after SetDefaultLimit(25) = %d", got)
	}

	SetDefaultLimit(0)
	if got := Limit(); got != 25 {
		t.Errorf("SetDefaultLimit(0) changed the limit to %d", got)
	}
}

func TestSkip(t *testing.T) {
	tests := []struct {
		p    Params
		want int64
	}{
		{Params{Page: 1, Limit: 10}, 0},
		{Params{Page: 2, Limit: 10}, 10},
		{Params{Page: 5, Limit: 7}, 28},
	}
	for _, tt := range tests {
		if got := tt.p.Skip(); got != tt.want {
			t.Errorf("%+v.Skip() = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestDirectionAndSort(t *testing.T) {
	if Direction("asc") != 1 || Direction("ASC") != 1 {
		t.Error("asc should map to 1")
	}
	if Direction("desc") != -1 || Direction("") != -1 || Direction("sideways") != -1 {
		t.Error("non-asc should map to -1")
	}

	got := Sort("profile.name", "asc")
	want := bson.D{{Key: "profile.name", Value: 1}, {Key: "_id", Value: 1}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Sort = %v, want %v", got, want)
	}

	def := DefaultSort()
	if len(def) != 1 || def[0].Key != "created_at" || def[0].Value != -1 {
		t.Errorf("DefaultSort = %v", def)
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		url  string
		want Params
	}{
		{"/x", Params{Page: 1, Limit: DefaultLimit}},
		{"/x?page=3&limit=25", Params{Page: 3, Limit: 25}},
		{"/x?page=abc&limit=-1", Params{Page: 1, Limit: DefaultLimit}},
		{"/x?limit=5000", Params{Page: 1, Limit: MaxLimit}},
		{"/x?page=0", Params{Page: 1, Limit: DefaultLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := ParseRequest(r); got != tt.want {
				t.Errorf("ParseRequest(%s) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}
