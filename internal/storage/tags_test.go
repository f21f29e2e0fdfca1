package storage

import (
	"database/sql"
	"reflect"
	"testing"
)

func TestDecodeTags(t *testing.T) {
	cases := []struct {
		name string
		raw  sql.NullString
		want []string
	}{
		{"null", sql.NullString{}, nil},
		{"empty string", sql.NullString{Valid: true}, nil},
		{"json array", sql.NullString{Valid: true, String: `["db","infra"]`}, []string{"db", "infra"}},
		{"empty json array", sql.NullString{Valid: true, String: `[]`}, nil},
		{"legacy comma list", sql.NullString{Valid: true, String: "db, infra ,api"}, []string{"db", "infra", "api"}},
		{"legacy single", sql.NullString{Valid: true, String: "solo"}, []string{"solo"}},
		{"legacy stray commas", sql.NullString{Valid: true, String: ",db,,"}, []string{"db"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeTags(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("decodeTags(%v) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEncodeTags(t *testing.T) {
	if got := encodeTags(nil); got != nil {
		t.Errorf("encodeTags(nil) = %v, want nil", got)
	}
	if got := encodeTags([]string{"a", "b"}); got != `["a","b"]` {
		t.Errorf(`encodeTags = %v, want ["a","b"]`, got)
	}
	// Empty but non-nil still round-trips as a JSON array.
	if got := encodeTags([]string{}); got != `[]` {
		t.Errorf("encodeTags([]) = %v, want []", got)
	}
}

func TestTagMatching(t *testing.T) {
	tags := []string{"db", "infra"}

	if !hasAllTags(tags, []string{"db"}) || !hasAllTags(tags, []string{"db", "infra"}) {
		t.Error("hasAllTags should match subsets")
	}
	if hasAllTags(tags, []string{"db", "api"}) {
		t.Error("hasAllTags should require every tag")
	}
	if hasAllTags(nil, []string{"db"}) {
		t.Error("hasAllTags on untagged item should be false")
	}

	if !hasAnyTag(tags, []string{"api", "infra"}) {
		t.Error("hasAnyTag should match on one overlap")
	}
	if hasAnyTag(tags, []string{"api"}) {
		t.Error("hasAnyTag without overlap should be false")
	}
}

func TestValidateTagFilters(t *testing.T) {
	if err := validateTagFilters([]string{"a"}, nil); err != nil {
		t.Errorf("Single filter should pass, got %v", err)
	}
	if err := validateTagFilters(nil, nil); err != nil {
		t.Errorf("No filters should pass, got %v", err)
	}
	if err := validateTagFilters([]string{"a"}, []string{"b"}); err == nil {
		t.Error("Combined filters should be rejected")
	}
}
