package redis

import (
	"strings"
	"testing"

	"github.com/atlasdir/facet/internal/db"
)

func TestBuildCreateArgs(t *testing.T) {
	def := db.NewIndex("facet:listing:idx").
		Prefix("facet:listing:").
		Text("title").
		TagWithOpts("tax_listing_category", "|", false).
		SortableNumeric("price").
		MustBuild()

	args, err := buildCreateArgs(def)
	if err != nil {
		t.Fatalf("buildCreateArgs: %v", err)
	}

	got := strings.Join(args, " ")
	want := "facet:listing:idx ON HASH PREFIX 1 facet:listing: SCHEMA " +
		"title TEXT tax_listing_category TAG SEPARATOR | price NUMERIC SORTABLE"
	if got != want {
		t.Errorf("args = %q\nwant %q", got, want)
	}
}

func TestBuildCreateArgs_Invalid(t *testing.T) {
	if _, err := buildCreateArgs(&db.IndexDefinition{Name: "idx"}); err == nil {
		t.Error("expected error for empty schema")
	}
	if _, err := buildCreateArgs(&db.IndexDefinition{
		Fields: []db.IndexField{{Name: "f"}},
	}); err == nil {
		t.Error("expected error for missing index name")
	}
}

func TestBuildFieldArgs_Alias(t *testing.T) {
	args, err := buildFieldArgs(&db.IndexField{
		Name:  "opened_at",
		Alias: "opened",
		Type:  db.IndexFieldNumeric,
	})
	if err != nil {
		t.Fatalf("buildFieldArgs: %v", err)
	}
	if strings.Join(args, " ") != "opened_at AS opened NUMERIC" {
		t.Errorf("args = %v", args)
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index already exists", "index already exists", true},
		{"Unknown Index Name", "unknown index", true},
		{"short", "longer than s", false},
		{"", "", true},
	}
	for _, tt := range tests {
		if got := containsIgnoreCase(tt.s, tt.sub); got != tt.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tt.s, tt.sub, got, tt.want)
		}
	}
}
