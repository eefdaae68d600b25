package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Build(t *testing.T) {
	def, err := NewIndex("facet:listing:idx").
		Prefix("facet:listing:").
		Text("title").
		TagWithOpts("tax_listing_category", "|", false).
		SortableNumeric("price").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if def.Name != "facet:listing:idx" {
		t.Errorf("name = %q", def.Name)
	}
	if len(def.Fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(def.Fields))
	}
	if def.Fields[1].Type != IndexFieldTag || def.Fields[1].TagSeparator != "|" {
		t.Errorf("tag field = %+v", def.Fields[1])
	}
	if !def.Fields[2].Sortable {
		t.Error("numeric field should be sortable")
	}
}

func TestIndexBuilder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{"no fields", NewIndex("idx"), "at least one field"},
		{"empty name", NewIndex("").Text("title"), "index name is required"},
		{"bad name", NewIndex("idx with spaces").Text("title"), "invalid characters"},
		{
			"duplicate field",
			NewIndex("idx").Text("title").Text("title"),
			"duplicate field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	def := NewIndex("idx").Prefix("facet:").Text("title").Numeric("price").MustBuild()
	got := def.String()
	want := "FT.CREATE idx ON HASH PREFIX facet: SCHEMA title TEXT price NUMERIC"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"idx", "facet:listing:idx", "a_b-c", "Term123"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "a b", "x;y", "café"}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true, want false", s)
		}
	}
}
