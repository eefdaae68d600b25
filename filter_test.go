package facet

import (
	"context"
	"reflect"
	"testing"
)

func TestHumanizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"keyword", "Keyword"},
		{"price_range", "Price Range"},
		{"open-now", "Open Now"},
		{"listing_category", "Listing Category"},
	}
	for _, tt := range tests {
		if got := humanizeName(tt.in); got != tt.want {
			t.Errorf("humanizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCoerceTermID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int", 7, 7},
		{"negative int", -7, 0},
		{"numeric string", "42", 42},
		{"fractional string", "3.9", 3},
		{"negative string", "-3", 0},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceTermID(tt.in); got != tt.want {
				t.Errorf("coerceTermID(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceTermIDs_KeepsZeros(t *testing.T) {
	got := coerceTermIDs([]string{"5", "junk", "-2", "9"})
	want := []int{5, 0, 0, 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("coerceTermIDs = %v, want %v", got, want)
	}
}

func TestCoerceTermIDs_ScalarGarbageBecomesInertZero(t *testing.T) {
	// A garbage scalar yields a one-element "selected id 0" list rather
	// than an empty selection.
	got := coerceTermIDs("junk")
	if !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("coerceTermIDs(junk) = %v, want [0]", got)
	}
	if got := coerceTermIDs(""); got != nil {
		t.Errorf("coerceTermIDs(\"\") = %v, want nil", got)
	}
}

func TestCoerceTermIDs_EmptyShapeStable(t *testing.T) {
	// An empty selection stays nil no matter how often it round-trips
	// through coercion; a non-nil empty slice would break the fixpoint.
	if got := coerceTermIDs([]int{}); got != nil {
		t.Errorf("coerceTermIDs([]int{}) = %#v, want nil", got)
	}
	if got := coerceTermIDs(MultiValue(nil)); got != nil {
		t.Errorf("coerceTermIDs(MultiValue(nil)) = %#v, want nil", got)
	}

	tag := NewTag("tags", "cat", nil)
	once := tag.Sanitize(nil)
	twice := tag.Sanitize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Sanitize(Sanitize(nil)) = %#v, want %#v", twice, once)
	}
}

// Sanitization must be a fixpoint: sanitizing a sanitized value changes
// nothing, for every filter kind.
func TestSanitizeIdempotent(t *testing.T) {
	terms := StaticTermSource{
		"cat": {{ID: 1, Name: "Food", Count: 3}},
	}
	filters := []Filter{
		NewKeyword("keyword"),
		NewCategory("category", "cat", terms),
		NewTag("tags", "cat", terms),
		NewRange("price", "price", WithStep(0.1)),
		NewDateRange("opened", "opened_at"),
	}
	raws := []any{
		"  pizza  ",
		"7",
		[]string{"3", "junk", "-1"},
		map[string]string{"min": "10.00", "max": "abc"},
		map[string]string{"start": "2024-02-29", "end": "2024-02-30"},
		nil,
		42,
		[]any{"x"},
	}

	for _, f := range filters {
		for _, raw := range raws {
			once := f.Sanitize(raw)
			twice := f.Sanitize(once)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("%s: Sanitize not idempotent for %v: %#v != %#v",
					f.Name(), raw, once, twice)
			}
		}
	}
}

func TestBaseFilter_ParamName(t *testing.T) {
	f := NewKeyword("keyword")
	if f.ParamName() != "q_keyword" {
		t.Errorf("ParamName() = %q, want q_keyword", f.ParamName())
	}
}

func TestBaseFilter_LabelDerived(t *testing.T) {
	f := NewRange("price_range", "price")
	if f.Label() != "Price Range" {
		t.Errorf("Label() = %q, want Price Range", f.Label())
	}
	g := NewRange("price_range", "price", WithLabel("Cost"))
	if g.Label() != "Cost" {
		t.Errorf("Label() = %q, want Cost", g.Label())
	}
}

func TestParams_BracketedMerge(t *testing.T) {
	p := Params{
		"q_tags":   {"1"},
		"q_tags[]": {"2", "3"},
	}
	got := p.Values("q_tags")
	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Values = %v, want %v", got, want)
	}
	if p.Get("missing") != "" {
		t.Error("Get(missing) should be empty")
	}
}

func TestDescribe_ActiveRange(t *testing.T) {
	f := NewRange("price", "price", WithPrefix("$"))
	p := Params{"q_price_min": {"10"}, "q_price_max": {"100"}}

	d := Describe(context.Background(), f, p)
	if !d.IsActive {
		t.Fatal("descriptor should be active")
	}
	if d.Kind != KindRange {
		t.Errorf("Kind = %q", d.Kind)
	}
	if d.DisplayValue != "$10 - $100" {
		t.Errorf("DisplayValue = %q", d.DisplayValue)
	}
	if d.Attributes["step"] == "" {
		t.Error("range descriptor should carry a step attribute")
	}
	if _, ok := d.Value.(RangeValue); !ok {
		t.Errorf("Value = %T, want RangeValue", d.Value)
	}
}

func TestDescribe_InactiveHasNoDisplayValue(t *testing.T) {
	f := NewKeyword("keyword")
	d := Describe(context.Background(), f, Params{})
	if d.IsActive {
		t.Error("empty params should be inactive")
	}
	if d.DisplayValue != "" {
		t.Errorf("DisplayValue = %q, want empty", d.DisplayValue)
	}
}
