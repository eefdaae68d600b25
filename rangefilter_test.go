package facet

import (
	"context"
	"testing"
)

func TestRange_Sanitize(t *testing.T) {
	f := NewRange("price", "price")
	tests := []struct {
		name string
		in   any
		want RangeValue
	}{
		{"both numeric", map[string]string{"min": "10", "max": "100"}, RangeValue{Min: "10", Max: "100"}},
		{"non-numeric min", map[string]string{"min": "cheap", "max": "50"}, RangeValue{Max: "50"}},
		{"whitespace", map[string]string{"min": " 7 ", "max": ""}, RangeValue{Min: "7"}},
		{"negative passes", map[string]string{"min": "-5"}, RangeValue{Min: "-5"}},
		{"decimal passes", map[string]string{"max": "9.99"}, RangeValue{Max: "9.99"}},
		{"nil", nil, RangeValue{}},
		{"wrong shape", []string{"10"}, RangeValue{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Sanitize(tt.in)
			if got != tt.want {
				t.Errorf("Sanitize(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRange_Sanitize_StepNormalization(t *testing.T) {
	f := NewRange("price", "price", WithStep(0.1))
	got := f.Sanitize(map[string]string{"min": "10", "max": "99.999"})
	want := RangeValue{Min: "10.0", Max: "100.0"}
	if got != want {
		t.Errorf("Sanitize = %#v, want %#v", got, want)
	}

	// Integral steps leave the entered precision alone.
	g := NewRange("price", "price", WithStep(5))
	if got := g.Sanitize(map[string]string{"min": "10.5"}); got != (RangeValue{Min: "10.5"}) {
		t.Errorf("Sanitize = %#v", got)
	}
}

func TestRange_IsActive(t *testing.T) {
	f := NewRange("price", "price")
	tests := []struct {
		name string
		in   Value
		want bool
	}{
		{"both", RangeValue{Min: "10", Max: "100"}, true},
		{"min only", RangeValue{Min: "10"}, true},
		{"max only", RangeValue{Max: "100"}, true},
		{"empty", RangeValue{}, false},
		{"wrong shape", TextValue("10"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IsActive(tt.in); got != tt.want {
				t.Errorf("IsActive(%#v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRange_ModifyQuery_Between(t *testing.T) {
	f := NewRange("price", "price")
	q := NewQuery()

	f.ModifyQuery(q, RangeValue{Min: "10", Max: "100"})
	meta := q.MetaConstraints()
	if len(meta) != 1 {
		t.Fatalf("meta constraints = %d, want 1", len(meta))
	}
	c := meta[0]
	if c.Key != "price" || c.Type != MetaNumeric || c.Compare != CompareBetween {
		t.Errorf("constraint = %+v", c)
	}
	if len(c.Values) != 2 || c.Values[0] != "10" || c.Values[1] != "100" {
		t.Errorf("values = %v, want [10 100]", c.Values)
	}
}

func TestRange_ModifyQuery_SingleSided(t *testing.T) {
	f := NewRange("price", "price")

	q := NewQuery()
	f.ModifyQuery(q, RangeValue{Min: "10"})
	if c := q.MetaConstraints()[0]; c.Compare != CompareGTE || c.Values[0] != "10" {
		t.Errorf("min-only constraint = %+v", c)
	}

	q = NewQuery()
	f.ModifyQuery(q, RangeValue{Max: "100"})
	if c := q.MetaConstraints()[0]; c.Compare != CompareLTE || c.Values[0] != "100" {
		t.Errorf("max-only constraint = %+v", c)
	}

	q = NewQuery()
	f.ModifyQuery(q, RangeValue{})
	if len(q.MetaConstraints()) != 0 {
		t.Error("inactive range must not touch the query")
	}
}

func TestRange_DisplayValue(t *testing.T) {
	f := NewRange("price", "price", WithPrefix("$"))
	ctx := context.Background()
	tests := []struct {
		name string
		in   RangeValue
		want string
	}{
		{"both", RangeValue{Min: "10", Max: "100"}, "$10 - $100"},
		{"min only", RangeValue{Min: "10"}, "$10 or more"},
		{"max only", RangeValue{Max: "100"}, "Up to $100"},
		{"empty", RangeValue{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.DisplayValue(ctx, tt.in); got != tt.want {
				t.Errorf("DisplayValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRange_ValueFromParams(t *testing.T) {
	f := NewRange("price", "price")
	p := Params{"q_price_min": {"10"}, "q_price_max": {"100"}}
	v := f.Sanitize(f.ValueFromParams(p))
	if v != (RangeValue{Min: "10", Max: "100"}) {
		t.Errorf("value = %#v", v)
	}
}

func TestStepDecimals(t *testing.T) {
	tests := []struct {
		step float64
		want int
	}{
		{0, 0},
		{1, 0},
		{5, 0},
		{0.1, 1},
		{0.25, 2},
		{-0.5, 0},
	}
	for _, tt := range tests {
		if got := stepDecimals(tt.step); got != tt.want {
			t.Errorf("stepDecimals(%v) = %d, want %d", tt.step, got, tt.want)
		}
	}
}
