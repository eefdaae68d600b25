package facet

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// Range is the numeric min/max filter. Values stay strings end to end so
// user-entered precision survives sanitization.
type Range struct {
	baseFilter
}

var _ Filter = (*Range)(nil)

// NewRange creates a numeric range filter bound to a field key.
func NewRange(name, fieldKey string, opts ...FilterOption) *Range {
	cfg := newFilterConfig(name, SourceField, fieldKey)
	for _, o := range opts {
		o(&cfg)
	}
	return &Range{baseFilter{cfg: cfg}}
}

// Kind returns KindRange.
func (r *Range) Kind() Kind { return KindRange }

// ValueFromParams reads the two-parameter convention {param}_min /
// {param}_max instead of the single-parameter one.
func (r *Range) ValueFromParams(p Params) any {
	key := r.ParamName()
	return map[string]string{
		"min": p.Get(key + "_min"),
		"max": p.Get(key + "_max"),
	}
}

// Sanitize coerces raw input into the {min,max} shape, validating each side
// independently: non-numeric collapses to "", numeric passes through except
// for step normalization. Unknown keys are ignored.
func (r *Range) Sanitize(raw any) Value {
	v := RangeValue{}
	switch m := raw.(type) {
	case RangeValue:
		v = m
	case *RangeValue:
		if m != nil {
			v = *m
		}
	case map[string]string:
		v.Min, v.Max = m["min"], m["max"]
	case map[string]any:
		v.Min, v.Max = firstString(m["min"]), firstString(m["max"])
	}
	v.Min = r.sanitizeSide(v.Min)
	v.Max = r.sanitizeSide(v.Max)
	return v
}

// sanitizeSide validates one bound: empty or non-numeric input yields "";
// fractional steps normalize the value to the step's decimal places.
func (r *Range) sanitizeSide(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if d := stepDecimals(r.cfg.step); d > 0 {
		return strconv.FormatFloat(f, 'f', d, 64)
	}
	return s
}

// stepDecimals returns how many decimal places a fractional step carries;
// integral or unset steps return 0.
func stepDecimals(step float64) int {
	if step <= 0 || step == math.Trunc(step) {
		return 0
	}
	s := strconv.FormatFloat(step, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// IsActive requires at least one populated side.
func (r *Range) IsActive(v Value) bool {
	rv, ok := v.(RangeValue)
	return ok && (rv.Min != "" || rv.Max != "")
}

// Choices returns nil; ranges have no discrete universe.
func (r *Range) Choices(context.Context) []Choice { return nil }

// DisplayValue formats the populated side(s) with the configured unit
// prefix and suffix.
func (r *Range) DisplayValue(_ context.Context, v Value) string {
	rv, ok := v.(RangeValue)
	if !ok {
		return ""
	}
	lo := r.cfg.prefix + rv.Min + r.cfg.suffix
	hi := r.cfg.prefix + rv.Max + r.cfg.suffix
	switch {
	case rv.Min != "" && rv.Max != "":
		return lo + " - " + hi
	case rv.Min != "":
		return lo + " or more"
	case rv.Max != "":
		return "Up to " + hi
	default:
		return ""
	}
}

// ModifyQuery appends one numeric meta constraint: BETWEEN when both sides
// are populated, >= or <= for a single side.
func (r *Range) ModifyQuery(q *Query, v Value) {
	if !r.IsActive(v) {
		return
	}
	rv := v.(RangeValue)
	c := MetaConstraint{Key: r.cfg.sourceKey, Type: MetaNumeric}
	switch {
	case rv.Min != "" && rv.Max != "":
		c.Compare = CompareBetween
		c.Values = []string{rv.Min, rv.Max}
	case rv.Min != "":
		c.Compare = CompareGTE
		c.Values = []string{rv.Min}
	default:
		c.Compare = CompareLTE
		c.Values = []string{rv.Max}
	}
	meta := q.MetaConstraints()
	meta = append(meta, c)
	q.SetMetaConstraints(meta)
}

func (r *Range) attributes() map[string]string {
	attrs := map[string]string{
		"min":  strconv.FormatFloat(r.cfg.minBound, 'f', -1, 64),
		"max":  strconv.FormatFloat(r.cfg.maxBound, 'f', -1, 64),
		"step": strconv.FormatFloat(r.cfg.step, 'f', -1, 64),
	}
	if r.cfg.prefix != "" {
		attrs["prefix"] = r.cfg.prefix
	}
	if r.cfg.suffix != "" {
		attrs["suffix"] = r.cfg.suffix
	}
	return attrs
}
