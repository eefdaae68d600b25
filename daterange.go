package facet

import (
	"context"
	"regexp"
	"time"
)

// DefaultDateLayout localizes date display values when no site layout is
// configured.
const DefaultDateLayout = "Jan 2, 2006"

const isoDateLayout = "2006-01-02"

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateRange is the calendar min/max filter over ISO YYYY-MM-DD bounds.
type DateRange struct {
	baseFilter
}

var _ Filter = (*DateRange)(nil)

// NewDateRange creates a date range filter bound to a field key.
func NewDateRange(name, fieldKey string, opts ...FilterOption) *DateRange {
	cfg := newFilterConfig(name, SourceField, fieldKey)
	cfg.dateLayout = DefaultDateLayout
	for _, o := range opts {
		o(&cfg)
	}
	return &DateRange{baseFilter{cfg: cfg}}
}

// Kind returns KindDateRange.
func (d *DateRange) Kind() Kind { return KindDateRange }

// ValueFromParams reads the two-parameter convention {param}_start /
// {param}_end.
func (d *DateRange) ValueFromParams(p Params) any {
	key := d.ParamName()
	return map[string]string{
		"start": p.Get(key + "_start"),
		"end":   p.Get(key + "_end"),
	}
}

// Sanitize coerces raw input into the {start,end} shape. Each side must
// match the strict ISO format and be a real calendar date; any failure
// collapses that side to "".
func (d *DateRange) Sanitize(raw any) Value {
	v := DateRangeValue{}
	switch m := raw.(type) {
	case DateRangeValue:
		v = m
	case *DateRangeValue:
		if m != nil {
			v = *m
		}
	case map[string]string:
		v.Start, v.End = m["start"], m["end"]
	case map[string]any:
		v.Start, v.End = firstString(m["start"]), firstString(m["end"])
	}
	v.Start = sanitizeISODate(v.Start)
	v.End = sanitizeISODate(v.End)
	return v
}

// sanitizeISODate validates format and calendar validity; 2024-02-30 is
// rejected, 2024-02-29 survives.
func sanitizeISODate(s string) string {
	if !isoDateRe.MatchString(s) {
		return ""
	}
	if _, err := time.Parse(isoDateLayout, s); err != nil {
		return ""
	}
	return s
}

// IsActive requires at least one populated side.
func (d *DateRange) IsActive(v Value) bool {
	dv, ok := v.(DateRangeValue)
	return ok && (dv.Start != "" || dv.End != "")
}

// Choices returns nil; date ranges have no discrete universe.
func (d *DateRange) Choices(context.Context) []Choice { return nil }

// DisplayValue localizes the populated bound(s) through the configured
// date layout.
func (d *DateRange) DisplayValue(_ context.Context, v Value) string {
	dv, ok := v.(DateRangeValue)
	if !ok {
		return ""
	}
	start := d.formatDate(dv.Start)
	end := d.formatDate(dv.End)
	switch {
	case dv.Start != "" && dv.End != "":
		return start + " - " + end
	case dv.Start != "":
		return "From " + start
	case dv.End != "":
		return "Until " + end
	default:
		return ""
	}
}

func (d *DateRange) formatDate(iso string) string {
	t, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return iso
	}
	layout := d.cfg.dateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	return t.Format(layout)
}

// ModifyQuery appends one date-typed meta constraint, mirroring Range's
// BETWEEN / >= / <= selection.
func (d *DateRange) ModifyQuery(q *Query, v Value) {
	if !d.IsActive(v) {
		return
	}
	dv := v.(DateRangeValue)
	c := MetaConstraint{Key: d.cfg.sourceKey, Type: MetaDate}
	switch {
	case dv.Start != "" && dv.End != "":
		c.Compare = CompareBetween
		c.Values = []string{dv.Start, dv.End}
	case dv.Start != "":
		c.Compare = CompareGTE
		c.Values = []string{dv.Start}
	default:
		c.Compare = CompareLTE
		c.Values = []string{dv.End}
	}
	meta := q.MetaConstraints()
	meta = append(meta, c)
	q.SetMetaConstraints(meta)
}

func (d *DateRange) attributes() map[string]string {
	attrs := map[string]string{"format": isoDateLayout}
	if d.cfg.startLabel != "" {
		attrs["start_label"] = d.cfg.startLabel
	}
	if d.cfg.endLabel != "" {
		attrs["end_label"] = d.cfg.endLabel
	}
	return attrs
}
