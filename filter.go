package facet

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// DefaultPriority is the sort key assigned to filters that do not configure
// their own.
const DefaultPriority = 10

// Filter is a single named faceted-filter strategy. Implementations are
// pure over their inputs: Sanitize never panics and degrades invalid input
// to the kind's empty shape, and ModifyQuery only ever appends to the shared
// query, never replaces another filter's contribution.
type Filter interface {
	// Name is the stable unique identifier within a Registry.
	Name() string
	// Kind drives the sanitizer family and the UI control.
	Kind() Kind
	// Label is the display label, derived from Name when not configured.
	Label() string
	// Source records the constraint provenance (taxonomy, field, custom).
	Source() Source
	// SourceKey is the taxonomy name or field key the filter binds to.
	SourceKey() string
	// Multiple reports whether more than one value can be selected.
	Multiple() bool
	// Priority is the ascending sort key for render and mutation order.
	Priority() int
	// Enabled reports whether the filter participates in composition at
	// all, independent of whether it currently has a value.
	Enabled() bool
	// ParamName is the request-parameter key, ParamPrefix + Name.
	ParamName() string
	// ValueFromParams extracts the raw, unsanitized request value.
	// Composite-shaped kinds (range, date_range) read two parameters.
	ValueFromParams(p Params) any
	// Sanitize coerces arbitrary input into the canonical Value for this
	// kind. Idempotent; never panics.
	Sanitize(raw any) Value
	// IsActive reports whether the sanitized value constrains the result
	// set.
	IsActive(v Value) bool
	// Choices returns the selectable universe for discrete kinds, in
	// render order. Range kinds return nil. The result is computed once
	// per instance and cached.
	Choices(ctx context.Context) []Choice
	// DisplayValue renders the current value for active-filter chips.
	DisplayValue(ctx context.Context, v Value) string
	// ModifyQuery appends this filter's constraint to the shared query.
	// No-op when the value is inactive.
	ModifyQuery(q *Query, v Value)
}

// filterConfig is the constructor-time configuration shared by the built-in
// filters. Immutable after construction.
type filterConfig struct {
	name      string
	label     string
	source    Source
	sourceKey string
	multiple  bool
	priority  int
	enabled   bool

	// Kind-specific extras.
	emptyOptionLabel string
	hierarchical     bool
	hideEmpty        bool
	maxItems         int
	minBound         float64
	maxBound         float64
	step             float64
	prefix           string
	suffix           string
	minLength        int
	dateLayout       string
	startLabel       string
	endLabel         string
	static           []Choice
}

func newFilterConfig(name string, source Source, sourceKey string) filterConfig {
	return filterConfig{
		name:      name,
		source:    source,
		sourceKey: sourceKey,
		priority:  DefaultPriority,
		enabled:   true,
	}
}

// FilterOption configures a built-in filter at construction time. Options
// that do not apply to the filter's kind are ignored.
type FilterOption func(*filterConfig)

// WithLabel overrides the display label derived from the filter name.
func WithLabel(label string) FilterOption {
	return func(c *filterConfig) { c.label = label }
}

// WithPriority sets the ascending sort key (default 10).
func WithPriority(p int) FilterOption {
	return func(c *filterConfig) { c.priority = p }
}

// Disabled registers the filter without letting it constrain queries.
func Disabled() FilterOption {
	return func(c *filterConfig) { c.enabled = false }
}

// WithSourceKey binds a filter to a specific field key. Keyword filters use
// it to constrain a single field instead of the query-wide search term.
func WithSourceKey(key string) FilterOption {
	return func(c *filterConfig) { c.sourceKey = key }
}

// WithMultiple toggles multi-select for select filters.
func WithMultiple(multiple bool) FilterOption {
	return func(c *filterConfig) { c.multiple = multiple }
}

// WithEmptyOptionLabel sets the label of the "no selection" choice of a
// single-select filter.
func WithEmptyOptionLabel(label string) FilterOption {
	return func(c *filterConfig) { c.emptyOptionLabel = label }
}

// WithHierarchical toggles depth-first tree rendering of taxonomy choices.
func WithHierarchical(hierarchical bool) FilterOption {
	return func(c *filterConfig) { c.hierarchical = hierarchical }
}

// WithHideEmpty toggles skipping terms with zero usage count.
func WithHideEmpty(hide bool) FilterOption {
	return func(c *filterConfig) { c.hideEmpty = hide }
}

// WithMaxItems caps the number of choices a flat multi-select renders.
func WithMaxItems(n int) FilterOption {
	return func(c *filterConfig) { c.maxItems = n }
}

// WithBounds sets the numeric control bounds advertised to the renderer.
func WithBounds(minBound, maxBound float64) FilterOption {
	return func(c *filterConfig) {
		c.minBound = minBound
		c.maxBound = maxBound
	}
}

// WithStep sets the numeric step; fractional steps normalize entered values
// to the step's decimal places.
func WithStep(step float64) FilterOption {
	return func(c *filterConfig) { c.step = step }
}

// WithPrefix sets the unit prefix used in display values (e.g. "$").
func WithPrefix(prefix string) FilterOption {
	return func(c *filterConfig) { c.prefix = prefix }
}

// WithSuffix sets the unit suffix used in display values (e.g. " km").
func WithSuffix(suffix string) FilterOption {
	return func(c *filterConfig) { c.suffix = suffix }
}

// WithMinLength sets the minimum trimmed length below which a keyword is
// inactive (default 2).
func WithMinLength(n int) FilterOption {
	return func(c *filterConfig) { c.minLength = n }
}

// WithDateLayout sets the Go time layout used to localize date display
// values (default "Jan 2, 2006").
func WithDateLayout(layout string) FilterOption {
	return func(c *filterConfig) { c.dateLayout = layout }
}

// WithBoundLabels sets the placeholder labels for the two sides of a range
// control.
func WithBoundLabels(start, end string) FilterOption {
	return func(c *filterConfig) {
		c.startLabel = start
		c.endLabel = end
	}
}

// WithStaticChoices sets a fixed choice list. Taxonomy filters fall back to
// it only when the computed term list is empty.
func WithStaticChoices(choices []Choice) FilterOption {
	return func(c *filterConfig) { c.static = choices }
}

// baseFilter carries the shared configuration accessors for the built-in
// filter types.
type baseFilter struct {
	cfg filterConfig
}

func (b *baseFilter) Name() string      { return b.cfg.name }
func (b *baseFilter) Source() Source    { return b.cfg.source }
func (b *baseFilter) SourceKey() string { return b.cfg.sourceKey }
func (b *baseFilter) Multiple() bool    { return b.cfg.multiple }
func (b *baseFilter) Priority() int     { return b.cfg.priority }
func (b *baseFilter) Enabled() bool     { return b.cfg.enabled }

func (b *baseFilter) Label() string {
	if b.cfg.label != "" {
		return b.cfg.label
	}
	return humanizeName(b.cfg.name)
}

func (b *baseFilter) ParamName() string { return ParamPrefix + b.cfg.name }

// ValueFromParams reads the single-parameter convention shared by text and
// select kinds. Multi-select filters read the full value list.
func (b *baseFilter) ValueFromParams(p Params) any {
	key := b.ParamName()
	if b.cfg.multiple {
		return p.Values(key)
	}
	return p.Get(key)
}

// humanizeName turns "price_range" or "open-now" into "Price Range" /
// "Open Now".
func humanizeName(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}

// coerceTermID coerces arbitrary scalar input into a term identifier.
// Negative and non-numeric input collapse to 0, never an error; fractional
// numeric strings truncate toward zero.
func coerceTermID(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		if v < 0 {
			return 0
		}
		return v
	case int64:
		if v < 0 {
			return 0
		}
		return int(v)
	case float64:
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || f < 0 {
			return 0
		}
		return int(f)
	case TermValue:
		return coerceTermID(int(v))
	default:
		return 0
	}
}

// coerceTermIDs coerces arbitrary input into a term identifier list.
// Elements map through coerceTermID with zeros kept; a present scalar
// becomes a one-element list, preserving the inert "selected id 0" shape
// for garbage scalar input.
func coerceTermIDs(raw any) []int {
	switch v := raw.(type) {
	case nil:
		return nil
	case []int:
		if len(v) == 0 {
			return nil
		}
		out := make([]int, len(v))
		for i, e := range v {
			out[i] = coerceTermID(e)
		}
		return out
	case []string:
		if len(v) == 0 {
			return nil
		}
		out := make([]int, len(v))
		for i, e := range v {
			out[i] = coerceTermID(e)
		}
		return out
	case []any:
		if len(v) == 0 {
			return nil
		}
		out := make([]int, len(v))
		for i, e := range v {
			out[i] = coerceTermID(e)
		}
		return out
	case MultiValue:
		return coerceTermIDs([]int(v))
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []int{coerceTermID(v)}
	default:
		return []int{coerceTermID(raw)}
	}
}

// anyNonZero reports whether at least one identifier is truthy.
func anyNonZero(ids []int) bool {
	for _, id := range ids {
		if id != 0 {
			return true
		}
	}
	return false
}

// nonZero returns the truthy identifiers, preserving order.
func nonZero(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}

// firstString coerces raw scalar-or-list input to a single string.
func firstString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case TextValue:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
		return ""
	case []any:
		if len(v) > 0 {
			return firstString(v[0])
		}
		return ""
	default:
		return ""
	}
}
