package facet

// Kind discriminates the control family of a filter. It drives which
// sanitizer applies and which UI control a renderer should emit.
type Kind string

const (
	// KindText is a free-text input (keyword search).
	KindText Kind = "text"
	// KindSelect is a single- or multi-select over discrete choices.
	KindSelect Kind = "select"
	// KindCheckbox is a flat multi-select rendered as independent checkboxes.
	KindCheckbox Kind = "checkbox"
	// KindRange is a numeric min/max pair.
	KindRange Kind = "range"
	// KindDateRange is a calendar min/max pair.
	KindDateRange Kind = "date_range"
)

// Source records where a filter's constraint binds: a taxonomy, a stored
// field, or a custom extension.
type Source string

const (
	// SourceTaxonomy binds the filter to taxonomy term membership.
	SourceTaxonomy Source = "taxonomy"
	// SourceField binds the filter to a stored field/meta key.
	SourceField Source = "field"
	// SourceCustom marks externally defined filter strategies.
	SourceCustom Source = "custom"
)

// Value is the canonical sanitized value of a filter. The concrete shape is
// fixed per Kind, so consumers switch exhaustively instead of probing raw
// input. A nil Value is always inactive.
type Value interface {
	isValue()
}

// TextValue is the sanitized value of a text filter.
type TextValue string

func (TextValue) isValue() {}

// TermValue is a single selected term identifier. Zero means no selection.
type TermValue int

func (TermValue) isValue() {}

// MultiValue is a list of selected term identifiers. Zero entries are kept;
// activeness checks decide whether they count.
type MultiValue []int

func (MultiValue) isValue() {}

// RangeValue is a numeric min/max pair. Both sides are strings to preserve
// the exact precision the user entered; empty string means unbounded.
type RangeValue struct {
	Min string
	Max string
}

func (RangeValue) isValue() {}

// DateRangeValue is a calendar start/end pair in ISO YYYY-MM-DD form.
// Empty string means unbounded.
type DateRangeValue struct {
	Start string
	End   string
}

func (DateRangeValue) isValue() {}
