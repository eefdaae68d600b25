package facet

import (
	"context"
	"strconv"
)

// Choice is one selectable option of a discrete filter. Depth carries the
// hierarchy level for indented rendering; renderers indent one fixed unit
// per depth.
type Choice struct {
	Value string
	Label string
	Count int
	Depth int
}

// Descriptor is the render contract handed to the templating collaborator:
// everything needed to draw one filter control, with no markup attached.
type Descriptor struct {
	Name         string
	Kind         Kind
	Label        string
	Value        Value
	Choices      []Choice
	DisplayValue string
	IsActive     bool
	Attributes   map[string]string
}

// attributed is implemented by filters that expose extra control attributes
// (numeric bounds, placeholders) to the renderer.
type attributed interface {
	attributes() map[string]string
}

// Describe builds the render descriptor for one filter against the current
// request parameters.
func Describe(ctx context.Context, f Filter, p Params) Descriptor {
	v := f.Sanitize(f.ValueFromParams(p))
	active := f.IsActive(v)

	d := Descriptor{
		Name:     f.Name(),
		Kind:     f.Kind(),
		Label:    f.Label(),
		Value:    v,
		Choices:  f.Choices(ctx),
		IsActive: active,
	}
	if active {
		d.DisplayValue = f.DisplayValue(ctx, v)
	}
	if a, ok := f.(attributed); ok {
		d.Attributes = a.attributes()
	}
	return d
}

// selectedLabels resolves identifiers against a choice list, matching on
// string-normalized values so integer and string selections compare
// consistently.
func selectedLabels(ids []int, choices []Choice) []string {
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		want := strconv.Itoa(id)
		for _, c := range choices {
			if c.Value == want {
				labels = append(labels, c.Label)
				break
			}
		}
	}
	return labels
}
