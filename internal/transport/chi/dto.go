package chi

import (
	"github.com/atlasdir/facet"

	"github.com/atlasdir/facet/internal/repository/listing"
)

type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeUnauthorized     errorCode = "unauthorized"
	codeValidationFailed errorCode = "validation_failed"
	codeNotFound         errorCode = "not_found"
	codeIndexUnavailable errorCode = "index_unavailable"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type listingPayload struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	City        string           `json:"city,omitempty"`
	Price       float64          `json:"price,omitempty"`
	Rating      float64          `json:"rating,omitempty"`
	OpenedAt    string           `json:"opened_at,omitempty"`
	Terms       map[string][]int `json:"terms,omitempty"`
}

type listingPageResponse struct {
	Items   []listingPayload       `json:"items"`
	Total   int                    `json:"total"`
	Page    int                    `json:"page"`
	PerPage int                    `json:"per_page"`
	Applied int                    `json:"applied_filters"`
	Active  map[string]chipPayload `json:"active_filters,omitempty"`
}

type chipPayload struct {
	Label        string `json:"label"`
	Value        any    `json:"value"`
	DisplayValue string `json:"display_value"`
}

type filterListResponse struct {
	Filters []descriptorPayload `json:"filters"`
}

type activeFilterResponse struct {
	Active map[string]chipPayload `json:"active"`
}

type descriptorPayload struct {
	Name         string            `json:"name"`
	Kind         facet.Kind        `json:"kind"`
	Label        string            `json:"label"`
	Value        any               `json:"value,omitempty"`
	Choices      []choicePayload   `json:"choices,omitempty"`
	DisplayValue string            `json:"display_value,omitempty"`
	IsActive     bool              `json:"is_active"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

type choicePayload struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
	Depth int    `json:"depth"`
}

type termPayload struct {
	ID     int    `json:"id,omitempty"`
	Name   string `json:"name"`
	Parent int    `json:"parent,omitempty"`
	Count  int    `json:"count,omitempty"`
}

type termListResponse struct {
	Taxonomy string        `json:"taxonomy"`
	Terms    []termPayload `json:"terms"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func listingToPayload(l listing.Listing) listingPayload {
	return listingPayload{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		City:        l.City,
		Price:       l.Price,
		Rating:      l.Rating,
		OpenedAt:    l.OpenedAt,
		Terms:       l.Terms,
	}
}

func listingFromPayload(id string, p listingPayload) listing.Listing {
	return listing.Listing{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		City:        p.City,
		Price:       p.Price,
		Rating:      p.Rating,
		OpenedAt:    p.OpenedAt,
		Terms:       p.Terms,
	}
}

func termToPayload(t facet.Term) termPayload {
	return termPayload{ID: t.ID, Name: t.Name, Parent: t.Parent, Count: t.Count}
}

func descriptorToPayload(d facet.Descriptor) descriptorPayload {
	out := descriptorPayload{
		Name:         d.Name,
		Kind:         d.Kind,
		Label:        d.Label,
		Value:        valueToJSON(d.Value),
		DisplayValue: d.DisplayValue,
		IsActive:     d.IsActive,
		Attributes:   d.Attributes,
	}
	if len(d.Choices) > 0 {
		out.Choices = make([]choicePayload, len(d.Choices))
		for i, c := range d.Choices {
			out.Choices[i] = choicePayload{Value: c.Value, Label: c.Label, Count: c.Count, Depth: c.Depth}
		}
	}
	return out
}

func activeToPayload(active map[string]facet.ActiveEntry) map[string]chipPayload {
	if len(active) == 0 {
		return nil
	}
	out := make(map[string]chipPayload, len(active))
	for name, e := range active {
		out[name] = chipPayload{
			Label:        e.Label,
			Value:        valueToJSON(e.Value),
			DisplayValue: e.DisplayValue,
		}
	}
	return out
}

// valueToJSON flattens a sanitized filter value into its wire shape.
func valueToJSON(v facet.Value) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case facet.TextValue:
		return string(tv)
	case facet.TermValue:
		return int(tv)
	case facet.MultiValue:
		return []int(tv)
	case facet.RangeValue:
		return map[string]string{"min": tv.Min, "max": tv.Max}
	case facet.DateRangeValue:
		return map[string]string{"start": tv.Start, "end": tv.End}
	default:
		return nil
	}
}
