package listing

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Listing is the searchable catalog record persisted as a flat hash.
type Listing struct {
	ID          string
	Title       string
	Description string
	City        string
	Price       float64
	Rating      float64
	OpenedAt    string // ISO YYYY-MM-DD

	// Terms maps a taxonomy name to the term identifiers assigned to the
	// listing.
	Terms map[string][]int
}

// Reserved hash field names. Taxonomy assignments live under tax_{taxonomy}
// as a |-separated tag field.
const (
	fieldID          = "id"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCity        = "city"
	fieldPrice       = "price"
	fieldRating      = "rating"
	fieldOpenedAt    = "opened_at"

	taxFieldPrefix = "tax_"
	tagSeparator   = "|"
)

const isoDateLayout = "2006-01-02"

func listingToFields(l Listing) map[string]string {
	fields := map[string]string{
		fieldID:          l.ID,
		fieldTitle:       l.Title,
		fieldDescription: l.Description,
		fieldCity:        l.City,
		fieldPrice:       strconv.FormatFloat(l.Price, 'f', -1, 64),
		fieldRating:      strconv.FormatFloat(l.Rating, 'f', -1, 64),
	}
	if ts, ok := isoToUnix(l.OpenedAt); ok {
		fields[fieldOpenedAt] = strconv.FormatInt(ts, 10)
	}
	for taxonomy, ids := range l.Terms {
		if len(ids) == 0 {
			continue
		}
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		fields[taxFieldPrefix+taxonomy] = strings.Join(parts, tagSeparator)
	}
	return fields
}

func listingFromFields(fields map[string]string) (Listing, bool) {
	id := fields[fieldID]
	if id == "" {
		return Listing{}, false
	}

	l := Listing{
		ID:          id,
		Title:       fields[fieldTitle],
		Description: fields[fieldDescription],
		City:        fields[fieldCity],
	}
	l.Price, _ = strconv.ParseFloat(fields[fieldPrice], 64)
	l.Rating, _ = strconv.ParseFloat(fields[fieldRating], 64)
	if ts, err := strconv.ParseInt(fields[fieldOpenedAt], 10, 64); err == nil {
		l.OpenedAt = time.Unix(ts, 0).UTC().Format(isoDateLayout)
	}

	for k, v := range fields {
		if !strings.HasPrefix(k, taxFieldPrefix) || v == "" {
			continue
		}
		taxonomy := strings.TrimPrefix(k, taxFieldPrefix)
		parts := strings.Split(v, tagSeparator)
		ids := make([]int, 0, len(parts))
		for _, p := range parts {
			if n, err := strconv.Atoi(p); err == nil && n > 0 {
				ids = append(ids, n)
			}
		}
		sort.Ints(ids)
		if len(ids) > 0 {
			if l.Terms == nil {
				l.Terms = make(map[string][]int)
			}
			l.Terms[taxonomy] = ids
		}
	}

	return l, true
}

// isoToUnix converts an ISO date to the Unix timestamp of its UTC midnight.
func isoToUnix(iso string) (int64, bool) {
	t, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}
