package taxonomy

import (
	"strconv"

	"github.com/atlasdir/facet"
)

// Hash field names for a stored term.
const (
	fieldID     = "id"
	fieldName   = "name"
	fieldParent = "parent"
	fieldCount  = "count"
)

func termToFields(t facet.Term) map[string]string {
	return map[string]string{
		fieldID:     strconv.Itoa(t.ID),
		fieldName:   t.Name,
		fieldParent: strconv.Itoa(t.Parent),
		fieldCount:  strconv.Itoa(t.Count),
	}
}

func termFromFields(fields map[string]string) (facet.Term, bool) {
	id, err := strconv.Atoi(fields[fieldID])
	if err != nil || id <= 0 {
		return facet.Term{}, false
	}
	parent, _ := strconv.Atoi(fields[fieldParent])
	count, _ := strconv.Atoi(fields[fieldCount])
	return facet.Term{
		ID:     id,
		Name:   fields[fieldName],
		Parent: parent,
		Count:  count,
	}, true
}
