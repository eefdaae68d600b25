package listing

import (
	"strconv"
	"strings"
	"time"

	"github.com/atlasdir/facet"
)

// translateQuery renders a composed filter query as an FT.SEARCH query
// string. An empty query matches everything.
func translateQuery(q *facet.Query) string {
	if q == nil || q.IsEmpty() {
		return "*"
	}

	var groups []string

	if term := strings.TrimSpace(q.Search()); term != "" {
		groups = append(groups, "("+escapeQuery(term)+")")
	}

	if part := joinGroup(taxParts(q.TaxConstraints()), q.TaxRelation()); part != "" {
		groups = append(groups, part)
	}
	if part := joinGroup(metaParts(q.MetaConstraints()), q.MetaRelation()); part != "" {
		groups = append(groups, part)
	}

	if len(groups) == 0 {
		return "*"
	}
	return strings.Join(groups, " ")
}

func taxParts(cs []facet.TaxConstraint) []string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		if len(c.Terms) == 0 {
			continue
		}
		ids := make([]string, len(c.Terms))
		for i, id := range c.Terms {
			ids[i] = strconv.Itoa(id)
		}
		// IN over the term ids: OR within the tag filter.
		parts = append(parts, "@"+taxFieldPrefix+c.Taxonomy+":{"+strings.Join(ids, tagSeparator)+"}")
	}
	return parts
}

func metaParts(cs []facet.MetaConstraint) []string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		if p := metaPart(c); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func metaPart(c facet.MetaConstraint) string {
	if c.Key == "" || len(c.Values) == 0 {
		return ""
	}
	switch c.Type {
	case facet.MetaChar:
		return charPart(c)
	case facet.MetaNumeric:
		return rangePart(c, numericBound, false)
	case facet.MetaDate:
		return rangePart(c, dateBound, true)
	default:
		return ""
	}
}

func charPart(c facet.MetaConstraint) string {
	v := escapeQuery(strings.TrimSpace(c.Values[0]))
	if v == "" {
		return ""
	}
	if c.Compare == facet.CompareLike {
		// Prefix matching over the TEXT field.
		return "@" + c.Key + ":(" + v + "*)"
	}
	return "@" + c.Key + ":(" + v + ")"
}

// rangePart renders a numeric or date constraint as @key:[lo hi]. The bound
// function validates and converts one raw value; an invalid bound drops the
// whole constraint rather than emitting broken syntax. Date upper bounds
// widen to the end of their calendar day.
func rangePart(c facet.MetaConstraint, bound func(string) (string, bool), dayEndUpper bool) string {
	lo, hi := "-inf", "+inf"
	switch c.Compare {
	case facet.CompareBetween:
		if len(c.Values) < 2 {
			return ""
		}
		b0, ok0 := bound(c.Values[0])
		b1, ok1 := bound(c.Values[1])
		if !ok0 || !ok1 {
			return ""
		}
		lo, hi = b0, b1
		if dayEndUpper {
			hi = shiftToDayEnd(hi)
		}
	case facet.CompareGTE:
		b, ok := bound(c.Values[0])
		if !ok {
			return ""
		}
		lo = b
	case facet.CompareLTE:
		b, ok := bound(c.Values[0])
		if !ok {
			return ""
		}
		hi = b
		if dayEndUpper {
			hi = shiftToDayEnd(hi)
		}
	default:
		return ""
	}
	return "@" + c.Key + ":[" + lo + " " + hi + "]"
}

func joinGroup(parts []string, rel facet.Relation) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	if rel == facet.RelationOr {
		return "(" + strings.Join(parts, " | ") + ")"
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func numericBound(s string) (string, bool) {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}
	return s, true
}

// dateBound converts an ISO date to a Unix-seconds bound at UTC midnight.
func dateBound(iso string) (string, bool) {
	t, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(t.Unix(), 10), true
}

func shiftToDayEnd(unixStr string) string {
	n, err := strconv.ParseInt(unixStr, 10, 64)
	if err != nil {
		return unixStr
	}
	return strconv.FormatInt(n+86399, 10)
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
