// Package normalize maps free-text service-desk labels onto canonical study locations.
package normalize

import (
	"strings"

	"github.com/okian/busyspot/internal/domain/model"
)

// Mapping pairs a desk label with the location it belongs to.
type Mapping struct {
	Pattern  string
	Location model.Location
}

// Ordered: the first fuzzy match wins.
var table = []Mapping{
	{"Lam Circ", model.DavidLam},
	{"Lam Ref", model.DavidLam},
	{"David Lam Circ", model.DavidLam},
	{"David Lam Ref", model.DavidLam},

	{"Educ Circ", model.Education},
	{"Educ Ref", model.Education},
	{"Education Circ", model.Education},
	{"Education Ref", model.Education},

	{"Woodward Circ", model.Woodward},
	{"Woodward Ref", model.Woodward},

	{"Law Circ", model.Law},
	{"Law Ref", model.Law},
	{"Law Library Circ", model.Law},

	{"Asian Circ", model.Asian},
	{"Asian Ref", model.Asian},

	{"Xwi7xwa Circ", model.Xwi7xwa},
	{"Xwi7xwa Ref", model.Xwi7xwa},
	{"Xwi7xwa Off Desk", model.Xwi7xwa},

	{"Chapman", model.Chapman},
	{"Chapman LC", model.Chapman},
	{"Chapman LC Desk", model.Chapman},
}

// lowered holds the lower-cased patterns, index-aligned with table.
var lowered = func() []string {
	out := make([]string, len(table))
	for i, m := range table {
		out[i] = strings.ToLower(m.Pattern)
	}
	return out
}()

// Table returns a copy of the mapping table in match order.
func Table() []Mapping {
	out := make([]Mapping, len(table))
	copy(out, table)
	return out
}

// Normalize resolves a raw desk label. An exact (case-sensitive) match on the trimmed
// label wins; otherwise the first pattern whose lower-cased form occurs in the
// lower-cased label is used. Blank or unmatched labels report false.
func Normalize(raw string) (model.Location, bool) {
	label := strings.TrimSpace(raw)
	if label == "" {
		return "", false
	}
	for _, m := range table {
		if m.Pattern == label {
			return m.Location, true
		}
	}
	low := strings.ToLower(label)
	for i, p := range lowered {
		if strings.Contains(low, p) {
			return table[i].Location, true
		}
	}
	return "", false
}
