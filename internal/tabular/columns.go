package tabular

import (
	"sort"

	"sjsage522/tapeworker/internal/flatten"

	"github.com/samber/lo"
)

// ColumnSet is the ordered list of CSV column names
type ColumnSet []string

// Ordering decides the column order of an inferred ColumnSet
type Ordering int

const (
	// Lexicographic sorts inferred columns by byte order
	Lexicographic Ordering = iota
	// FirstSeen keeps the order in which columns first appear across rows
	FirstSeen
)

// String returns the ordering name
func (o Ordering) String() string {
	switch o {
	case Lexicographic:
		return "lexicographic"
	case FirstSeen:
		return "first-seen"
	default:
		return "unknown"
	}
}

// Fixed builds a ColumnSet from an explicit schema. Duplicate names are
// dropped after their first occurrence.
func Fixed(columns ...string) ColumnSet {
	return ColumnSet(lo.Uniq(columns))
}

// Union collects every path of every row before ordering them. Rows that
// introduce a column late still contribute it.
func Union(rows []flatten.FlatRecord, order Ordering) ColumnSet {
	var all []string
	for _, row := range rows {
		all = append(all, row.Paths()...)
	}
	columns := lo.Uniq(all)
	if order == Lexicographic {
		sort.Strings(columns)
	}
	return ColumnSet(columns)
}
