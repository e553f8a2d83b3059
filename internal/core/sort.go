package core

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey names the field records are ordered by.
type SortKey string

const (
	SortByValue    SortKey = "value"
	SortByCurrency SortKey = "currency"
)

// ParseSortKey maps a control value to a SortKey, defaulting to value.
func ParseSortKey(s string) SortKey {
	if SortKey(strings.TrimSpace(s)) == SortByCurrency {
		return SortByCurrency
	}
	return SortByValue
}

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection maps a control value to a Direction. Anything other than
// "desc" is ascending.
func ParseDirection(s string) Direction {
	if Direction(strings.TrimSpace(s)) == Descending {
		return Descending
	}
	return Ascending
}

func (d Direction) multiplier() int {
	if d == Descending {
		return -1
	}
	return 1
}

// collationTag is the locale currency codes are compared in.
var collationTag = language.Spanish

// Sort returns a stably ordered copy of records. Currency codes compare with
// locale collation (missing codes as ""), values compare numerically with
// non-numeric values as 0.
func Sort(records []PriceRecord, key SortKey, dir Direction) []PriceRecord {
	out := slices.Clone(records)
	if out == nil {
		out = []PriceRecord{}
	}
	m := dir.multiplier()

	switch key {
	case SortByCurrency:
		// Collator keeps internal buffers and is not safe for concurrent use.
		col := collate.New(collationTag)
		slices.SortStableFunc(out, func(a, b PriceRecord) int {
			return m * col.CompareString(a.currency, b.currency)
		})
	default:
		slices.SortStableFunc(out, func(a, b PriceRecord) int {
			return m * cmp.Compare(a.value.SortKey(), b.value.SortKey())
		})
	}
	return out
}
