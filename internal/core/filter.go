package core

import "strings"

// Filter returns the records whose context, currency or value contains query,
// ignoring case. An empty query keeps everything. The input is not modified
// and relative order is preserved.
func Filter(records []PriceRecord, query string) []PriceRecord {
	if query == "" {
		out := make([]PriceRecord, len(records))
		copy(out, records)
		return out
	}

	q := strings.ToLower(query)
	out := make([]PriceRecord, 0, len(records))
	for _, r := range records {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r PriceRecord, q string) bool {
	for _, field := range [...]string{r.context, r.currency, r.value.String()} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
