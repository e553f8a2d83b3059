package core

import "github.com/a-h/templ"

//go:generate templ generate

// ContextDisplayLimit is how many characters of a record's context a card shows.
const ContextDisplayLimit = 160

// EmptyResultsText is shown in place of cards when nothing matches.
const EmptyResultsText = "Sin resultados"

const noCurrencyBadge = "—"

// Render returns a component that draws one card per record, or a single
// placeholder when records is empty.
func Render(records []PriceRecord) templ.Component {
	return priceCards(records)
}

// currencyBadge is the text of a card's currency badge.
func currencyBadge(r PriceRecord) string {
	if r.HasCurrency() {
		return r.currency
	}
	return noCurrencyBadge
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
