package core

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestRender_Empty(t *testing.T) {
	for name, records := range map[string][]PriceRecord{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			html := renderString(t, Render(records))
			assert.Contains(t, html, EmptyResultsText)
			assert.NotContains(t, html, "price-card")
		})
	}
}

func TestRender_Cards(t *testing.T) {
	records := []PriceRecord{
		NewPriceRecord(NumberValue(5), "EUR", "b", "5 €"),
		NewPriceRecord(NumberValue(10), "USD", "a", "$10"),
	}

	html := renderString(t, Render(records))

	assert.Equal(t, 2, strings.Count(html, "card price-card"))
	assert.NotContains(t, html, EmptyResultsText)
	assert.Contains(t, html, `<span class="badge bg-light text-dark">EUR</span>`)
	assert.Contains(t, html, "Raw: $10")
	assert.Less(t, strings.Index(html, ">EUR<"), strings.Index(html, ">USD<"))
}

func TestRender_MissingCurrencyBadge(t *testing.T) {
	html := renderString(t, Render([]PriceRecord{NewPriceRecord(NumberValue(1), "", "x", "1")}))
	assert.Contains(t, html, `<span class="badge bg-light text-dark">—</span>`)
	assert.Contains(t, html, `<div class="card-price">1</div>`)
}

func TestRender_EscapesUntrustedText(t *testing.T) {
	rec := NewPriceRecord(NumberValue(1), `<i>"X"</i>`, "<script>alert('x')</script>", `a & b <img src=x onerror=1>`)

	html := renderString(t, Render([]PriceRecord{rec}))

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<img")
	assert.NotContains(t, html, "<i>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "a &amp; b &lt;img")
	assert.NotContains(t, html, `'x'`)
	assert.NotContains(t, html, `"X"`)
}

func TestRender_TruncatesContextOnly(t *testing.T) {
	text := strings.Repeat("x", ContextDisplayLimit) + "TAIL"
	raw := strings.Repeat("r", 300)

	html := renderString(t, Render([]PriceRecord{NewPriceRecord(NumberValue(1), "", text, raw)}))

	assert.NotContains(t, html, "TAIL")
	assert.Contains(t, html, strings.Repeat("x", ContextDisplayLimit))
	assert.Contains(t, html, raw)
}

func TestRender_NonNumericValue(t *testing.T) {
	html := renderString(t, Render([]PriceRecord{NewPriceRecord(TextValue("consultar"), "EUR", "", "")}))
	assert.Contains(t, html, `<div class="card-price">consultar</div>`)
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Render([]PriceRecord{NewPriceRecord(NumberValue(1), "EUR", "x", "1 €")}).Render(ctx, &buf)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}
