package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePriceRecord(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantKind     ValueKind
		wantValue    string
		wantCurrency string
		wantContext  string
		wantRaw      string
	}{
		{
			name:         "complete record",
			in:           `{"value": 12.5, "currency": "EUR", "context": "Precio final", "raw": "12,50 €"}`,
			wantKind:     ValueNumber,
			wantValue:    "12.5",
			wantCurrency: "EUR",
			wantContext:  "Precio final",
			wantRaw:      "12,50 €",
		},
		{
			name:     "missing fields",
			in:       `{}`,
			wantKind: ValueAbsent,
		},
		{
			name:     "null value and currency",
			in:       `{"value": null, "currency": null, "context": "x"}`,
			wantKind: ValueAbsent,
			wantContext: "x",
		},
		{
			name:      "string value is text",
			in:        `{"value": "12"}`,
			wantKind:  ValueText,
			wantValue: "12",
		},
		{
			name:      "boolean value is text",
			in:        `{"value": true}`,
			wantKind:  ValueText,
			wantValue: "true",
		},
		{
			name:      "zero is numeric",
			in:        `{"value": 0}`,
			wantKind:  ValueNumber,
			wantValue: "0",
		},
		{
			name:         "numeric currency is kept as text",
			in:           `{"value": 3, "currency": 978}`,
			wantKind:     ValueNumber,
			wantValue:    "3",
			wantCurrency: "978",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodePriceRecord([]byte(tt.in))
			require.NoError(t, err)

			assert.Equal(t, tt.wantKind, rec.Value().Kind())
			assert.Equal(t, tt.wantValue, rec.Value().String())
			assert.Equal(t, tt.wantCurrency, rec.Currency())
			assert.Equal(t, tt.wantCurrency != "", rec.HasCurrency())
			assert.Equal(t, tt.wantContext, rec.Context())
			assert.Equal(t, tt.wantRaw, rec.Raw())
		})
	}
}

func TestDecodePriceRecord_NotObject(t *testing.T) {
	for _, in := range []string{`[]`, `"text"`, `42`, `null`, `{`} {
		_, err := DecodePriceRecord([]byte(in))
		assert.ErrorIs(t, err, ErrNotObject, "input %s", in)
	}
}

func TestPriceRecord_MarshalPreservesSource(t *testing.T) {
	in := `{"value": 9.99, "currency": null, "context": "<b>", "raw": "9,99", "selector": "#p", "extra": [1, 2]}`

	rec, err := DecodePriceRecord([]byte(in))
	require.NoError(t, err)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestNewPriceRecord(t *testing.T) {
	rec := NewPriceRecord(NumberValue(10), "", "ctx", "10")

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":"10","value":10,"currency":null,"context":"ctx"}`, string(out))
	assert.False(t, rec.HasCurrency())

	absent := NewPriceRecord(Value{}, "USD", "", "")
	out, err = json.Marshal(absent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":"","currency":"USD","context":""}`, string(out))
}

func TestValue_SortKey(t *testing.T) {
	assert.Equal(t, 4.5, NumberValue(4.5).SortKey())
	assert.Equal(t, 0.0, TextValue("abc").SortKey())
	assert.Equal(t, 0.0, Value{}.SortKey())

	n, ok := TextValue("7").Number()
	assert.False(t, ok)
	assert.Zero(t, n)
}
