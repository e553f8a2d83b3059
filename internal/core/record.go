package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ValueKind distinguishes the shapes a price value can take in extracted data.
type ValueKind int

const (
	ValueAbsent ValueKind = iota // missing or null
	ValueNumber
	ValueText // anything that is not a JSON number
)

// Value is the magnitude of a price record. Extraction output is not always
// clean, so a value may be missing or hold something other than a number.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value {
	return Value{kind: ValueNumber, num: f}
}

// TextValue returns a non-numeric Value carrying its original text.
func TextValue(s string) Value {
	return Value{kind: ValueText, text: s}
}

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Number returns the numeric magnitude and whether v is numeric.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == ValueNumber
}

// SortKey returns the magnitude used for ordering; non-numeric values count as 0.
func (v Value) SortKey() float64 {
	if v.kind == ValueNumber {
		return v.num
	}
	return 0
}

// String returns the plain string form of the value. Absent values are empty.
func (v Value) String() string {
	switch v.kind {
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueText:
		return v.text
	default:
		return ""
	}
}

// valueFromJSON interprets a raw JSON token as a Value.
func valueFromJSON(raw json.RawMessage) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Value{}
	}
	switch raw[0] {
	case '"', 't', 'f', '{', '[':
		s, _ := jsonText(raw)
		return TextValue(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return TextValue(string(raw))
	}
	return NumberValue(f)
}

// jsonText returns the display string of a raw JSON token and whether the
// token carried anything (false for missing or null).
func jsonText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw), true
	}
	return buf.String(), true
}

// ErrNotObject is returned when a price entry is not a JSON object.
var ErrNotObject = errors.New("price record is not a JSON object")

// PriceRecord is one extracted price observation.
//
// A record keeps the exact JSON object it was decoded from and re-emits it when
// marshalled, so exports carry every original field untouched.
type PriceRecord struct {
	value    Value
	currency string
	context  string
	raw      string
	source   json.RawMessage
}

// NewPriceRecord builds a record from typed fields. An empty currency is
// stored as null, matching what the extractor writes for unknown currencies.
func NewPriceRecord(value Value, currency, context, raw string) PriceRecord {
	obj := struct {
		Raw      string  `json:"raw"`
		Value    any     `json:"value,omitempty"`
		Currency *string `json:"currency"`
		Context  string  `json:"context"`
	}{Raw: raw, Context: context}

	switch value.kind {
	case ValueNumber:
		obj.Value = value.num
	case ValueText:
		obj.Value = value.text
	}
	if currency != "" {
		obj.Currency = &currency
	}

	source, err := json.Marshal(obj)
	if err != nil {
		// Only reachable for NaN or Inf, which JSON cannot carry.
		source = nil
	}

	return PriceRecord{
		value:    value,
		currency: currency,
		context:  context,
		raw:      raw,
		source:   source,
	}
}

// DecodePriceRecord parses one entry of a dataset's price list.
func DecodePriceRecord(data []byte) (PriceRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return PriceRecord{}, ErrNotObject
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return PriceRecord{}, fmt.Errorf("compact price record: %w", err)
	}

	rec := PriceRecord{
		value:  valueFromJSON(fields["value"]),
		source: compact.Bytes(),
	}
	rec.currency, _ = jsonText(fields["currency"])
	rec.context, _ = jsonText(fields["context"])
	rec.raw, _ = jsonText(fields["raw"])
	return rec, nil
}

// opaqueRecord wraps a price entry that is not an object. It has no fields
// of its own and marshals back to data.
func opaqueRecord(data []byte) PriceRecord {
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return PriceRecord{source: append(json.RawMessage(nil), data...)}
	}
	return PriceRecord{source: compact.Bytes()}
}

// Value returns the record's magnitude.
func (r PriceRecord) Value() Value { return r.value }

// Currency returns the currency code, or "" when the record has none.
func (r PriceRecord) Currency() string { return r.currency }

// HasCurrency reports whether the record carries a non-empty currency code.
func (r PriceRecord) HasCurrency() bool { return r.currency != "" }

// Context returns the descriptive text surrounding the price.
func (r PriceRecord) Context() string { return r.context }

// Raw returns the original source text of the price.
func (r PriceRecord) Raw() string { return r.raw }

// MarshalJSON re-emits the object the record was built from.
func (r PriceRecord) MarshalJSON() ([]byte, error) {
	if len(r.source) == 0 {
		return NewPriceRecord(r.value, r.currency, r.context, r.raw).source, nil
	}
	return r.source, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *PriceRecord) UnmarshalJSON(data []byte) error {
	rec, err := DecodePriceRecord(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}
