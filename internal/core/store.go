package core

import (
	"bytes"
	"encoding/json"
	"log/slog"
)

// Metadata is the opaque description of an extraction run. It is forwarded
// verbatim in reports and never interpreted beyond display lookups.
type Metadata struct {
	raw json.RawMessage
}

// NewMetadata wraps a JSON object. Anything that is not an object yields
// empty metadata.
func NewMetadata(data []byte) Metadata {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return Metadata{}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Metadata{}
	}
	return Metadata{raw: buf.Bytes()}
}

// IsEmpty reports whether the metadata has no fields.
func (m Metadata) IsEmpty() bool {
	return len(m.raw) == 0 || bytes.Equal(m.raw, []byte("{}"))
}

// Lookup returns the display text of a top-level key.
func (m Metadata) Lookup(key string) (string, bool) {
	if len(m.raw) == 0 {
		return "", false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(m.raw, &fields); err != nil {
		return "", false
	}
	return jsonText(fields[key])
}

// MarshalJSON implements json.Marshaler.
func (m Metadata) MarshalJSON() ([]byte, error) {
	if len(m.raw) == 0 {
		return []byte("{}"), nil
	}
	return m.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = NewMetadata(data)
	return nil
}

// Dataset is the page state handed to the viewer: the extracted prices and
// the metadata describing where they came from.
type Dataset struct {
	Prices []PriceRecord `json:"prices"`
	Meta   Metadata      `json:"meta"`
}

// ParseDataset decodes a dataset document. Extraction output is untrusted, so
// parsing never fails: a malformed document yields an empty dataset and
// entries that are not objects are dropped.
func ParseDataset(data []byte) Dataset {
	var doc struct {
		Prices json.RawMessage `json:"prices"`
		Meta   json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("dataset is not a JSON object, using empty dataset", "error", err)
		return Dataset{Prices: []PriceRecord{}}
	}

	return Dataset{
		Prices: ParsePrices(doc.Prices),
		Meta:   NewMetadata(doc.Meta),
	}
}

// ParsePrices decodes a JSON array of price records. A missing or non-array
// value yields an empty list. Entries that are not objects are kept as
// opaque records so exports still carry them.
func ParsePrices(data []byte) []PriceRecord {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
			slog.Warn("dataset prices is not an array, ignoring")
		}
		return []PriceRecord{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("dataset prices could not be decoded", "error", err)
		return []PriceRecord{}
	}

	prices := make([]PriceRecord, 0, len(items))
	for i, item := range items {
		rec, err := DecodePriceRecord(item)
		if err != nil {
			slog.Debug("keeping opaque price entry", "index", i, "error", err)
			rec = opaqueRecord(item)
		}
		prices = append(prices, rec)
	}
	return prices
}

// RecordStore holds the canonical dataset for the lifetime of a view. It is
// never mutated after construction, so it is safe for concurrent readers.
type RecordStore struct {
	prices []PriceRecord
	meta   Metadata
}

// NewRecordStore copies ds into a new store.
func NewRecordStore(ds Dataset) *RecordStore {
	prices := make([]PriceRecord, len(ds.Prices))
	copy(prices, ds.Prices)
	return &RecordStore{prices: prices, meta: ds.Meta}
}

// All returns a copy of every record in insertion order.
func (s *RecordStore) All() []PriceRecord {
	out := make([]PriceRecord, len(s.prices))
	copy(out, s.prices)
	return out
}

// Len returns the number of records.
func (s *RecordStore) Len() int { return len(s.prices) }

// Meta returns the dataset metadata.
func (s *RecordStore) Meta() Metadata { return s.meta }

// Dataset returns a copy of the full dataset.
func (s *RecordStore) Dataset() Dataset {
	return Dataset{Prices: s.All(), Meta: s.meta}
}
