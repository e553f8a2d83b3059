package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ExportFilename is the name downloads of the dataset are saved under.
const ExportFilename = "resultados_precios.json"

// ExportContentType is the media type of an export body.
const ExportContentType = "application/json"

// ExportFile is a ready-to-save copy of the dataset.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// WriteTo implements io.WriterTo.
func (e ExportFile) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.Body)
	return int64(n), err
}

// Export serializes every record in the store as {"prices": [...]}, indented
// with two spaces. The current filter and sort never affect it.
func Export(store *RecordStore) (ExportFile, error) {
	doc := struct {
		Prices []PriceRecord `json:"prices"`
	}{Prices: store.All()}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return ExportFile{}, fmt.Errorf("encode export: %w", err)
	}

	return ExportFile{
		Filename:    ExportFilename,
		ContentType: ExportContentType,
		Body:        bytes.TrimSuffix(buf.Bytes(), []byte("\n")),
	}, nil
}
