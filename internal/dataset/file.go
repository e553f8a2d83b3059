// Package dataset loads the price list the viewer shows, from an extractor
// JSON document or from extractions stored in Postgres.
package dataset

import (
	"bytes"
	"io"
	"os"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/rotisserie/eris"
)

// MaxDocumentSize caps how much of a dataset document is read.
const MaxDocumentSize = 64 << 20

// utf8BOM is written by some editors at the start of saved JSON files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile loads a dataset document from disk. A missing or unreadable file
// is an error; malformed content yields an empty dataset.
func ReadFile(path string) (core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Dataset{}, eris.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return core.Dataset{}, eris.Wrapf(err, "read dataset %s", path)
	}
	return ds, nil
}

// Read decodes a dataset document from r. A leading UTF-8 byte order mark
// is skipped.
func Read(r io.Reader) (core.Dataset, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return core.Dataset{}, eris.Wrap(err, "read dataset")
	}
	if len(data) > MaxDocumentSize {
		return core.Dataset{}, eris.Errorf("read dataset: document exceeds %d bytes", MaxDocumentSize)
	}
	return core.ParseDataset(bytes.TrimPrefix(data, utf8BOM)), nil
}
