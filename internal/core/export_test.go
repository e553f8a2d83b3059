package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_RoundTrip(t *testing.T) {
	store := testStore(t)

	file, err := Export(store)
	require.NoError(t, err)

	assert.Equal(t, "resultados_precios.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)

	want, err := json.Marshal(map[string]any{"prices": store.All()})
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(file.Body))

	// Unknown fields survive
	assert.Contains(t, string(file.Body), `"sku": "A1"`)
}

func TestExport_KeepsNonObjectEntries(t *testing.T) {
	store := NewRecordStore(ParseDataset([]byte(`{"prices":[{"value":1}, 5, "x", null, {"value":2}]}`)))
	require.Equal(t, 5, store.Len())

	file, err := Export(store)
	require.NoError(t, err)
	assert.JSONEq(t, `{"prices":[{"value":1},5,"x",null,{"value":2}]}`, string(file.Body))

	opaque := store.All()[3]
	assert.Equal(t, ValueAbsent, opaque.Value().Kind())
	assert.Empty(t, opaque.Context())
	assert.Len(t, Filter(store.All(), "x"), 0)
	assert.Len(t, Filter(store.All(), ""), 5)
}

func TestExport_PrettyPrinted(t *testing.T) {
	store := NewRecordStore(ParseDataset([]byte(`{"prices":[{"value":1,"context":"<a & b>"}]}`)))

	file, err := Export(store)
	require.NoError(t, err)

	body := string(file.Body)
	assert.True(t, strings.HasPrefix(body, "{\n  \"prices\": [\n    {"), "body: %s", body)
	assert.Contains(t, body, `"context": "<a & b>"`)
	assert.False(t, strings.HasSuffix(body, "\n"))
}

func TestExport_IgnoresView(t *testing.T) {
	store := testStore(t)

	// A binder with a narrowing filter must not change what is exported
	surface := &recordingSurface{}
	b := NewBinder(t.Context(), store, nil, surface)
	b.Start()
	b.OnFilterChange("zzz")
	b.OnSortChange(SortByCurrency, Descending)
	b.OnExport()

	require.Len(t, surface.downloads, 1)
	direct, err := Export(store)
	require.NoError(t, err)
	assert.Equal(t, direct.Body, surface.downloads[0].Body)
}

func TestExport_Empty(t *testing.T) {
	file, err := Export(NewRecordStore(Dataset{}))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"prices\": []\n}", string(file.Body))

	var buf bytes.Buffer
	n, err := file.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(file.Body)), n)
	assert.Equal(t, file.Body, buf.Bytes())
}
