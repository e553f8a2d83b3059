package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var extractionColumns = []string{"id", "created_at", "prices", "meta"}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS price_extractions").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	err = NewPostgresStore(mock).EnsureSchema(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id::text, created_at, prices, meta FROM price_extractions WHERE id").
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows(extractionColumns).AddRow(
			id.String(),
			created,
			[]byte(`[{"value":5,"currency":"EUR"},"junk",{"value":10}]`),
			[]byte(`{"url":"https://shop.example"}`),
		))

	ext, err := NewPostgresStore(mock).Load(context.Background(), id.String())
	require.NoError(t, err)

	assert.Equal(t, id, ext.ID)
	assert.Equal(t, created, ext.CreatedAt)
	assert.Len(t, ext.Dataset.Prices, 2)
	url, _ := ext.Dataset.Meta.Lookup("url")
	assert.Equal(t, "https://shop.example", url)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadLatest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("ORDER BY created_at DESC LIMIT 1").
		WillReturnRows(pgxmock.NewRows(extractionColumns).AddRow(
			id.String(), time.Now(), []byte(`[]`), []byte(`{}`),
		))

	ext, err := NewPostgresStore(mock).Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, id, ext.ID)
	assert.Empty(t, ext.Dataset.Prices)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM price_extractions WHERE id").
		WithArgs(id.String()).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresStore(mock).Load(context.Background(), id.String())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "DS001", core.MapError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadInvalidID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresStore(mock).Load(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid extraction id")
	// No query was issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("ORDER BY created_at DESC").WillReturnError(errors.New("connection reset by peer"))

	_, err = NewPostgresStore(mock).Load(context.Background(), "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPostgresStore_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ds := core.ParseDataset([]byte(`{"prices":[{"value":1,"currency":"USD","sku":"A"}],"meta":{"q":"zapatos"}}`))
	prices, err := json.Marshal(ds.Prices)
	require.NoError(t, err)
	meta, err := json.Marshal(ds.Meta)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO price_extractions").
		WithArgs(pgxmock.AnyArg(), prices, meta).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := NewPostgresStore(mock).Save(context.Background(), ds)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO price_extractions").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("duplicate key value"))

	id, err := NewPostgresStore(mock).Save(context.Background(), core.Dataset{})
	require.Error(t, err)
	assert.Equal(t, uuid.Nil, id)
	assert.Contains(t, err.Error(), "insert extraction")
}
