package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/JonMunkholm/PriceView/internal/config"
	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no stored extraction matches.
var ErrNotFound = errors.New("dataset not found")

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS price_extractions (
	id         uuid PRIMARY KEY,
	created_at timestamptz NOT NULL DEFAULT now(),
	prices     jsonb NOT NULL DEFAULT '[]'::jsonb,
	meta       jsonb NOT NULL DEFAULT '{}'::jsonb
)`

const (
	selectByIDSQL   = `SELECT id::text, created_at, prices, meta FROM price_extractions WHERE id = $1::uuid`
	selectLatestSQL = `SELECT id::text, created_at, prices, meta FROM price_extractions ORDER BY created_at DESC LIMIT 1`
	insertSQL       = `INSERT INTO price_extractions (id, prices, meta) VALUES ($1::uuid, $2, $3)`
)

// Extraction is a dataset stored in Postgres.
type Extraction struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Dataset   core.Dataset
}

// PostgresStore reads and writes extractions in the price_extractions table.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore creates a store over db.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the extractions table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return eris.Wrap(err, "ensure price_extractions schema")
	}
	return nil
}

// Load returns the extraction with the given id, or the most recent one when
// id is empty.
func (s *PostgresStore) Load(ctx context.Context, id string) (Extraction, error) {
	var row pgx.Row
	if id == "" {
		row = s.db.QueryRow(ctx, selectLatestSQL)
	} else {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return Extraction{}, eris.Wrapf(err, "read dataset: invalid extraction id %q", id)
		}
		row = s.db.QueryRow(ctx, selectByIDSQL, parsed.String())
	}

	var (
		rawID  string
		ext    Extraction
		prices []byte
		meta   []byte
	)
	if err := row.Scan(&rawID, &ext.CreatedAt, &prices, &meta); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if id == "" {
				return Extraction{}, eris.Wrap(ErrNotFound, "no stored extractions")
			}
			return Extraction{}, eris.Wrapf(ErrNotFound, "extraction %s", id)
		}
		return Extraction{}, eris.Wrap(err, "read dataset")
	}

	parsedID, err := uuid.Parse(rawID)
	if err != nil {
		return Extraction{}, eris.Wrapf(err, "read dataset: stored id %q", rawID)
	}
	ext.ID = parsedID
	ext.Dataset = core.Dataset{
		Prices: core.ParsePrices(prices),
		Meta:   core.NewMetadata(meta),
	}
	return ext, nil
}

// Save stores ds under a new id and returns it.
func (s *PostgresStore) Save(ctx context.Context, ds core.Dataset) (uuid.UUID, error) {
	if ds.Prices == nil {
		ds.Prices = []core.PriceRecord{}
	}
	prices, err := json.Marshal(ds.Prices)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "encode prices")
	}
	meta, err := json.Marshal(ds.Meta)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "encode meta")
	}

	id := uuid.New()
	if _, err := s.db.Exec(ctx, insertSQL, id.String(), prices, meta); err != nil {
		return uuid.Nil, eris.Wrap(err, "insert extraction")
	}
	return id, nil
}

// NewPool opens a connection pool sized from cfg and verifies it with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, eris.Wrap(err, "parse database URL")
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, eris.Wrap(err, "connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "ping database")
	}
	return pool, nil
}
