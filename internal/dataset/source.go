package dataset

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/PriceView/internal/config"
	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/rotisserie/eris"
)

// Open loads the dataset selected by cfg. For the postgres source it opens a
// pool for the duration of the load.
func Open(ctx context.Context, cfg *config.Config) (core.Dataset, error) {
	switch strings.ToLower(cfg.Dataset.Source) {
	case config.SourcePostgres:
		pool, err := NewPool(ctx, cfg.Database)
		if err != nil {
			return core.Dataset{}, err
		}
		defer pool.Close()

		ext, err := NewPostgresStore(pool).Load(ctx, cfg.Dataset.ID)
		if err != nil {
			return core.Dataset{}, err
		}
		slog.Info("dataset loaded",
			"source", config.SourcePostgres,
			"extraction_id", ext.ID,
			"created_at", ext.CreatedAt,
			"records", len(ext.Dataset.Prices),
		)
		return ext.Dataset, nil

	case config.SourceFile, "":
		ds, err := ReadFile(cfg.Dataset.Path)
		if err != nil {
			return core.Dataset{}, err
		}
		slog.Info("dataset loaded",
			"source", config.SourceFile,
			"path", cfg.Dataset.Path,
			"records", len(ds.Prices),
		)
		return ds, nil

	default:
		return core.Dataset{}, eris.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}
