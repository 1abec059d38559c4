package loader

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/t2a/ccam/internal/catalog"
	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/snapfile"
	embedsql "github.com/t2a/ccam/internal/sql"
)

// Export writes the raw collaborator tables into an offline snapshot
// directory. Association records are exported as-is; tiers are merged
// on load, never persisted.
func Export(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, dir string) error {
	rows, err := pool.Query(ctx, embedsql.SelectCodes)
	if err != nil {
		return &LoadError{Phase: "export-catalog", Err: err}
	}
	var codes []model.Code
	for rows.Next() {
		var c model.Code
		if err := rows.Scan(&c.Code, &c.Label, &c.Description, &c.ICR, &c.Retired,
			&c.Chapter, &c.ChapterTitle, &c.Subchapter, &c.SubchapterTitle); err != nil {
			rows.Close()
			return &LoadError{Phase: "export-catalog", Err: err}
		}
		codes = append(codes, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return &LoadError{Phase: "export-catalog", Err: err}
	}

	official, err := scanPairs(ctx, pool, embedsql.SelectOfficialAssociations)
	if err != nil {
		return &LoadError{Phase: "export-associations", Err: err}
	}
	incompatible, err := scanPairs(ctx, pool, embedsql.SelectIncompatibilities)
	if err != nil {
		return &LoadError{Phase: "export-associations", Err: err}
	}
	frequency, err := scanFrequencyPairs(ctx, pool, embedsql.SelectFrequentAssociations)
	if err != nil {
		return &LoadError{Phase: "export-associations", Err: err}
	}

	// Validate identifiers through a throwaway catalog build so a bad
	// export is caught here rather than on every later load.
	cat, err := catalog.New("export", codes)
	if err != nil {
		return &LoadError{Phase: "export-validate", Err: err}
	}

	if err := snapfile.Write(dir, cat.Codes(), official, incompatible, frequency); err != nil {
		return &LoadError{Phase: "export-write", Err: err}
	}

	log.Info().
		Str("dir", dir).
		Int("codes", len(codes)).
		Int("official", len(official)).
		Int("incompatible", len(incompatible)).
		Int("frequency", len(frequency)).
		Msg("snapshot exported")
	return nil
}
