// Package loader builds an immutable snapshot from the tables or files
// the ingestion and validation collaborators produce. The pipeline is
// version → catalog → associations → merge → index; the caller swaps
// the result into the snapshot store.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/t2a/ccam/internal/catalog"
	"github.com/t2a/ccam/internal/graph"
	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/normalize"
	"github.com/t2a/ccam/internal/search"
	"github.com/t2a/ccam/internal/snapfile"
	"github.com/t2a/ccam/internal/snapshot"
	embedsql "github.com/t2a/ccam/internal/sql"
)

// LoadError wraps an error with the phase where it occurred.
type LoadError struct {
	Phase string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Options tunes a snapshot load.
type Options struct {
	Search search.Options
	// FrequencyJSON optionally merges an extra validated-associations
	// JSON file (the scraping collaborator's output format) into the
	// frequency set before the tier merge.
	FrequencyJSON string
}

type inputs struct {
	version      string
	codes        []model.Code
	official     []model.Pair
	incompatible []model.Pair
	frequency    []model.FrequencyPair
}

// assemble runs the shared tail of the pipeline: catalog build, tier
// merge, index build, plus summary bookkeeping.
func assemble(in inputs, source string, log zerolog.Logger, opts Options, start time.Time) (*snapshot.Snapshot, *model.LoadSummary, error) {
	if opts.FrequencyJSON != "" {
		extra, err := ReadFrequencyJSON(opts.FrequencyJSON)
		if err != nil {
			return nil, nil, &LoadError{Phase: "frequency-json", Err: err}
		}
		in.frequency = append(in.frequency, extra...)
	}

	catStart := time.Now()
	cat, err := catalog.New(in.version, in.codes)
	if err != nil {
		return nil, nil, &LoadError{Phase: "catalog", Err: err}
	}
	catDur := time.Since(catStart)

	graphStart := time.Now()
	g := graph.Build(in.official, in.incompatible, in.frequency, cat.Chapter)
	graphDur := time.Since(graphStart)

	// Count association endpoints the catalog does not know: stale
	// references from out-of-date collaborator data. Kept in the graph
	// (the assembler skips them per query) but surfaced for metrics.
	stale := 0
	seen := func(p model.Pair) {
		if _, ok := cat.Get(p.A); !ok {
			stale++
		}
		if _, ok := cat.Get(p.B); !ok {
			stale++
		}
	}
	for _, p := range in.official {
		seen(p)
	}
	for _, p := range in.incompatible {
		seen(p)
	}
	for _, p := range in.frequency {
		seen(model.Pair{A: p.A, B: p.B})
	}

	idxStart := time.Now()
	sn := snapshot.New(cat, g, opts.Search)
	idxDur := time.Since(idxStart)

	summary := &model.LoadSummary{
		Version:           in.version,
		Source:            source,
		Codes:             cat.Len(),
		ActiveCodes:       cat.ActiveLen(),
		OfficialPairs:     len(in.official),
		IncompatiblePairs: len(in.incompatible),
		FrequencyPairs:    len(in.frequency),
		EdgesByTier:       g.Stats().EdgesByTier,
		ScrubbedPairs:     g.Stats().ScrubbedPairs,
		StaleReferences:   stale,
		DurationCatalog:   catDur,
		DurationGraph:     graphDur,
		DurationIndex:     idxDur,
		DurationTotal:     time.Since(start),
	}

	log.Info().
		Str("version", summary.Version).
		Str("source", summary.Source).
		Int("codes", summary.Codes).
		Int("active_codes", summary.ActiveCodes).
		Int("edges", g.Edges()).
		Int("scrubbed_pairs", summary.ScrubbedPairs).
		Int("stale_references", summary.StaleReferences).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("snapshot loaded")

	return sn, summary, nil
}

// FromPostgres loads a snapshot from the collaborator tables.
func FromPostgres(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, opts Options) (*snapshot.Snapshot, *model.LoadSummary, error) {
	start := time.Now()
	var in inputs

	// Phase 1: data version. A catalog with no registered active
	// version gets a fresh one so snapshots stay distinguishable.
	if err := pool.QueryRow(ctx, embedsql.SelectActiveVersion).Scan(&in.version); err != nil {
		in.version = "unversioned-" + uuid.NewString()
		log.Warn().Str("version", in.version).Msg("no active data version registered, generated one")
	}

	// Phase 2: catalog rows.
	rows, err := pool.Query(ctx, embedsql.SelectCodes)
	if err != nil {
		return nil, nil, &LoadError{Phase: "catalog", Err: err}
	}
	for rows.Next() {
		var c model.Code
		if err := rows.Scan(&c.Code, &c.Label, &c.Description, &c.ICR, &c.Retired,
			&c.Chapter, &c.ChapterTitle, &c.Subchapter, &c.SubchapterTitle); err != nil {
			rows.Close()
			return nil, nil, &LoadError{Phase: "catalog", Err: err}
		}
		in.codes = append(in.codes, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, &LoadError{Phase: "catalog", Err: err}
	}

	// Phase 3: association records, three sources.
	in.official, err = scanPairs(ctx, pool, embedsql.SelectOfficialAssociations)
	if err != nil {
		return nil, nil, &LoadError{Phase: "associations", Err: err}
	}
	in.incompatible, err = scanPairs(ctx, pool, embedsql.SelectIncompatibilities)
	if err != nil {
		return nil, nil, &LoadError{Phase: "associations", Err: err}
	}
	in.frequency, err = scanFrequencyPairs(ctx, pool, embedsql.SelectFrequentAssociations)
	if err != nil {
		return nil, nil, &LoadError{Phase: "associations", Err: err}
	}

	return assemble(in, "postgres", log, opts, start)
}

// FromDir loads a snapshot from an offline snapshot directory written by
// `ccam snapshot export`. The data version is the SHA-256 of the codes file.
func FromDir(dir string, log zerolog.Logger, opts Options) (*snapshot.Snapshot, *model.LoadSummary, error) {
	start := time.Now()
	var in inputs

	sha, err := normalize.FileHash(dir + "/" + snapfile.CodesFile)
	if err != nil {
		return nil, nil, &LoadError{Phase: "version", Err: err}
	}
	in.version = sha

	in.codes, err = snapfile.ReadCodes(dir)
	if err != nil {
		return nil, nil, &LoadError{Phase: "catalog", Err: err}
	}

	var dropped int
	in.official, in.incompatible, in.frequency, dropped, err = snapfile.ReadAssociations(dir)
	if err != nil {
		return nil, nil, &LoadError{Phase: "associations", Err: err}
	}
	if dropped > 0 {
		log.Warn().Int("rows", dropped).Msg("dropped association rows with unrecognized kind")
	}

	return assemble(in, dir, log, opts, start)
}

func scanPairs(ctx context.Context, pool *pgxpool.Pool, query string) ([]model.Pair, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Pair
	for rows.Next() {
		var p model.Pair
		if err := rows.Scan(&p.A, &p.B); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanFrequencyPairs(ctx context.Context, pool *pgxpool.Pool, query string) ([]model.FrequencyPair, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FrequencyPair
	for rows.Next() {
		var p model.FrequencyPair
		if err := rows.Scan(&p.A, &p.B, &p.Support); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
