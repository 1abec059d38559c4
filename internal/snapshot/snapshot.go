// Package snapshot bundles one consistent, immutable data version: the
// code catalog, the compatibility graph, the search index built over
// them, and a plan assembler. Reloads swap the whole bundle by atomic
// pointer; queries in flight keep the snapshot they started with.
package snapshot

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/t2a/ccam/internal/catalog"
	"github.com/t2a/ccam/internal/graph"
	"github.com/t2a/ccam/internal/plan"
	"github.com/t2a/ccam/internal/search"
)

// ErrNoSnapshot is returned before the first successful load.
var ErrNoSnapshot = errors.New("no snapshot loaded")

// ErrDataVersionMismatch is returned when a caller pins a data version
// that is no longer current. Fatal to that call; the caller should
// retry against the new snapshot.
var ErrDataVersionMismatch = errors.New("data version mismatch")

type Snapshot struct {
	Version  string
	LoadedAt time.Time
	Catalog  *catalog.Catalog
	Graph    *graph.Graph
	Search   *search.Engine
	Plans    *plan.Assembler
}

// New assembles a snapshot from its loaded parts, building the search
// index and the plan assembler over them.
func New(cat *catalog.Catalog, g *graph.Graph, opts search.Options) *Snapshot {
	return &Snapshot{
		Version:  cat.Version(),
		LoadedAt: time.Now().UTC(),
		Catalog:  cat,
		Graph:    g,
		Search:   search.New(cat, opts),
		Plans:    plan.New(cat, g),
	}
}

// Store is the process-wide holder of the current snapshot.
// The zero value is ready to use.
type Store struct {
	cur atomic.Pointer[Snapshot]
}

// Swap atomically publishes sn as the current snapshot.
func (s *Store) Swap(sn *Snapshot) {
	s.cur.Store(sn)
}

// Current returns the current snapshot.
func (s *Store) Current() (*Snapshot, error) {
	sn := s.cur.Load()
	if sn == nil {
		return nil, ErrNoSnapshot
	}
	return sn, nil
}

// At returns the current snapshot after checking that its data version
// matches the one the caller pinned. An empty version pins nothing.
func (s *Store) At(version string) (*Snapshot, error) {
	sn, err := s.Current()
	if err != nil {
		return nil, err
	}
	if version != "" && version != sn.Version {
		return nil, fmt.Errorf("pinned %s, current %s: %w", version, sn.Version, ErrDataVersionMismatch)
	}
	return sn, nil
}
