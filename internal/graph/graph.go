// Package graph holds the compatibility relation between code pairs.
// It reconciles three partially conflicting sources — official ATIH
// associations, official incompatibilities, and observed co-occurrence
// frequencies — into a single tier per unordered pair. The merge runs
// once at load time; query-time lookups are read-only map hits.
package graph

import (
	"sort"

	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/normalize"
)

// pairKey is a canonically ordered unordered pair (a < b).
type pairKey struct{ a, b string }

func keyOf(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

type edge struct {
	tier    model.Tier
	support int
}

// Neighbor is one compatible (or excluded) counterpart of a code.
type Neighbor struct {
	Code    string
	Tier    model.Tier
	Support int // observation count, frequency-derived tiers only
}

// Stats summarizes the outcome of the merge.
type Stats struct {
	EdgesByTier   map[string]int
	ScrubbedPairs int // compatibility records dropped because an incompatibility won
}

type Graph struct {
	edges map[pairKey]edge
	adj   map[string][]Neighbor
	stats Stats
}

// Build merges the three input sets into a tiered graph. regionOf maps a
// code to its chapter tag ("" when unknown) and decides same_region vs
// cross_region for frequency-only pairs. Tiers are always recomputed
// here; any tier labels carried by the input are ignored. Self-pairs are
// dropped. The result is immutable.
func Build(official, incompatible []model.Pair, frequency []model.FrequencyPair, regionOf func(string) string) *Graph {
	g := &Graph{
		edges: make(map[pairKey]edge),
		adj:   make(map[string][]Neighbor),
		stats: Stats{EdgesByTier: make(map[string]int)},
	}

	officialSet := make(map[pairKey]bool, len(official))
	for _, p := range official {
		a, b := normalize.Code(p.A), normalize.Code(p.B)
		if a == "" || b == "" || a == b {
			continue
		}
		officialSet[keyOf(a, b)] = true
	}

	type freqRec struct{ support int }
	freqSet := make(map[pairKey]freqRec, len(frequency))
	for _, p := range frequency {
		a, b := normalize.Code(p.A), normalize.Code(p.B)
		if a == "" || b == "" || a == b {
			continue
		}
		k := keyOf(a, b)
		// Keep the strongest corroboration when a pair is reported twice.
		if prev, ok := freqSet[k]; !ok || p.Support > prev.support {
			freqSet[k] = freqRec{support: p.Support}
		}
	}

	incompatSet := make(map[pairKey]bool, len(incompatible))
	for _, p := range incompatible {
		a, b := normalize.Code(p.A), normalize.Code(p.B)
		if a == "" || b == "" || a == b {
			continue
		}
		incompatSet[keyOf(a, b)] = true
	}

	// Official records, upgraded to verified when observation data agrees.
	for k := range officialSet {
		if incompatSet[k] {
			g.stats.ScrubbedPairs++
			continue
		}
		if fr, ok := freqSet[k]; ok {
			g.edges[k] = edge{tier: model.TierVerified, support: fr.support}
		} else {
			g.edges[k] = edge{tier: model.TierOfficial}
		}
	}

	// Frequency-only records, split by chapter tag.
	for k, fr := range freqSet {
		if officialSet[k] {
			continue // already merged above
		}
		if incompatSet[k] {
			g.stats.ScrubbedPairs++
			continue
		}
		ra, rb := regionOf(k.a), regionOf(k.b)
		tier := model.TierCrossRegion
		if ra != "" && ra == rb {
			tier = model.TierSameRegion
		}
		g.edges[k] = edge{tier: tier, support: fr.support}
	}

	// Incompatibilities always land, overriding everything.
	for k := range incompatSet {
		g.edges[k] = edge{tier: model.TierIncompatible}
	}

	for k, e := range g.edges {
		g.stats.EdgesByTier[e.tier.String()]++
		g.adj[k.a] = append(g.adj[k.a], Neighbor{Code: k.b, Tier: e.tier, Support: e.support})
		g.adj[k.b] = append(g.adj[k.b], Neighbor{Code: k.a, Tier: e.tier, Support: e.support})
	}
	for _, ns := range g.adj {
		sort.Slice(ns, func(i, j int) bool { return ns[i].Code < ns[j].Code })
	}
	return g
}

// TierOf returns the merged tier for the unordered pair (a, b).
// Unrecorded pairs are TierUnknown.
func (g *Graph) TierOf(a, b string) model.Tier {
	e, ok := g.edges[keyOf(normalize.Code(a), normalize.Code(b))]
	if !ok {
		return model.TierUnknown
	}
	return e.tier
}

// Incompatible reports whether (a, b) may not appear on the same claim.
func (g *Graph) Incompatible(a, b string) bool {
	return g.TierOf(a, b) == model.TierIncompatible
}

// Neighbors returns every counterpart of code with tier >= min, in
// ascending code order. Incompatible counterparts are never returned.
func (g *Graph) Neighbors(code string, min model.Tier) []Neighbor {
	if min < model.TierCrossRegion {
		min = model.TierCrossRegion
	}
	var out []Neighbor
	for _, n := range g.adj[normalize.Code(code)] {
		if n.Tier >= min {
			out = append(out, n)
		}
	}
	return out
}

// Stats returns merge statistics computed at build time.
func (g *Graph) Stats() Stats { return g.stats }

// Edges returns the total number of recorded pairs, incompatibilities included.
func (g *Graph) Edges() int { return len(g.edges) }
