// Package plan assembles billing plans: a principal code plus the
// ranked, incompatibility-filtered secondary codes the compatibility
// graph supports. The safety invariant is that no two entries of an
// assembled plan may form an incompatible pair.
package plan

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/t2a/ccam/internal/catalog"
	"github.com/t2a/ccam/internal/graph"
	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/normalize"
)

// ErrInvalidPrincipal is returned when a plan is requested for a code
// that does not exist or is retired. Fatal to the call, never retried.
var ErrInvalidPrincipal = errors.New("invalid principal")

// Options carries per-request overrides.
type Options struct {
	// Exclude drops specific codes from consideration.
	Exclude []string
	// Force includes codes with no recorded association (unknown tier)
	// on explicit user request. Forced codes still must exist, be
	// active, and pass the pairwise incompatibility check.
	Force []string
}

// Assembler builds plans against one immutable catalog/graph snapshot.
type Assembler struct {
	cat *catalog.Catalog
	g   *graph.Graph

	staleSkipped atomic.Int64
}

// New returns an Assembler over the given snapshot parts.
func New(cat *catalog.Catalog, g *graph.Graph) *Assembler {
	return &Assembler{cat: cat, g: g}
}

func inclusionReason(t model.Tier) string {
	switch t {
	case model.TierVerified:
		return "official ATIH association, corroborated by observed billing"
	case model.TierOfficial:
		return "official ATIH association"
	case model.TierSameRegion:
		return "frequently billed together, same anatomical chapter"
	case model.TierCrossRegion:
		return "frequently billed together"
	default:
		return "user override"
	}
}

func entryFor(code *model.Code, tier model.Tier, support int) model.PlanEntry {
	return model.PlanEntry{
		Code:    code.Code,
		Label:   code.Label,
		ICR:     code.ICR,
		Tier:    tier,
		Badge:   tier.String(),
		Support: support,
		Reason:  inclusionReason(tier),
	}
}

// Build assembles the plan for principal. Candidates are sorted by tier
// trust descending, then ICR descending, then code ascending, and
// accepted greedily with a pairwise incompatibility re-check against the
// principal and every already-accepted entry. The result is fully
// deterministic for a given snapshot.
func (a *Assembler) Build(principal string, opts Options) (*model.BillingPlan, error) {
	id := normalize.Code(principal)
	root, ok := a.cat.Get(id)
	if !ok {
		return nil, fmt.Errorf("code %s not found in catalog: %w", id, ErrInvalidPrincipal)
	}
	if root.Retired {
		return nil, fmt.Errorf("code %s is retired: %w", id, ErrInvalidPrincipal)
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, c := range opts.Exclude {
		excluded[normalize.Code(c)] = true
	}

	type candidate struct {
		code    *model.Code
		tier    model.Tier
		support int
	}
	var candidates []candidate
	stale := 0
	for _, n := range a.g.Neighbors(id, model.TierCrossRegion) {
		if excluded[n.Code] {
			continue
		}
		code, ok := a.cat.Get(n.Code)
		if !ok || code.Retired {
			// Stale association data referencing a missing or retired
			// code: skip and count, never a per-query error.
			stale++
			continue
		}
		candidates = append(candidates, candidate{code: code, tier: n.Tier, support: n.Support})
	}

	// Forced codes join as unknown-tier candidates after validation.
	for _, f := range opts.Force {
		fc := normalize.Code(f)
		if fc == id || excluded[fc] {
			continue
		}
		if a.g.TierOf(id, fc) != model.TierUnknown {
			continue // already a regular candidate (or incompatible)
		}
		code, ok := a.cat.Get(fc)
		if !ok || code.Retired {
			stale++
			continue
		}
		candidates = append(candidates, candidate{code: code, tier: model.TierUnknown})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].tier != candidates[j].tier {
			return candidates[i].tier > candidates[j].tier
		}
		if candidates[i].code.ICR != candidates[j].code.ICR {
			return candidates[i].code.ICR > candidates[j].code.ICR
		}
		return candidates[i].code.Code < candidates[j].code.Code
	})

	p := &model.BillingPlan{
		Principal: entryFor(root, model.TierUnknown, 0),
		TotalICR:  root.ICR,
	}
	p.Principal.Badge = "principal"
	p.Principal.Reason = "principal procedure"

	accepted := []string{id}
	for _, c := range candidates {
		compatible := true
		for _, prev := range accepted {
			if a.g.Incompatible(prev, c.code.Code) {
				compatible = false
				break
			}
		}
		if !compatible {
			continue
		}
		p.Entries = append(p.Entries, entryFor(c.code, c.tier, c.support))
		p.TotalICR += c.code.ICR
		accepted = append(accepted, c.code.Code)
	}

	p.SkippedStale = stale
	a.staleSkipped.Add(int64(stale))
	return p, nil
}

// StaleSkipped returns the cumulative count of skipped stale association
// references, for external metrics.
func (a *Assembler) StaleSkipped() int64 {
	return a.staleSkipped.Load()
}
