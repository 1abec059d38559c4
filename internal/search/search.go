// Package search implements the cascading free-text matcher over the
// code catalog. Three strategies are tried in order, each only when the
// previous one yields nothing: conjunctive token match, disjunctive
// token match, then an accent-insensitive substring fallback.
package search

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/t2a/ccam/internal/catalog"
	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/normalize"
)

// Stage identifies which strategy produced a result set.
type Stage int

const (
	StageNone Stage = iota
	StageConjunctive
	StageDisjunctive
	StageSubstring
)

func (s Stage) String() string {
	switch s {
	case StageConjunctive:
		return "conjunctive"
	case StageDisjunctive:
		return "disjunctive"
	case StageSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Reason explains an empty result set without making it an error.
type Reason string

const (
	ReasonOK         Reason = "ok"
	ReasonEmptyQuery Reason = "empty_query"
	ReasonNoMatch    Reason = "no_match"
)

// Result is one matched code with its stage-specific relevance score.
type Result struct {
	Code    *model.Code
	Score   float64
	Matched int // tokens matched, disjunctive stage only
}

// Response is the outcome of a single Search call.
type Response struct {
	Results []Result
	Stage   Stage
	Reason  Reason
}

// Stats holds cumulative per-stage hit counters for external metrics.
// Counters are atomics; the engine itself is shared across queries.
type Stats struct {
	ConjunctiveHits atomic.Int64
	DisjunctiveHits atomic.Int64
	SubstringHits   atomic.Int64
	EmptyQueries    atomic.Int64
	NoMatches       atomic.Int64
}

// Options tunes index and query behavior.
type Options struct {
	// MinTokenLen drops shorter tokens from multi-word queries
	// (articles, prepositions). Zero means the default of 3.
	MinTokenLen int
	// IncludeRetired indexes retired codes as well. Off by default:
	// retired codes stay reachable by identifier lookup only.
	IncludeRetired bool
}

type doc struct {
	code   *model.Code
	text   string         // normalized label + description
	tokens map[string]int // token -> occurrences in text
	length int            // total token occurrences, for length normalization
}

type Engine struct {
	docs    []doc
	byToken map[string][]int // token -> indices into docs, ascending
	minLen  int
	stats   Stats
}

// New indexes the catalog. The index applies the same normalization as
// queries do; both sides must agree or the token stages degrade silently.
func New(cat *catalog.Catalog, opts Options) *Engine {
	minLen := opts.MinTokenLen
	if minLen == 0 {
		minLen = 3
	}
	e := &Engine{
		byToken: make(map[string][]int),
		minLen:  minLen,
	}
	for _, code := range cat.Codes() {
		if code.Retired && !opts.IncludeRetired {
			continue
		}
		text := normalize.Text(code.Label + " " + code.Description)
		fields := strings.Fields(text)
		d := doc{
			code:   code,
			text:   text,
			tokens: make(map[string]int, len(fields)),
			length: len(fields),
		}
		for _, f := range fields {
			d.tokens[f]++
		}
		idx := len(e.docs)
		e.docs = append(e.docs, d)
		for tok := range d.tokens {
			e.byToken[tok] = append(e.byToken[tok], idx)
		}
	}
	return e
}

// Search runs the cascade and returns at most limit results (limit <= 0
// means unbounded). An empty or whitespace-only query returns an empty
// response with ReasonEmptyQuery, not an error. Each stage fully ranks
// its candidate set before truncation.
func (e *Engine) Search(query string, limit int) Response {
	tokens := normalize.Tokenize(query, e.minLen)
	if len(tokens) == 0 {
		e.stats.EmptyQueries.Add(1)
		return Response{Stage: StageNone, Reason: ReasonEmptyQuery}
	}

	if results := e.conjunctive(tokens); len(results) > 0 {
		e.stats.ConjunctiveHits.Add(1)
		return Response{Results: truncate(results, limit), Stage: StageConjunctive, Reason: ReasonOK}
	}
	if len(tokens) > 1 {
		if results := e.disjunctive(tokens); len(results) > 0 {
			e.stats.DisjunctiveHits.Add(1)
			return Response{Results: truncate(results, limit), Stage: StageDisjunctive, Reason: ReasonOK}
		}
	}
	if results := e.substring(tokens); len(results) > 0 {
		e.stats.SubstringHits.Add(1)
		return Response{Results: truncate(results, limit), Stage: StageSubstring, Reason: ReasonOK}
	}

	e.stats.NoMatches.Add(1)
	return Response{Stage: StageNone, Reason: ReasonNoMatch}
}

// score is summed per-token frequency normalized by document token count,
// a transparent stand-in for an FTS engine's tf-based rank.
func (e *Engine) score(d *doc, tokens []string) float64 {
	if d.length == 0 {
		return 0
	}
	sum := 0
	for _, t := range tokens {
		sum += d.tokens[t]
	}
	return float64(sum) / float64(d.length)
}

// conjunctive requires every query token to be present in the document.
func (e *Engine) conjunctive(tokens []string) []Result {
	// Start from the rarest token's posting list to keep the candidate
	// set small on large catalogs.
	rarest := tokens[0]
	for _, t := range tokens[1:] {
		if len(e.byToken[t]) < len(e.byToken[rarest]) {
			rarest = t
		}
	}
	var results []Result
	for _, idx := range e.byToken[rarest] {
		d := &e.docs[idx]
		all := true
		for _, t := range tokens {
			if d.tokens[t] == 0 {
				all = false
				break
			}
		}
		if all {
			results = append(results, Result{Code: d.code, Score: e.score(d, tokens)})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Code.Code < results[j].Code.Code
	})
	return results
}

// disjunctive requires at least one token, ranking by matched-token count
// first so the closest partial matches surface.
func (e *Engine) disjunctive(tokens []string) []Result {
	matched := make(map[int]int)
	for _, t := range tokens {
		for _, idx := range e.byToken[t] {
			matched[idx]++
		}
	}
	results := make([]Result, 0, len(matched))
	for idx, n := range matched {
		d := &e.docs[idx]
		results = append(results, Result{Code: d.code, Score: e.score(d, tokens), Matched: n})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Matched != results[j].Matched {
			return results[i].Matched > results[j].Matched
		}
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Code.Code < results[j].Code.Code
	})
	return results
}

// substring is the last-resort fallback: the normalized tokens joined
// back together must appear in order as substrings of the indexed text.
// Earlier match positions rank first.
func (e *Engine) substring(tokens []string) []Result {
	needle := strings.Join(tokens, " ")
	type hit struct {
		res Result
		pos int
	}
	var hits []hit
	for i := range e.docs {
		d := &e.docs[i]
		if pos := strings.Index(d.text, needle); pos >= 0 {
			hits = append(hits, hit{res: Result{Code: d.code}, pos: pos})
			continue
		}
		// Tolerate word gaps: every token as its own substring.
		first := -1
		all := true
		for _, t := range tokens {
			p := strings.Index(d.text, t)
			if p < 0 {
				all = false
				break
			}
			if first < 0 || p < first {
				first = p
			}
		}
		if all && len(tokens) > 1 {
			hits = append(hits, hit{res: Result{Code: d.code}, pos: first + len(d.text)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].res.Code.Code < hits[j].res.Code.Code
	})
	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = h.res
	}
	return results
}

// Stats exposes the cumulative per-stage counters.
func (e *Engine) Stats() *Stats { return &e.stats }

func truncate(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
