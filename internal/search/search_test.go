package search

import (
	"testing"

	"github.com/t2a/ccam/internal/catalog"
	"github.com/t2a/ccam/internal/model"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	codes := []model.Code{
		{Code: "HHFA001", Label: "Appendicectomie, par cœlioscopie ou par laparotomie avec préparation par cœlioscopie", ICR: 104, Chapter: "07"},
		{Code: "HHFA002", Label: "Appendicectomie, par laparotomie", ICR: 98, Chapter: "07"},
		{Code: "LDFA003", Label: "Arthrodèse cervicale antérieure, par abord direct", ICR: 210, Chapter: "12"},
		{Code: "AAFA001", Label: "Exérèse de tumeur intracrânienne, par craniotomie", Description: "Craniotomie avec exérèse de lésion du lobe", ICR: 480, Chapter: "01"},
		{Code: "ZZQX001", Label: "Acte historique retiré", Retired: true, Chapter: "19"},
	}
	cat, err := catalog.New("test-v1", codes)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(testCatalog(t), Options{})
}

func codesOf(resp Response) []string {
	out := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = r.Code.Code
	}
	return out
}

func TestSearch_ExactLabelReturnsCode(t *testing.T) {
	cat := testCatalog(t)
	e := New(cat, Options{})
	for _, code := range cat.Codes() {
		if code.Retired {
			continue
		}
		resp := e.Search(code.Label, 10)
		found := false
		for _, r := range resp.Results {
			if r.Code.Code == code.Code {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("searching exact label of %s did not return it: got %v", code.Code, codesOf(resp))
		}
	}
}

func TestSearch_ConjunctiveStage(t *testing.T) {
	e := newEngine(t)
	resp := e.Search("appendicectomie cœlioscopie", 10)
	if resp.Stage != StageConjunctive {
		t.Fatalf("stage = %s, want conjunctive", resp.Stage)
	}
	if got := codesOf(resp); len(got) != 1 || got[0] != "HHFA001" {
		t.Errorf("results = %v, want [HHFA001]", got)
	}
}

func TestSearch_AccentInsensitive(t *testing.T) {
	e := newEngine(t)
	resp := e.Search("arthrodese cervicale", 10)
	if resp.Stage != StageConjunctive {
		t.Fatalf("stage = %s, want conjunctive", resp.Stage)
	}
	if got := codesOf(resp); len(got) != 1 || got[0] != "LDFA003" {
		t.Errorf("results = %v, want [LDFA003]", got)
	}
}

func TestSearch_DisjunctiveFallback(t *testing.T) {
	e := newEngine(t)
	// "zygomatique" matches nothing, so the conjunctive stage is empty
	// and the disjunctive stage takes over on "appendicectomie".
	resp := e.Search("appendicectomie zygomatique", 10)
	if resp.Stage != StageDisjunctive {
		t.Fatalf("stage = %s, want disjunctive", resp.Stage)
	}
	got := codesOf(resp)
	if len(got) != 2 || got[0] != "HHFA001" && got[0] != "HHFA002" {
		t.Errorf("results = %v, want both appendicectomie codes", got)
	}
}

func TestSearch_SubstringFallback(t *testing.T) {
	e := newEngine(t)
	// A truncated word is not a token, so both token stages miss.
	resp := e.Search("appendicec", 10)
	if resp.Stage != StageSubstring {
		t.Fatalf("stage = %s, want substring", resp.Stage)
	}
	got := codesOf(resp)
	if len(got) != 2 {
		t.Fatalf("results = %v, want the two appendicectomie codes", got)
	}
	// Identical match position, so ascending code order decides.
	if got[0] != "HHFA001" || got[1] != "HHFA002" {
		t.Errorf("results = %v, want [HHFA001 HHFA002]", got)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := newEngine(t)
	for _, q := range []string{"", "   ", "\t\n"} {
		resp := e.Search(q, 10)
		if len(resp.Results) != 0 {
			t.Errorf("Search(%q) returned results: %v", q, codesOf(resp))
		}
		if resp.Reason != ReasonEmptyQuery {
			t.Errorf("Search(%q) reason = %s, want empty_query", q, resp.Reason)
		}
	}
	if got := e.Stats().EmptyQueries.Load(); got != 3 {
		t.Errorf("EmptyQueries = %d, want 3", got)
	}
}

func TestSearch_NoMatch(t *testing.T) {
	e := newEngine(t)
	resp := e.Search("xylophone", 10)
	if len(resp.Results) != 0 || resp.Reason != ReasonNoMatch {
		t.Errorf("reason = %s with %d results, want no_match and none", resp.Reason, len(resp.Results))
	}
}

func TestSearch_LimitAfterFullRanking(t *testing.T) {
	e := newEngine(t)
	full := e.Search("appendicectomie", 10)
	capped := e.Search("appendicectomie", 1)
	if len(capped.Results) != 1 {
		t.Fatalf("limit=1 returned %d results", len(capped.Results))
	}
	// Truncation must keep the top-ranked result, not an arbitrary one.
	if capped.Results[0].Code.Code != full.Results[0].Code.Code {
		t.Errorf("capped top = %s, full top = %s", capped.Results[0].Code.Code, full.Results[0].Code.Code)
	}
}

func TestSearch_RetiredExcludedByDefault(t *testing.T) {
	e := newEngine(t)
	resp := e.Search("historique", 10)
	if len(resp.Results) != 0 {
		t.Errorf("retired code surfaced in search: %v", codesOf(resp))
	}

	withRetired := New(testCatalog(t), Options{IncludeRetired: true})
	resp = withRetired.Search("historique", 10)
	if got := codesOf(resp); len(got) != 1 || got[0] != "ZZQX001" {
		t.Errorf("IncludeRetired results = %v, want [ZZQX001]", got)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	e := newEngine(t)
	first := codesOf(e.Search("exérèse tumeur", 10))
	for i := 0; i < 5; i++ {
		again := codesOf(e.Search("exérèse tumeur", 10))
		if len(again) != len(first) {
			t.Fatalf("run %d: %v != %v", i, again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: %v != %v", i, again, first)
			}
		}
	}
}

func TestSearch_PerStageCounters(t *testing.T) {
	e := newEngine(t)
	e.Search("appendicectomie", 10)             // conjunctive
	e.Search("appendicectomie zygomatique", 10) // disjunctive
	e.Search("appendicec", 10)                  // substring
	st := e.Stats()
	if st.ConjunctiveHits.Load() != 1 || st.DisjunctiveHits.Load() != 1 || st.SubstringHits.Load() != 1 {
		t.Errorf("counters = %d/%d/%d, want 1/1/1",
			st.ConjunctiveHits.Load(), st.DisjunctiveHits.Load(), st.SubstringHits.Load())
	}
}
