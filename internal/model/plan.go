package model

// PlanEntry is one accepted code in a billing plan, carrying the tier as
// its confidence badge and a human-readable inclusion reason naming the
// source that justified it.
type PlanEntry struct {
	Code    string  `json:"code"`
	Label   string  `json:"label"`
	ICR     float64 `json:"icr"`
	Tier    Tier    `json:"-"`
	Badge   string  `json:"badge"` // Tier.String(), serialized form
	Support int     `json:"support,omitempty"`
	Reason  string  `json:"reason"`
}

// BillingPlan is a ranked, incompatibility-filtered set of secondary codes
// rooted at one principal. It is assembled fresh per query and never
// persisted by this engine.
type BillingPlan struct {
	Principal    PlanEntry   `json:"principal"`
	Entries      []PlanEntry `json:"entries"`
	TotalICR     float64     `json:"total_icr"`
	SkippedStale int         `json:"skipped_stale,omitempty"` // association targets missing from the catalog
}

// TotalWithout returns the running ICR total with the named entries
// toggled off. Acceptance checks are pairwise and already recorded, so
// removing an entry never invalidates the survivors; only its own
// contribution is subtracted.
func (p *BillingPlan) TotalWithout(codes ...string) float64 {
	off := make(map[string]bool, len(codes))
	for _, c := range codes {
		off[c] = true
	}
	total := p.Principal.ICR
	for _, e := range p.Entries {
		if !off[e.Code] {
			total += e.ICR
		}
	}
	return total
}
