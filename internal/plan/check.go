package plan

import (
	"fmt"

	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/normalize"
)

// IssueType classifies one finding of a compatibility check.
type IssueType string

const (
	IssueUnknownCode  IssueType = "unknown_code"
	IssueRetiredCode  IssueType = "retired_code"
	IssueIncompatible IssueType = "incompatible"
	IssueAssociation  IssueType = "association" // informational: a recorded compatible pair
	IssueUnknownPair  IssueType = "unknown_pair"
	IssueOK           IssueType = "ok"
)

// Issue is one finding from Check, suitable for direct display.
type Issue struct {
	Type    IssueType `json:"type"`
	Codes   []string  `json:"codes,omitempty"`
	Tier    string    `json:"tier,omitempty"`
	Message string    `json:"message"`
}

// Check validates a set of codes a clinician intends to bill together:
// every code must exist and be active, and no pair may be incompatible.
// Recorded associations are reported as informational findings. When
// reportUnknown is set (the suggest_unknown option), pairs with no
// record at all are surfaced as low-confidence findings instead of
// being silent.
func (a *Assembler) Check(codes []string, reportUnknown bool) []Issue {
	var issues []Issue

	ids := make([]string, 0, len(codes))
	for _, c := range codes {
		id := normalize.Code(c)
		entry, ok := a.cat.Get(id)
		if !ok {
			issues = append(issues, Issue{
				Type:    IssueUnknownCode,
				Codes:   []string{id},
				Message: fmt.Sprintf("code %s not found in the catalog", id),
			})
			continue
		}
		if entry.Retired {
			issues = append(issues, Issue{
				Type:    IssueRetiredCode,
				Codes:   []string{id},
				Message: fmt.Sprintf("code %s is retired", id),
			})
		}
		ids = append(ids, id)
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a1, b1 := ids[i], ids[j]
			switch tier := a.g.TierOf(a1, b1); tier {
			case model.TierIncompatible:
				issues = append(issues, Issue{
					Type:    IssueIncompatible,
					Codes:   []string{a1, b1},
					Tier:    tier.String(),
					Message: fmt.Sprintf("%s and %s cannot be billed on the same claim", a1, b1),
				})
			case model.TierUnknown:
				if reportUnknown {
					issues = append(issues, Issue{
						Type:    IssueUnknownPair,
						Codes:   []string{a1, b1},
						Tier:    tier.String(),
						Message: fmt.Sprintf("no compatibility record for %s and %s", a1, b1),
					})
				}
			default:
				issues = append(issues, Issue{
					Type:    IssueAssociation,
					Codes:   []string{a1, b1},
					Tier:    tier.String(),
					Message: fmt.Sprintf("%s and %s: %s", a1, b1, inclusionReason(tier)),
				})
			}
		}
	}

	if len(issues) == 0 {
		issues = append(issues, Issue{Type: IssueOK, Message: "no incompatibility detected between the selected codes"})
	}
	return issues
}
