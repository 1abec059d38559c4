package model

// Tier is the confidence level of a code-pair association. Tiers are
// derived by the graph merge at load time and never hand-set: a pair
// present in both the official ATIH association data and the observed
// billing data is "verified"; official-only pairs are "official";
// observed-only pairs split on whether both codes share a chapter.
// An incompatibility record overrides every compatibility tier.
type Tier int8

const (
	TierIncompatible Tier = -1
	TierUnknown      Tier = 0
	TierCrossRegion  Tier = 1
	TierSameRegion   Tier = 2
	TierOfficial     Tier = 3
	TierVerified     Tier = 4
)

// Compatible reports whether the tier allows two codes on the same claim.
func (t Tier) Compatible() bool { return t >= TierCrossRegion }

func (t Tier) String() string {
	switch t {
	case TierIncompatible:
		return "incompatible"
	case TierCrossRegion:
		return "cross_region"
	case TierSameRegion:
		return "same_region"
	case TierOfficial:
		return "official"
	case TierVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// ParseTier maps a tier name back to its value, ok=false for anything else.
func ParseTier(s string) (Tier, bool) {
	switch s {
	case "incompatible":
		return TierIncompatible, true
	case "cross_region":
		return TierCrossRegion, true
	case "same_region":
		return TierSameRegion, true
	case "official":
		return TierOfficial, true
	case "verified":
		return TierVerified, true
	case "unknown":
		return TierUnknown, true
	}
	return TierUnknown, false
}
