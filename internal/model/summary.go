package model

import "time"

// LoadSummary captures metrics from a single snapshot load.
type LoadSummary struct {
	Version           string
	Source            string // "postgres" or the snapshot directory path
	Codes             int
	ActiveCodes       int
	OfficialPairs     int
	IncompatiblePairs int
	FrequencyPairs    int
	EdgesByTier       map[string]int
	ScrubbedPairs     int // compatibility records dropped because an incompatibility won
	StaleReferences   int // association rows referencing codes absent from the catalog
	DurationCatalog   time.Duration
	DurationGraph     time.Duration
	DurationIndex     time.Duration
	DurationTotal     time.Duration
}
