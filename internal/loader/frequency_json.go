package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/t2a/ccam/internal/model"
)

// frequencyEntry is one associated code in the validated-associations
// JSON produced by the scraping/validation collaborator. Confidence
// labels in the file are ignored: tiers are always recomputed by the
// graph merge.
type frequencyEntry struct {
	Code    string `json:"code"`
	Support int    `json:"support"`
}

// ReadFrequencyJSON parses a validated-associations file: a JSON object
// mapping each source code to its observed counterparts.
func ReadFrequencyJSON(path string) ([]model.FrequencyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frequency file: %w", err)
	}
	var byCode map[string][]frequencyEntry
	if err := json.Unmarshal(data, &byCode); err != nil {
		return nil, fmt.Errorf("parse frequency file: %w", err)
	}

	var out []model.FrequencyPair
	for source, entries := range byCode {
		for _, e := range entries {
			support := e.Support
			if support <= 0 {
				support = 1
			}
			out = append(out, model.FrequencyPair{A: source, B: e.Code, Support: support})
		}
	}
	return out, nil
}
