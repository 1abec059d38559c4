package model

// Code is one billable procedure entry in the CCAM reference catalog.
// The catalog is built by the ingestion pipeline and consumed read-only here.
type Code struct {
	Code            string  // 7-char CCAM identifier, 4 letters + 3 digits, e.g. "HHFA001"
	Label           string  // official libellé
	Description     string  // PMSI coding instruction / notes, may be empty
	ICR             float64 // work-value units (ICR "public", activity 1); 0 when unknown
	Retired         bool    // true when the code has an end-of-validity date
	Chapter         string  // chapter number, e.g. "07" (anatomical region)
	ChapterTitle    string
	Subchapter      string
	SubchapterTitle string
}

// Active reports whether the code may be used in new billing plans.
// Retired codes stay in the catalog for historical lookups only.
func (c *Code) Active() bool { return !c.Retired }
