package plan

import (
	"testing"
)

func issuesOfType(issues []Issue, typ IssueType) []Issue {
	var out []Issue
	for _, is := range issues {
		if is.Type == typ {
			out = append(out, is)
		}
	}
	return out
}

func TestCheck_IncompatiblePair(t *testing.T) {
	a := New(fixture(t))

	issues := a.Check([]string{"AAAA002", "BBBB001"}, false)
	bad := issuesOfType(issues, IssueIncompatible)
	if len(bad) != 1 {
		t.Fatalf("incompatible findings = %d, want 1: %+v", len(bad), issues)
	}
	if got := bad[0].Codes; len(got) != 2 || got[0] != "AAAA002" || got[1] != "BBBB001" {
		t.Errorf("codes = %v, want [AAAA002 BBBB001]", got)
	}
}

func TestCheck_CleanSetReportsOK(t *testing.T) {
	a := New(fixture(t))

	issues := a.Check([]string{"hhxx000"}, false)
	// Unknown code only: no ok marker alongside a real finding.
	if len(issuesOfType(issues, IssueUnknownCode)) != 1 || len(issuesOfType(issues, IssueOK)) != 0 {
		t.Errorf("issues = %+v", issues)
	}

	issues = a.Check([]string{"CCCC001"}, false)
	if len(issues) != 1 || issues[0].Type != IssueOK {
		t.Errorf("single valid code: issues = %+v, want one ok finding", issues)
	}
}

func TestCheck_AssociationsAreInformational(t *testing.T) {
	a := New(fixture(t))

	issues := a.Check([]string{"AAAA001", "AAAA002"}, false)
	assoc := issuesOfType(issues, IssueAssociation)
	if len(assoc) != 1 {
		t.Fatalf("association findings = %d, want 1: %+v", len(assoc), issues)
	}
	if assoc[0].Tier != "verified" {
		t.Errorf("tier = %s, want verified", assoc[0].Tier)
	}
}

func TestCheck_RetiredAndUnknownCodes(t *testing.T) {
	a := New(fixture(t))

	issues := a.Check([]string{"ZZQX001", "XXXX999", "AAAA001"}, false)
	if len(issuesOfType(issues, IssueRetiredCode)) != 1 {
		t.Errorf("no retired_code finding: %+v", issues)
	}
	if len(issuesOfType(issues, IssueUnknownCode)) != 1 {
		t.Errorf("no unknown_code finding: %+v", issues)
	}
}

func TestCheck_ReportUnknownPairs(t *testing.T) {
	a := New(fixture(t))

	// AAAA003 and CCCC001 have no record at all.
	silent := a.Check([]string{"AAAA003", "CCCC001"}, false)
	if len(issuesOfType(silent, IssueUnknownPair)) != 0 {
		t.Errorf("unknown pair reported without opt-in: %+v", silent)
	}

	loud := a.Check([]string{"AAAA003", "CCCC001"}, true)
	if len(issuesOfType(loud, IssueUnknownPair)) != 1 {
		t.Errorf("unknown pair not reported with opt-in: %+v", loud)
	}
}
