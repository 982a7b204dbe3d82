package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCandidateCSV(t *testing.T) {
	in := `Candidate ID,Candidate Name,Hire For,Staffing Plan,Staffing Role,Job Title,Assigned To,Status
c-1,Ada Lovelace,Acme,Q1 Hiring,Backend Engineer,Backend Engineer,dana,Initial Screening
c-2, Alan Turing ,Acme,,,Backend Engineer,erin,Staffed
`
	rows, malformed, err := ParseCandidateCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCandidateCSV: %v", err)
	}

	want := []CandidateRow{
		{ExternalID: "c-1", Name: "Ada Lovelace", Client: "Acme", PlanName: "Q1 Hiring", StaffingRole: "Backend Engineer", Role: "Backend Engineer", Owner: "dana", Status: "Initial Screening"},
		{ExternalID: "c-2", Name: "Alan Turing", Client: "Acme", Role: "Backend Engineer", Owner: "erin", Status: "Staffed"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if malformed != 0 {
		t.Errorf("malformed = %d, want 0", malformed)
	}
}

func TestParseCandidateCSV_MissingColumns(t *testing.T) {
	_, _, err := ParseCandidateCSV(strings.NewReader("id,name\n1,x\n"))
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("err = %v, want ErrMissingColumns", err)
	}
}

func TestParseCandidateHTML(t *testing.T) {
	page := `<html><body>
<h1>Candidate report</h1>
<table>
  <tr><th>ID</th><th>Name</th><th>Client</th><th>Plan</th><th>Role</th><th>Owner</th><th>Status</th></tr>
  <tr><td>c-9</td><td>Grace Hopper</td><td>Acme</td><td>Q1 Hiring</td><td>QA</td><td>dana</td><td> Selected </td></tr>
</table>
<table><tr><th>ignored</th></tr></table>
</body></html>`

	rows, err := ParseCandidateHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseCandidateHTML: %v", err)
	}
	want := []CandidateRow{
		{ExternalID: "c-9", Name: "Grace Hopper", Client: "Acme", PlanName: "Q1 Hiring", Role: "QA", Owner: "dana", Status: "Selected"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCandidateHTML_NoTable(t *testing.T) {
	if _, err := ParseCandidateHTML(strings.NewReader("<p>nothing</p>")); err == nil {
		t.Fatal("expected error for page without a table")
	}
}
