package lifecycle

import (
	"testing"

	"github.com/uts-support/ticket-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestDiffFields(t *testing.T) {
	old := &domain.Ticket{
		Description:   "printer on fire",
		Priority:      strPtr("high"),
		IssueCategory: strPtr("hardware"),
		Products:      []string{"QB", "TT"},
	}
	updated := &domain.Ticket{
		Description:   "printer on fire",
		Priority:      strPtr("urgent"),
		IssueCategory: nil,
		ContactEmails: strPtr("ops@x.com"),
		Products:      []string{"QB", "TT"},
	}

	changes := DiffFields(old, updated)
	if len(changes) != 3 {
		t.Fatalf("got %d changes: %+v", len(changes), changes)
	}

	got := FormatChanges(changes)
	want := "Priority: high → urgent, Issue Category: hardware → -, Contact Emails: - → ops@x.com"
	if got != want {
		t.Fatalf("formatted = %q, want %q", got, want)
	}
}

func TestDiffFieldsNoChanges(t *testing.T) {
	ticket := &domain.Ticket{
		Description: "d",
		Priority:    strPtr("low"),
		Products:    []string{"CK"},
	}
	clone := *ticket
	if changes := DiffFields(ticket, &clone); len(changes) != 0 {
		t.Fatalf("identical tickets produced changes: %+v", changes)
	}
}

func TestDiffPeople(t *testing.T) {
	old := &domain.Ticket{
		ContactEmails: strPtr("a@x.com"),
		Assignee:      strPtr("John Smith"),
	}
	updated := &domain.Ticket{
		ContactEmails: strPtr("b@x.com"),
		AssignedTeam:  strPtr("Support Team"),
		Assignee:      strPtr("Sarah Johnson"),
	}

	got := FormatChanges(DiffPeople(old, updated))
	want := "Contact Emails: a@x.com → b@x.com, Team: Unassigned → Support Team, Assignee: John Smith → Sarah Johnson"
	if got != want {
		t.Fatalf("formatted = %q, want %q", got, want)
	}
}

func TestDiffPeopleNoChanges(t *testing.T) {
	ticket := &domain.Ticket{AssignedTeam: strPtr("QA Team"), Assignee: strPtr("Mike Davis")}
	clone := *ticket
	if changes := DiffPeople(ticket, &clone); len(changes) != 0 {
		t.Fatalf("identical assignments produced changes: %+v", changes)
	}
}

func TestDiffFieldsProductOrder(t *testing.T) {
	old := &domain.Ticket{Products: []string{"QB", "TT"}}
	updated := &domain.Ticket{Products: []string{"TT", "QB"}}
	// order is preserved from the form, so reordering is a change
	if changes := DiffFields(old, updated); len(changes) != 1 {
		t.Fatalf("got %+v, want one products change", changes)
	}
}
