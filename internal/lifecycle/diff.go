package lifecycle

import (
	"fmt"
	"strings"

	"github.com/uts-support/ticket-service/internal/domain"
)

// FieldChange records a single edited field, old and new rendered for the
// audit trail.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

func (c FieldChange) String() string {
	return fmt.Sprintf("%s: %s → %s", c.Field, c.Old, c.New)
}

// DiffFields compares the editable fields of two ticket snapshots and returns
// one change per field whose value differs. Status and lifecycle timestamps
// are not covered here; those go through Transition.
func DiffFields(old, updated *domain.Ticket) []FieldChange {
	var changes []FieldChange
	appendChange := func(field, oldVal, newVal string) {
		if oldVal != newVal {
			changes = append(changes, FieldChange{Field: field, Old: display(oldVal), New: display(newVal)})
		}
	}

	appendChange("Description", old.Description, updated.Description)
	appendChange("Priority", deref(old.Priority), deref(updated.Priority))
	appendChange("Issue Category", deref(old.IssueCategory), deref(updated.IssueCategory))
	appendChange("Provider Name/ID", deref(old.ProviderNameID), deref(updated.ProviderNameID))
	appendChange("Issue Impact", deref(old.IssueImpact), deref(updated.IssueImpact))
	appendChange("Case Origin", deref(old.CaseOrigin), deref(updated.CaseOrigin))
	appendChange("Reporter Notes", deref(old.ReporterNotes), deref(updated.ReporterNotes))
	appendChange("Contact Emails", deref(old.ContactEmails), deref(updated.ContactEmails))
	appendChange("Vertical", deref(old.Vertical), deref(updated.Vertical))
	appendChange("Error Code", deref(old.ErrorCode), deref(updated.ErrorCode))
	appendChange("Channel ID", deref(old.ChannelID), deref(updated.ChannelID))
	appendChange("Channel Type", deref(old.ChannelType), deref(updated.ChannelType))
	appendChange("Script Name", deref(old.ScriptName), deref(updated.ScriptName))
	appendChange("Products", strings.Join(old.Products, ","), strings.Join(updated.Products, ","))

	return changes
}

// FormatChanges renders a consolidated change list for a single history
// entry.
func FormatChanges(changes []FieldChange) string {
	parts := make([]string, 0, len(changes))
	for _, change := range changes {
		parts = append(parts, change.String())
	}
	return strings.Join(parts, ", ")
}

// DiffPeople compares the people panel of two ticket snapshots: contact
// emails, assigned team and assignee. Missing assignments render as
// Unassigned rather than a dash.
func DiffPeople(old, updated *domain.Ticket) []FieldChange {
	var changes []FieldChange
	if deref(old.ContactEmails) != deref(updated.ContactEmails) {
		changes = append(changes, FieldChange{
			Field: "Contact Emails",
			Old:   display(deref(old.ContactEmails)),
			New:   display(deref(updated.ContactEmails)),
		})
	}
	appendAssign := func(field, oldVal, newVal string) {
		if oldVal != newVal {
			changes = append(changes, FieldChange{Field: field, Old: assigned(oldVal), New: assigned(newVal)})
		}
	}
	appendAssign("Team", deref(old.AssignedTeam), deref(updated.AssignedTeam))
	appendAssign("Assignee", deref(old.Assignee), deref(updated.Assignee))
	return changes
}

func assigned(s string) string {
	if s == "" {
		return "Unassigned"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func display(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
