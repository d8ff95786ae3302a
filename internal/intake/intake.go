// Package intake turns submitted form data into a persistable ticket record.
package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/uts-support/ticket-service/internal/domain"
)

var validate = validator.New()

// Form is the raw intake payload. Only reporter and description are
// mandatory; everything else is optional and normalized away when blank.
type Form struct {
	Reporter       string `validate:"required"`
	Description    string `validate:"required"`
	Priority       string
	IssueCategory  string
	ProviderNameID string
	Source         string   `validate:"omitempty,oneof=partner tax ps other"`
	Products       []string `validate:"dive,oneof=QB TT CK Quicken"`
	CaseOrigin     string
	ReporterNotes  string
	ContactEmails  string
	Vertical       string
	ErrorCode      string
	ChannelID      string
	ChannelType    string
	ScriptName     string
	IssueImpact    string
}

// ValidationError reports a rejected intake form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BuildTicket validates and normalizes the form into a new ticket with a
// generated identifier, status open and created/updated stamped at now. No
// store write happens here; the caller persists the result.
func BuildTicket(form Form, now time.Time) (*domain.Ticket, error) {
	normalized := trimmed(form)
	if normalized.Reporter == "" || normalized.Description == "" {
		return nil, &ValidationError{Message: "Reporter and description are required fields"}
	}
	if err := validate.Struct(normalized); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid form data: %v", err)}
	}

	source := domain.TicketSource(normalized.Source)
	if normalized.Source == "" {
		source = domain.SourceOther
	}

	return &domain.Ticket{
		TicketID:       GenerateTicketID(now),
		Reporter:       normalized.Reporter,
		Description:    normalized.Description,
		Priority:       optional(normalized.Priority),
		IssueCategory:  optional(normalized.IssueCategory),
		ProviderNameID: optional(normalized.ProviderNameID),
		Source:         source,
		Products:       normalized.Products,
		CaseOrigin:     optional(normalized.CaseOrigin),
		ReporterNotes:  optional(normalized.ReporterNotes),
		ContactEmails:  optional(normalized.ContactEmails),
		Vertical:       optional(normalized.Vertical),
		ErrorCode:      optional(normalized.ErrorCode),
		ChannelID:      optional(normalized.ChannelID),
		ChannelType:    optional(normalized.ChannelType),
		ScriptName:     optional(normalized.ScriptName),
		IssueImpact:    optional(normalized.IssueImpact),
		Status:         domain.TicketStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// GenerateTicketID derives the ticket identifier from the creation instant:
// TKT- plus the last six digits of the unix-millisecond clock. Two tickets
// created within the same truncation window collide; that weakness is
// accepted and documented rather than papered over.
func GenerateTicketID(now time.Time) string {
	millis := now.UnixMilli()
	return fmt.Sprintf("TKT-%06d", millis%1000000)
}

// CreationRecord is the single history entry appended after a successful
// ticket insert.
func CreationRecord(t *domain.Ticket) (action, details, user string) {
	return domain.HistoryActionCreated, fmt.Sprintf("Ticket %s was created", t.TicketID), t.Reporter
}

func trimmed(form Form) Form {
	form.Reporter = strings.TrimSpace(form.Reporter)
	form.Description = strings.TrimSpace(form.Description)
	form.Priority = strings.TrimSpace(form.Priority)
	form.IssueCategory = strings.TrimSpace(form.IssueCategory)
	form.ProviderNameID = strings.TrimSpace(form.ProviderNameID)
	form.Source = strings.TrimSpace(form.Source)
	form.CaseOrigin = strings.TrimSpace(form.CaseOrigin)
	form.ReporterNotes = strings.TrimSpace(form.ReporterNotes)
	form.ContactEmails = strings.TrimSpace(form.ContactEmails)
	form.Vertical = strings.TrimSpace(form.Vertical)
	form.ErrorCode = strings.TrimSpace(form.ErrorCode)
	form.ChannelID = strings.TrimSpace(form.ChannelID)
	form.ChannelType = strings.TrimSpace(form.ChannelType)
	form.ScriptName = strings.TrimSpace(form.ScriptName)
	form.IssueImpact = strings.TrimSpace(form.IssueImpact)
	return form
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
