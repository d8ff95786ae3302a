package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
	TicketStatusWaitingCustomer TicketStatus = "waiting-customer-response"
)

// IsValid reports whether the status is one of the known states.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusResolved, TicketStatusClosed, TicketStatusWaitingCustomer:
		return true
	}
	return false
}

// Label returns the display form of a status.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusResolved:
		return "Resolved"
	case TicketStatusClosed:
		return "Closed"
	case TicketStatusWaitingCustomer:
		return "Waiting Customer Response"
	default:
		return "Open"
	}
}

// TicketSource enumerates intake channels.
type TicketSource string

const (
	SourcePartner TicketSource = "partner"
	SourceTax     TicketSource = "tax"
	SourcePS      TicketSource = "ps"
	SourceOther   TicketSource = "other"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             int64
	TicketID       string
	Reporter       string
	Description    string
	Priority       *string
	IssueCategory  *string
	ProviderNameID *string
	Source         TicketSource
	Products       []string
	CaseOrigin     *string
	ReporterNotes  *string
	ContactEmails  *string
	Vertical       *string
	ErrorCode      *string
	ChannelID      *string
	ChannelType    *string
	ScriptName     *string
	IssueImpact    *string
	AssignedTeam   *string
	Assignee       *string
	Status         TicketStatus
	CloseReason    *string
	ReopenCount    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
	FirstResponse  *time.Time
}
