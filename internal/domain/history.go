package domain

import "time"

// History entry actions recorded by the ledger.
const (
	HistoryActionCreated       = "Ticket created"
	HistoryActionStatusChanged = "Status changed"
	HistoryActionClosed        = "Ticket closed"
	HistoryActionReopened      = "Ticket reopened"
	HistoryActionUpdated       = "Ticket updated"
	HistoryActionPeopleUpdated = "People updated"
	HistoryActionFirstResponse = "First response"
	HistoryActionCommentAdded  = "Comment added"
	HistoryActionReplyAdded    = "Reply added"
)

// HistoryEntry is an immutable audit trail record. Entries are appended on
// every ticket mutation and never edited or deleted.
type HistoryEntry struct {
	ID        int64
	TicketID  string
	Action    string
	Details   string
	User      string
	CreatedAt time.Time
}
