package events

import (
	"time"

	"github.com/uts-support/ticket-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketReopened      EventType = "ticket_reopened"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
	EventTicketFirstResponse EventType = "ticket_first_response"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Reporter string              `json:"reporter"`
	Source   domain.TicketSource `json:"source"`
	Products []string            `json:"products,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Reason    string              `json:"reason,omitempty"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	FromStatus  domain.TicketStatus `json:"from_status"`
	ReopenCount int                 `json:"reopen_count"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Team     *string `json:"team,omitempty"`
	Assignee *string `json:"assignee,omitempty"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	Changes string `json:"changes"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   int64           `json:"comment_id"`
	ParentID    *int64          `json:"parent_id,omitempty"`
	Author      string          `json:"author"`
	UserType    domain.UserType `json:"user_type"`
	BodyPreview string          `json:"body_preview"`
}

// TicketFirstResponsePayload payload.
type TicketFirstResponsePayload struct {
	RespondedAt time.Time `json:"responded_at"`
}
