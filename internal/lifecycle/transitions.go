// Package lifecycle holds the pure ticket state-machine logic: status
// transitions, the two-phase close flow, field-edit diffing, comment
// visibility and SLA clocks. Nothing in this package performs I/O.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uts-support/ticket-service/internal/domain"
)

var (
	// ErrInvalidStatus is returned when the requested status is unknown.
	ErrInvalidStatus = errors.New("invalid ticket status")
	// ErrCloseRequiresReason signals that entering closed is a two-phase
	// transition: callers must go through BeginClose and supply a reason.
	ErrCloseRequiresReason = errors.New("closing a ticket requires a reason")
	// ErrEmptyCloseReason is returned when a pending close is committed
	// without a reason; the ticket is left untouched.
	ErrEmptyCloseReason = errors.New("close reason must not be empty")
)

// HistoryRecord describes an audit entry produced by a lifecycle operation.
// The caller is responsible for appending it to the ledger.
type HistoryRecord struct {
	Action  string
	Details string
}

// Transition applies a status change to the ticket in place and returns the
// history records describing it. Entering closed is rejected with
// ErrCloseRequiresReason; use BeginClose for that.
func Transition(t *domain.Ticket, next domain.TicketStatus, now time.Time) ([]HistoryRecord, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if next == domain.TicketStatusClosed {
		return nil, ErrCloseRequiresReason
	}

	prior := t.Status
	var records []HistoryRecord

	switch next {
	case domain.TicketStatusResolved:
		t.ResolvedAt = &now
		records = append(records, statusChange(prior, next))
	case domain.TicketStatusOpen:
		t.ResolvedAt = nil
		t.ClosedAt = nil
		t.CloseReason = nil
		if prior == domain.TicketStatusResolved || prior == domain.TicketStatusClosed {
			t.ReopenCount++
			records = append(records, HistoryRecord{
				Action:  domain.HistoryActionReopened,
				Details: fmt.Sprintf("Ticket reopened from %s status", prior),
			})
		} else {
			records = append(records, statusChange(prior, next))
		}
	case domain.TicketStatusWaitingCustomer:
		records = append(records, statusChange(prior, next))
	}

	t.Status = next
	t.UpdatedAt = now
	return records, nil
}

// PendingClose is the value object for the deferred close transition: the
// intent to close is recorded, but the ticket is not mutated until Commit is
// called with a non-empty reason. Abandoning a pending close has no effect.
type PendingClose struct {
	TicketID    string
	From        domain.TicketStatus
	RequestedAt time.Time
}

// BeginClose opens a pending close request against the ticket.
func BeginClose(t *domain.Ticket, now time.Time) PendingClose {
	return PendingClose{TicketID: t.TicketID, From: t.Status, RequestedAt: now}
}

// Commit finalizes the close. With an empty or whitespace-only reason the
// ticket is left unchanged and ErrEmptyCloseReason is returned.
func (p PendingClose) Commit(t *domain.Ticket, reason string, now time.Time) (HistoryRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return HistoryRecord{}, ErrEmptyCloseReason
	}
	t.Status = domain.TicketStatusClosed
	t.ClosedAt = &now
	t.UpdatedAt = now
	t.CloseReason = &reason
	return HistoryRecord{
		Action:  domain.HistoryActionClosed,
		Details: fmt.Sprintf("Ticket closed with reason: %s", reason),
	}, nil
}

// NoteFirstResponse stamps the first-response timestamp if it is not already
// set and reports whether it did. The transition is one-shot: later calls are
// no-ops.
func NoteFirstResponse(t *domain.Ticket, now time.Time) bool {
	if t.FirstResponse != nil {
		return false
	}
	t.FirstResponse = &now
	return true
}

func statusChange(from, to domain.TicketStatus) HistoryRecord {
	return HistoryRecord{
		Action:  domain.HistoryActionStatusChanged,
		Details: fmt.Sprintf("Status changed from %s to %s", from, statusPhrase(to)),
	}
}

// statusPhrase spells out the waiting state in history details; the other
// states read fine as their raw values.
func statusPhrase(s domain.TicketStatus) string {
	if s == domain.TicketStatusWaitingCustomer {
		return "waiting customer response"
	}
	return string(s)
}
