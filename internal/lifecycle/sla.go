package lifecycle

import (
	"time"

	"github.com/uts-support/ticket-service/internal/domain"
)

// TimerStatus is the health of a single SLA clock.
type TimerStatus string

const (
	TimerOK          TimerStatus = "OK"
	TimerApproaching TimerStatus = "Approaching"
	TimerBreached    TimerStatus = "Breached"
)

// approachingFraction of the target at which a timer starts warning.
const approachingFraction = 0.8

// Targets holds the SLA targets in hours for the four clocks.
type Targets struct {
	TTA float64
	TTT float64
	TTR float64
	TTL float64
}

// DefaultTargets returns the stock SLA targets.
func DefaultTargets() Targets {
	return Targets{TTA: 4, TTT: 8, TTR: 24, TTL: 72}
}

// Timer is one evaluated SLA clock. Target and Elapsed are hours.
type Timer struct {
	Target  float64
	Elapsed float64
	Status  TimerStatus
}

// Report is the derived SLA view of a ticket. It is never persisted;
// Evaluate recomputes it from the ticket timestamps on demand.
type Report struct {
	TTA Timer
	TTT Timer
	TTR Timer
	TTL Timer
}

// Evaluate computes all four SLA clocks for a ticket at the given instant.
// TTA and TTT stop advancing at the first response, TTR once the ticket is
// resolved or closed, TTL once it is closed. Evaluate is pure and idempotent,
// safe to call on every request or on a periodic tick.
func Evaluate(t *domain.Ticket, targets Targets, now time.Time) Report {
	ackEnd := now
	if t.FirstResponse != nil {
		ackEnd = *t.FirstResponse
	}

	resolveEnd := now
	if t.Status == domain.TicketStatusResolved || t.Status == domain.TicketStatusClosed {
		switch {
		case t.ResolvedAt != nil:
			resolveEnd = *t.ResolvedAt
		case t.ClosedAt != nil:
			resolveEnd = *t.ClosedAt
		}
	}

	liveEnd := now
	if t.Status == domain.TicketStatusClosed && t.ClosedAt != nil {
		liveEnd = *t.ClosedAt
	}

	return Report{
		TTA: evalTimer(t.CreatedAt, ackEnd, targets.TTA),
		TTT: evalTimer(t.CreatedAt, ackEnd, targets.TTT),
		TTR: evalTimer(t.CreatedAt, resolveEnd, targets.TTR),
		TTL: evalTimer(t.CreatedAt, liveEnd, targets.TTL),
	}
}

func evalTimer(start, end time.Time, target float64) Timer {
	elapsed := end.Sub(start).Hours()
	if elapsed < 0 {
		elapsed = 0
	}
	return Timer{Target: target, Elapsed: elapsed, Status: timerStatus(elapsed, target)}
}

func timerStatus(elapsed, target float64) TimerStatus {
	switch {
	case elapsed >= target:
		return TimerBreached
	case elapsed >= target*approachingFraction:
		return TimerApproaching
	default:
		return TimerOK
	}
}
