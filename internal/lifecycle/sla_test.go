package lifecycle

import (
	"testing"
	"time"

	"github.com/uts-support/ticket-service/internal/domain"
)

func TestTimerStatusBoundaries(t *testing.T) {
	cases := []struct {
		elapsed float64
		target  float64
		want    TimerStatus
	}{
		{0, 4, TimerOK},
		{3.19, 4, TimerOK},
		{3.2, 4, TimerApproaching}, // exactly 0.8 × target
		{3.99, 4, TimerApproaching},
		{4, 4, TimerBreached}, // exactly target
		{5, 4, TimerBreached},
		{57.6, 72, TimerApproaching}, // 0.8 × 72
		{72, 72, TimerBreached},
	}

	for _, tt := range cases {
		if got := timerStatus(tt.elapsed, tt.target); got != tt.want {
			t.Errorf("timerStatus(%v, %v) = %q, want %q", tt.elapsed, tt.target, got, tt.want)
		}
	}
}

func TestEvaluateRunningClocks(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{Status: domain.TicketStatusOpen, CreatedAt: created}
	now := created.Add(5 * time.Hour)

	report := Evaluate(ticket, DefaultTargets(), now)

	if report.TTA.Elapsed != 5 || report.TTA.Status != TimerBreached {
		t.Fatalf("TTA = %+v, want 5h breached", report.TTA)
	}
	if report.TTT.Elapsed != 5 || report.TTT.Status != TimerOK {
		t.Fatalf("TTT = %+v, want 5h ok", report.TTT)
	}
	if report.TTR.Elapsed != 5 || report.TTL.Elapsed != 5 {
		t.Fatalf("TTR/TTL should track now while the ticket is open: %+v / %+v", report.TTR, report.TTL)
	}
}

func TestEvaluateFreezesAckOnFirstResponse(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	firstResponse := created.Add(time.Hour)
	ticket := &domain.Ticket{
		Status:        domain.TicketStatusOpen,
		CreatedAt:     created,
		FirstResponse: &firstResponse,
	}

	// well past every target; TTA/TTT stay frozen at the response instant
	report := Evaluate(ticket, DefaultTargets(), created.Add(100*time.Hour))

	if report.TTA.Elapsed != 1 || report.TTA.Status != TimerOK {
		t.Fatalf("TTA = %+v, want frozen at 1h", report.TTA)
	}
	if report.TTT.Elapsed != 1 {
		t.Fatalf("TTT = %+v, want frozen at 1h", report.TTT)
	}
	if report.TTR.Status != TimerBreached || report.TTL.Status != TimerBreached {
		t.Fatalf("TTR/TTL keep running: %+v / %+v", report.TTR, report.TTL)
	}
}

func TestEvaluateFreezesResolveAndLive(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	resolved := created.Add(10 * time.Hour)
	closed := created.Add(20 * time.Hour)
	longAfter := created.Add(500 * time.Hour)

	resolvedTicket := &domain.Ticket{
		Status:     domain.TicketStatusResolved,
		CreatedAt:  created,
		ResolvedAt: &resolved,
	}
	report := Evaluate(resolvedTicket, DefaultTargets(), longAfter)
	if report.TTR.Elapsed != 10 || report.TTR.Status != TimerOK {
		t.Fatalf("TTR = %+v, want frozen at 10h", report.TTR)
	}
	if report.TTL.Status != TimerBreached {
		t.Fatalf("TTL = %+v, resolved must not freeze TTL", report.TTL)
	}

	closedTicket := &domain.Ticket{
		Status:    domain.TicketStatusClosed,
		CreatedAt: created,
		ClosedAt:  &closed,
	}
	report = Evaluate(closedTicket, DefaultTargets(), longAfter)
	if report.TTR.Elapsed != 20 {
		t.Fatalf("TTR = %+v, want frozen at close", report.TTR)
	}
	if report.TTL.Elapsed != 20 || report.TTL.Status != TimerOK {
		t.Fatalf("TTL = %+v, want frozen at 20h", report.TTL)
	}
}

func TestEvaluateElapsedNeverNegative(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{Status: domain.TicketStatusOpen, CreatedAt: created}

	report := Evaluate(ticket, DefaultTargets(), created.Add(-time.Hour))
	if report.TTA.Elapsed != 0 {
		t.Fatalf("TTA.Elapsed = %v, want clamped to 0", report.TTA.Elapsed)
	}
}
