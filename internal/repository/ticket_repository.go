package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uts-support/ticket-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Tickets are keyed by
// their public TKT identifier; the surrogate row id stays internal.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, reporter, description, priority, issue_category, provider_name_id,
            source, products, case_origin, reporter_notes, contact_emails, vertical, error_code,
            channel_id, channel_type, script_name, issue_impact, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.Reporter,
		ticket.Description,
		ticket.Priority,
		ticket.IssueCategory,
		ticket.ProviderNameID,
		ticket.Source,
		textArray(ticket.Products),
		ticket.CaseOrigin,
		ticket.ReporterNotes,
		ticket.ContactEmails,
		ticket.Vertical,
		ticket.ErrorCode,
		ticket.ChannelID,
		ticket.ChannelType,
		ticket.ScriptName,
		ticket.IssueImpact,
		ticket.Status,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET description=$1, priority=$2, issue_category=$3, provider_name_id=$4,
            products=$5, case_origin=$6, reporter_notes=$7, contact_emails=$8, vertical=$9,
            error_code=$10, channel_id=$11, channel_type=$12, script_name=$13, issue_impact=$14,
            assigned_team=$15, assignee=$16, status=$17, close_reason=$18, reopen_count=$19,
            updated_at=$20, resolved_at=$21, closed_at=$22, first_response_at=$23
        WHERE ticket_id=$24`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Description,
		ticket.Priority,
		ticket.IssueCategory,
		ticket.ProviderNameID,
		textArray(ticket.Products),
		ticket.CaseOrigin,
		ticket.ReporterNotes,
		ticket.ContactEmails,
		ticket.Vertical,
		ticket.ErrorCode,
		ticket.ChannelID,
		ticket.ChannelType,
		ticket.ScriptName,
		ticket.IssueImpact,
		ticket.AssignedTeam,
		ticket.Assignee,
		ticket.Status,
		ticket.CloseReason,
		ticket.ReopenCount,
		ticket.UpdatedAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.FirstResponse,
		ticket.TicketID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_id, reporter, description, priority, issue_category, provider_name_id,
               source, products, case_origin, reporter_notes, contact_emails, vertical, error_code,
               channel_id, channel_type, script_name, issue_impact, assigned_team, assignee,
               status, close_reason, reopen_count, created_at, updated_at, resolved_at, closed_at,
               first_response_at
        FROM tickets WHERE ticket_id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.Reporter,
		&ticket.Description,
		&ticket.Priority,
		&ticket.IssueCategory,
		&ticket.ProviderNameID,
		&ticket.Source,
		&ticket.Products,
		&ticket.CaseOrigin,
		&ticket.ReporterNotes,
		&ticket.ContactEmails,
		&ticket.Vertical,
		&ticket.ErrorCode,
		&ticket.ChannelID,
		&ticket.ChannelType,
		&ticket.ScriptName,
		&ticket.IssueImpact,
		&ticket.AssignedTeam,
		&ticket.Assignee,
		&ticket.Status,
		&ticket.CloseReason,
		&ticket.ReopenCount,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.FirstResponse,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// IsNotFound reports whether the error is a missing-row lookup result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// textArray coalesces a nil slice to an empty one before binding. pgx
// encodes a nil []string as SQL NULL, which the NOT NULL array columns
// reject.
func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
