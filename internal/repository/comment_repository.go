package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uts-support/ticket-service/internal/domain"
)

// CommentRepository manages the threaded comment ledger of a ticket.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	// ListByTicket returns the assembled thread: top-level comments
	// newest-first, replies beneath each parent oldest-first.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, parent_comment_id, author_name, content, user_type, attachments)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.ParentID,
		comment.Author,
		comment.Content,
		comment.UserType,
		textArray(comment.Attachments),
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, parent_comment_id, author_name, content, user_type, attachments, created_at
        FROM comments WHERE id=$1`
	var comment domain.Comment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.ParentID,
		&comment.Author,
		&comment.Content,
		&comment.UserType,
		&comment.Attachments,
		&comment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, parent_comment_id, author_name, content, user_type, attachments, created_at
        FROM comments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flat []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.ParentID,
			&comment.Author,
			&comment.Content,
			&comment.UserType,
			&comment.Attachments,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		flat = append(flat, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assembleThread(flat), nil
}

// assembleThread nests replies beneath their parent. The flat input arrives
// oldest-first, so replies keep chronological order while top-level comments
// get reversed to newest-first.
func assembleThread(flat []domain.Comment) []domain.Comment {
	byID := make(map[int64]*domain.Comment, len(flat))
	var topLevel []*domain.Comment
	for i := range flat {
		comment := flat[i]
		byID[comment.ID] = &comment
		if comment.ParentID == nil {
			topLevel = append(topLevel, byID[comment.ID])
		}
	}
	for i := range flat {
		comment := flat[i]
		if comment.ParentID == nil {
			continue
		}
		if parent, ok := byID[*comment.ParentID]; ok {
			parent.Replies = append(parent.Replies, comment)
		}
	}

	result := make([]domain.Comment, 0, len(topLevel))
	for i := len(topLevel) - 1; i >= 0; i-- {
		result = append(result, *topLevel[i])
	}
	return result
}
