package dto

import (
	"time"

	"github.com/uts-support/ticket-service/internal/domain"
	"github.com/uts-support/ticket-service/internal/lifecycle"
)

// CreateTicketRequest is the intake form payload. Field names mirror the
// intake form's JSON keys.
type CreateTicketRequest struct {
	Reporter       string   `json:"reporter"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"`
	IssueCategory  string   `json:"issueCategory"`
	ProviderNameID string   `json:"providerNameId"`
	Source         string   `json:"source"`
	Products       []string `json:"products"`
	CaseOrigin     string   `json:"caseOrigin"`
	ReporterNotes  string   `json:"reporterNotes"`
	ContactEmails  string   `json:"contactEmails"`
	Vertical       string   `json:"vertical"`
	ErrorCode      string   `json:"errorCode"`
	ChannelID      string   `json:"channelId"`
	ChannelType    string   `json:"channelType"`
	ScriptName     string   `json:"scriptName"`
	IssueImpact    string   `json:"issueImpact"`
}

// CreateTicketResponse is the POST /tickets success body.
type CreateTicketResponse struct {
	Success  bool           `json:"success"`
	TicketID string         `json:"ticketId"`
	Ticket   TicketResponse `json:"ticket"`
	Message  string         `json:"message"`
}

// FailureResponse is the error body for the ticket intake wire contract.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UpdateStatusRequest changes ticket status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CloseTicketRequest commits the two-phase close.
type CloseTicketRequest struct {
	Reason string `json:"reason"`
}

// UpdateTicketRequest patches editable fields; absent keys are untouched.
type UpdateTicketRequest struct {
	Description    *string   `json:"description"`
	Priority       *string   `json:"priority"`
	IssueCategory  *string   `json:"issueCategory"`
	ProviderNameID *string   `json:"providerNameId"`
	IssueImpact    *string   `json:"issueImpact"`
	CaseOrigin     *string   `json:"caseOrigin"`
	ReporterNotes  *string   `json:"reporterNotes"`
	ContactEmails  *string   `json:"contactEmails"`
	Vertical       *string   `json:"vertical"`
	ErrorCode      *string   `json:"errorCode"`
	ChannelID      *string   `json:"channelId"`
	ChannelType    *string   `json:"channelType"`
	ScriptName     *string   `json:"scriptName"`
	Products       *[]string `json:"products"`
}

// UpdatePeopleRequest patches the people panel; absent keys are untouched,
// blank values clear the assignment.
type UpdatePeopleRequest struct {
	ContactEmails *string `json:"contactEmails"`
	Team          *string `json:"team"`
	Assignee      *string `json:"assignee"`
}

// DirectoryResponse lists assignable teams and users.
type DirectoryResponse struct {
	Teams []string `json:"teams"`
	Users []string `json:"users"`
}

// CreateCommentRequest adds a comment or reply.
type CreateCommentRequest struct {
	Author      string   `json:"author"`
	Content     string   `json:"content"`
	UserType    string   `json:"userType"`
	ParentID    *int64   `json:"parentId"`
	Attachments []string `json:"attachments"`
}

// TicketResponse is the wire form of a ticket record.
type TicketResponse struct {
	ID             int64      `json:"id"`
	TicketID       string     `json:"ticket_id"`
	Reporter       string     `json:"reporter"`
	Description    string     `json:"description"`
	Priority       *string    `json:"priority,omitempty"`
	IssueCategory  *string    `json:"issue_category,omitempty"`
	ProviderNameID *string    `json:"provider_name_id,omitempty"`
	Source         string     `json:"source"`
	Products       []string   `json:"products"`
	CaseOrigin     *string    `json:"case_origin,omitempty"`
	ReporterNotes  *string    `json:"reporter_notes,omitempty"`
	ContactEmails  *string    `json:"contact_emails,omitempty"`
	Vertical       *string    `json:"vertical,omitempty"`
	ErrorCode      *string    `json:"error_code,omitempty"`
	ChannelID      *string    `json:"channel_id,omitempty"`
	ChannelType    *string    `json:"channel_type,omitempty"`
	ScriptName     *string    `json:"script_name,omitempty"`
	IssueImpact    *string    `json:"issue_impact,omitempty"`
	AssignedTeam   *string    `json:"assigned_team,omitempty"`
	Assignee       *string    `json:"assignee,omitempty"`
	Status         string     `json:"status"`
	CloseReason    *string    `json:"close_reason,omitempty"`
	ReopenCount    int        `json:"reopen_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	FirstResponse  *time.Time `json:"first_response_at,omitempty"`
}

// CommentResponse is the wire form of a comment, replies nested one level.
type CommentResponse struct {
	ID          int64             `json:"id"`
	ParentID    *int64            `json:"parent_id,omitempty"`
	Author      string            `json:"author_name"`
	Content     string            `json:"content"`
	UserType    string            `json:"user_type"`
	Attachments []string          `json:"attachments,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Replies     []CommentResponse `json:"replies,omitempty"`
}

// HistoryResponse is the wire form of an audit entry.
type HistoryResponse struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	User      string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// SLATimerResponse is one evaluated SLA clock.
type SLATimerResponse struct {
	Target  float64 `json:"target"`
	Elapsed float64 `json:"elapsed"`
	Status  string  `json:"status"`
}

// SLAResponse carries the four clocks.
type SLAResponse struct {
	TTA SLATimerResponse `json:"tta"`
	TTT SLATimerResponse `json:"ttt"`
	TTR SLATimerResponse `json:"ttr"`
	TTL SLATimerResponse `json:"ttl"`
}

// TicketDetailResponse is the GET /tickets/:ticketId body.
type TicketDetailResponse struct {
	Ticket   TicketResponse    `json:"ticket"`
	Comments []CommentResponse `json:"comments"`
	History  []HistoryResponse `json:"history"`
	SLA      SLAResponse       `json:"sla"`
}

// FromTicket maps a domain ticket onto the wire shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		TicketID:       t.TicketID,
		Reporter:       t.Reporter,
		Description:    t.Description,
		Priority:       t.Priority,
		IssueCategory:  t.IssueCategory,
		ProviderNameID: t.ProviderNameID,
		Source:         string(t.Source),
		Products:       t.Products,
		CaseOrigin:     t.CaseOrigin,
		ReporterNotes:  t.ReporterNotes,
		ContactEmails:  t.ContactEmails,
		Vertical:       t.Vertical,
		ErrorCode:      t.ErrorCode,
		ChannelID:      t.ChannelID,
		ChannelType:    t.ChannelType,
		ScriptName:     t.ScriptName,
		IssueImpact:    t.IssueImpact,
		AssignedTeam:   t.AssignedTeam,
		Assignee:       t.Assignee,
		Status:         string(t.Status),
		CloseReason:    t.CloseReason,
		ReopenCount:    t.ReopenCount,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		ResolvedAt:     t.ResolvedAt,
		ClosedAt:       t.ClosedAt,
		FirstResponse:  t.FirstResponse,
	}
}

// FromComment maps a domain comment with its replies.
func FromComment(c *domain.Comment) CommentResponse {
	replies := make([]CommentResponse, 0, len(c.Replies))
	for i := range c.Replies {
		replies = append(replies, FromComment(&c.Replies[i]))
	}
	return CommentResponse{
		ID:          c.ID,
		ParentID:    c.ParentID,
		Author:      c.Author,
		Content:     c.Content,
		UserType:    string(c.UserType),
		Attachments: c.Attachments,
		CreatedAt:   c.CreatedAt,
		Replies:     replies,
	}
}

// FromHistory maps audit entries.
func FromHistory(entries []domain.HistoryEntry) []HistoryResponse {
	result := make([]HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, HistoryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			Details:   entry.Details,
			User:      entry.User,
			CreatedAt: entry.CreatedAt,
		})
	}
	return result
}

// FromSLA maps an evaluated SLA report.
func FromSLA(report lifecycle.Report) SLAResponse {
	timer := func(t lifecycle.Timer) SLATimerResponse {
		return SLATimerResponse{Target: t.Target, Elapsed: t.Elapsed, Status: string(t.Status)}
	}
	return SLAResponse{
		TTA: timer(report.TTA),
		TTT: timer(report.TTT),
		TTR: timer(report.TTR),
		TTL: timer(report.TTL),
	}
}
