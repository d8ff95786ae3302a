package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uts-support/ticket-service/internal/domain"
	"github.com/uts-support/ticket-service/internal/events"
	"github.com/uts-support/ticket-service/internal/intake"
	"github.com/uts-support/ticket-service/internal/lifecycle"
	"github.com/uts-support/ticket-service/internal/repository"
	apperrors "github.com/uts-support/ticket-service/pkg/util"
)

// ViewCache is the read-through cache for assembled ticket views. All
// methods are best-effort.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	Invalidate(ctx context.Context, key string)
}

// TicketService coordinates intake, lifecycle and ledger workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	history     repository.HistoryRepository
	diagnostics repository.DiagnosticsRepository
	directory   repository.DirectoryRepository
	cache       ViewCache
	dispatcher  events.Dispatcher
	targets     lifecycle.Targets
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	CommentRepo     repository.CommentRepository
	HistoryRepo     repository.HistoryRepository
	DiagnosticsRepo repository.DiagnosticsRepository
	DirectoryRepo   repository.DirectoryRepository
	Cache           ViewCache
	Dispatcher      events.Dispatcher
	Targets         lifecycle.Targets
	Logger          *zap.Logger
	Now             func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		history:     deps.HistoryRepo,
		diagnostics: deps.DiagnosticsRepo,
		directory:   deps.DirectoryRepo,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		targets:     deps.Targets,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.targets == (lifecycle.Targets{}) {
		svc.targets = lifecycle.DefaultTargets()
	}
	return svc
}

// TicketView is the assembled detail of a ticket for one viewer: the record,
// the comments that viewer may see, the audit trail newest-first, and the
// freshly evaluated SLA report.
type TicketView struct {
	Ticket   *domain.Ticket        `json:"ticket"`
	Comments []domain.Comment      `json:"comments"`
	History  []domain.HistoryEntry `json:"history"`
	SLA      lifecycle.Report      `json:"sla"`
}

// CommentInput describes a new comment or reply.
type CommentInput struct {
	Author      string
	Content     string
	UserType    domain.UserType
	ParentID    *int64
	Attachments []string
}

// FieldEdits is a patch of editable ticket fields; nil pointers leave the
// field untouched.
type FieldEdits struct {
	Description    *string
	Priority       *string
	IssueCategory  *string
	ProviderNameID *string
	IssueImpact    *string
	CaseOrigin     *string
	ReporterNotes  *string
	ContactEmails  *string
	Vertical       *string
	ErrorCode      *string
	ChannelID      *string
	ChannelType    *string
	ScriptName     *string
	Products       *[]string
}

// CreateTicket validates the form, checks the schema is in place and
// persists a new open ticket with its creation history entry. Validation
// runs first: a rejected form is a 400 even when the store is broken.
func (s *TicketService) CreateTicket(ctx context.Context, form intake.Form) (*domain.Ticket, error) {
	ticket, err := intake.BuildTicket(form, s.now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	missing, err := s.diagnostics.MissingTables(ctx, repository.RequiredTables)
	if err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaMissing(missing)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}

	action, details, user := intake.CreationRecord(ticket)
	s.appendHistory(ctx, ticket.TicketID, action, details, user)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.TicketID,
		Actor:    ticket.Reporter,
		Payload: events.TicketCreatedPayload{
			Reporter: ticket.Reporter,
			Source:   ticket.Source,
			Products: ticket.Products,
		},
	})
	return ticket, nil
}

// GetTicketView assembles the detail view for a viewer, read-through cached.
func (s *TicketService) GetTicketView(ctx context.Context, ticketID string, userType domain.UserType) (*TicketView, error) {
	cacheKey := viewCacheKey(ticketID, userType)
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, cacheKey); ok {
			var view TicketView
			if err := json.Unmarshal(payload, &view); err == nil {
				return &view, nil
			}
		}
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}
	history, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}

	view := &TicketView{
		Ticket:   ticket,
		Comments: lifecycle.VisibleComments(comments, userType),
		History:  history,
		SLA:      lifecycle.Evaluate(ticket, s.targets, s.now()),
	}
	if s.cache != nil {
		if payload, err := json.Marshal(view); err == nil {
			s.cache.Set(ctx, cacheKey, payload)
		}
	}
	return view, nil
}

// ChangeStatus transitions the ticket to the requested status. Entering
// closed is refused here; that runs through CloseTicket with a reason.
func (s *TicketService) ChangeStatus(ctx context.Context, ticketID string, next domain.TicketStatus, actor string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	prior := ticket.Status
	now := s.now()
	records, err := lifecycle.Transition(ticket, next, now)
	if err != nil {
		switch err {
		case lifecycle.ErrCloseRequiresReason:
			return nil, apperrors.NewConflict("closing a ticket requires a reason; use the close endpoint", nil)
		default:
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}
	for _, record := range records {
		s.appendHistory(ctx, ticketID, record.Action, record.Details, actor)
	}
	s.invalidateView(ctx, ticketID)

	if next == domain.TicketStatusOpen && (prior == domain.TicketStatusResolved || prior == domain.TicketStatusClosed) {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketReopened,
			TicketID: ticketID,
			Actor:    actor,
			Payload: events.TicketReopenedPayload{
				FromStatus:  prior,
				ReopenCount: ticket.ReopenCount,
			},
		})
	} else {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticketID,
			Actor:    actor,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: prior,
				NewStatus: next,
			},
		})
	}
	return ticket, nil
}

// CloseTicket commits the two-phase close with the supplied reason. An empty
// reason leaves the ticket untouched.
func (s *TicketService) CloseTicket(ctx context.Context, ticketID, reason, actor string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	prior := ticket.Status
	now := s.now()
	pending := lifecycle.BeginClose(ticket, now)
	record, err := pending.Commit(ticket, reason, now)
	if err != nil {
		return nil, apperrors.NewValidationError("close reason is required", nil)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}
	s.appendHistory(ctx, ticketID, record.Action, record.Details, actor)
	s.invalidateView(ctx, ticketID)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Actor:    actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: prior,
			NewStatus: domain.TicketStatusClosed,
			Reason:    strings.TrimSpace(reason),
		},
	})
	return ticket, nil
}

// UpdateFields applies a field patch, bumps the updated timestamp and
// appends one consolidated history entry when anything actually changed.
// There is no optimistic concurrency: concurrent editors race and the last
// write wins on whichever fields each sends.
func (s *TicketService) UpdateFields(ctx context.Context, ticketID string, edits FieldEdits, actor string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	before := *ticket
	applyEdits(ticket, edits)
	changes := lifecycle.DiffFields(&before, ticket)

	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}
	if len(changes) > 0 {
		formatted := lifecycle.FormatChanges(changes)
		s.appendHistory(ctx, ticketID, domain.HistoryActionUpdated, "Fields updated: "+formatted, actor)
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: ticketID,
			Actor:    actor,
			Payload:  events.TicketUpdatedPayload{Changes: formatted},
		})
	}
	s.invalidateView(ctx, ticketID)
	return ticket, nil
}

// AssignmentInput is a patch of the people panel: contact emails, assigned
// team and assignee. Nil pointers leave the field untouched; a blank value
// clears the assignment.
type AssignmentInput struct {
	ContactEmails *string
	Team          *string
	Assignee      *string
}

// AssignPeople updates who owns the ticket. Team and assignee must exist in
// the directory tables; changes land in one consolidated history entry.
func (s *TicketService) AssignPeople(ctx context.Context, ticketID string, input AssignmentInput, actor string) (*domain.Ticket, error) {
	if err := s.checkDirectory(ctx, input); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	before := *ticket
	setOptional(&ticket.ContactEmails, input.ContactEmails)
	setOptional(&ticket.AssignedTeam, input.Team)
	setOptional(&ticket.Assignee, input.Assignee)
	changes := lifecycle.DiffPeople(&before, ticket)

	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}
	if len(changes) > 0 {
		s.appendHistory(ctx, ticketID, domain.HistoryActionPeopleUpdated, "Fields updated: "+lifecycle.FormatChanges(changes), actor)
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticketID,
			Actor:    actor,
			Payload: events.TicketAssignedPayload{
				Team:     ticket.AssignedTeam,
				Assignee: ticket.Assignee,
			},
		})
	}
	s.invalidateView(ctx, ticketID)
	return ticket, nil
}

func (s *TicketService) checkDirectory(ctx context.Context, input AssignmentInput) error {
	if input.Team != nil {
		if name := strings.TrimSpace(*input.Team); name != "" {
			ok, err := s.directory.TeamExists(ctx, name)
			if err != nil {
				return apperrors.NewStoreConnectionError(err)
			}
			if !ok {
				return apperrors.NewValidationError(fmt.Sprintf("unknown team: %s", name), nil)
			}
		}
	}
	if input.Assignee != nil {
		if name := strings.TrimSpace(*input.Assignee); name != "" {
			ok, err := s.directory.UserExists(ctx, name)
			if err != nil {
				return apperrors.NewStoreConnectionError(err)
			}
			if !ok {
				return apperrors.NewValidationError(fmt.Sprintf("unknown assignee: %s", name), nil)
			}
		}
	}
	return nil
}

// AddComment appends a comment or reply to a ticket. Replying to a reply is
// flattened onto the reply's top-level ancestor; the first comment on a
// ticket stamps the first-response timestamp.
func (s *TicketService) AddComment(ctx context.Context, ticketID string, input CommentInput) (*domain.Comment, error) {
	if strings.TrimSpace(input.Content) == "" && len(input.Attachments) == 0 {
		return nil, apperrors.NewValidationError("comment content is required", nil)
	}
	if strings.TrimSpace(input.Author) == "" {
		return nil, apperrors.NewValidationError("comment author is required", nil)
	}
	if !input.UserType.IsValid() {
		return nil, apperrors.NewValidationError("user type must be internal or external", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	parentID := input.ParentID
	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperrors.NewNotFound("parent comment", nil)
			}
			return nil, apperrors.NewStoreConnectionError(err)
		}
		if parent.TicketID != ticketID {
			return nil, apperrors.NewValidationError("parent comment belongs to a different ticket", nil)
		}
		if parent.IsReply() {
			parentID = parent.ParentID
		}
	}

	comment := &domain.Comment{
		TicketID:    ticketID,
		ParentID:    parentID,
		Author:      strings.TrimSpace(input.Author),
		Content:     strings.TrimSpace(input.Content),
		UserType:    input.UserType,
		Attachments: input.Attachments,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}

	now := s.now()
	firstResponse := lifecycle.NoteFirstResponse(ticket, now)
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}

	if firstResponse {
		s.appendHistory(ctx, ticketID, domain.HistoryActionFirstResponse, "First response provided", comment.Author)
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketFirstResponse,
			TicketID: ticketID,
			Actor:    comment.Author,
			Payload:  events.TicketFirstResponsePayload{RespondedAt: now},
		})
	}

	action := domain.HistoryActionCommentAdded
	noun := "Comment"
	if comment.ParentID != nil {
		action = domain.HistoryActionReplyAdded
		noun = "Reply"
	}
	s.appendHistory(ctx, ticketID, action, fmt.Sprintf("%s added: %s", noun, stringPreview(comment.Content, 50)), comment.Author)
	s.invalidateView(ctx, ticketID)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticketID,
		Actor:    comment.Author,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			ParentID:    comment.ParentID,
			Author:      comment.Author,
			UserType:    comment.UserType,
			BodyPreview: stringPreview(comment.Content, 120),
		},
	})
	return comment, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreConnectionError(err)
	}
	return ticket, nil
}

// appendHistory records an audit entry. A broken audit trail must not block
// the primary operation, so failures are logged and swallowed.
func (s *TicketService) appendHistory(ctx context.Context, ticketID, action, details, user string) {
	entry := &domain.HistoryEntry{
		TicketID: ticketID,
		Action:   action,
		Details:  details,
		User:     user,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("history append failed",
			zap.String("ticket_id", ticketID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *TicketService) invalidateView(ctx context.Context, ticketID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, viewCacheKey(ticketID, domain.UserTypeInternal))
	s.cache.Invalidate(ctx, viewCacheKey(ticketID, domain.UserTypeExternal))
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func viewCacheKey(ticketID string, userType domain.UserType) string {
	return ticketID + ":" + string(userType)
}

func applyEdits(t *domain.Ticket, edits FieldEdits) {
	if edits.Description != nil {
		t.Description = *edits.Description
	}
	setOptional(&t.Priority, edits.Priority)
	setOptional(&t.IssueCategory, edits.IssueCategory)
	setOptional(&t.ProviderNameID, edits.ProviderNameID)
	setOptional(&t.IssueImpact, edits.IssueImpact)
	setOptional(&t.CaseOrigin, edits.CaseOrigin)
	setOptional(&t.ReporterNotes, edits.ReporterNotes)
	setOptional(&t.ContactEmails, edits.ContactEmails)
	setOptional(&t.Vertical, edits.Vertical)
	setOptional(&t.ErrorCode, edits.ErrorCode)
	setOptional(&t.ChannelID, edits.ChannelID)
	setOptional(&t.ChannelType, edits.ChannelType)
	setOptional(&t.ScriptName, edits.ScriptName)
	if edits.Products != nil {
		t.Products = *edits.Products
	}
}

// setOptional applies a patch value to an optional field: nil leaves it
// alone, blank clears it, anything else is trimmed and stored.
func setOptional(dst **string, src *string) {
	if src == nil {
		return
	}
	if trimmed := strings.TrimSpace(*src); trimmed == "" {
		*dst = nil
	} else {
		value := trimmed
		*dst = &value
	}
}

// stringPreview shortens a comment body for history and event payloads.
// Truncation counts runes so a multi-byte character is never split.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
