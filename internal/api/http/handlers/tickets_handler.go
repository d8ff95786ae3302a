package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/uts-support/ticket-service/internal/api/dto"
	"github.com/uts-support/ticket-service/internal/domain"
	"github.com/uts-support/ticket-service/internal/intake"
	"github.com/uts-support/ticket-service/internal/service"
	"github.com/uts-support/ticket-service/internal/viewer"
	apperrors "github.com/uts-support/ticket-service/pkg/util"
)

// TicketsHandler manages the ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets. The response shape is the intake wire
// contract: {success, ticketId, ticket, message} with success always
// present, so this handler renders its own failures instead of delegating to
// the error middleware.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(dto.FailureResponse{
			Success: false,
			Message: "invalid request payload",
		})
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), intake.Form{
		Reporter:       req.Reporter,
		Description:    req.Description,
		Priority:       req.Priority,
		IssueCategory:  req.IssueCategory,
		ProviderNameID: req.ProviderNameID,
		Source:         req.Source,
		Products:       req.Products,
		CaseOrigin:     req.CaseOrigin,
		ReporterNotes:  req.ReporterNotes,
		ContactEmails:  req.ContactEmails,
		Vertical:       req.Vertical,
		ErrorCode:      req.ErrorCode,
		ChannelID:      req.ChannelID,
		ChannelType:    req.ChannelType,
		ScriptName:     req.ScriptName,
		IssueImpact:    req.IssueImpact,
	})
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		return c.Status(domainErr.HTTPStatus).JSON(dto.FailureResponse{
			Success: false,
			Message: domainErr.Message,
		})
	}

	return c.Status(http.StatusCreated).JSON(dto.CreateTicketResponse{
		Success:  true,
		TicketID: ticket.TicketID,
		Ticket:   dto.FromTicket(ticket),
		Message:  "Ticket created successfully",
	})
}

// GetTicket GET /tickets/:ticketId.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	view, err := h.service.GetTicketView(c.UserContext(), c.Params("ticketId"), viewer.FromContext(c))
	if err != nil {
		return err
	}

	comments := make([]dto.CommentResponse, 0, len(view.Comments))
	for i := range view.Comments {
		comments = append(comments, dto.FromComment(&view.Comments[i]))
	}
	return c.JSON(dto.TicketDetailResponse{
		Ticket:   dto.FromTicket(view.Ticket),
		Comments: comments,
		History:  dto.FromHistory(view.History),
		SLA:      dto.FromSLA(view.SLA),
	})
}

// UpdateStatus PATCH /tickets/:ticketId/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ChangeStatus(c.UserContext(), c.Params("ticketId"), domain.TicketStatus(req.Status), actorName(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// CloseTicket POST /tickets/:ticketId/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CloseTicket(c.UserContext(), c.Params("ticketId"), req.Reason, actorName(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// UpdateTicket PATCH /tickets/:ticketId.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateFields(c.UserContext(), c.Params("ticketId"), service.FieldEdits{
		Description:    req.Description,
		Priority:       req.Priority,
		IssueCategory:  req.IssueCategory,
		ProviderNameID: req.ProviderNameID,
		IssueImpact:    req.IssueImpact,
		CaseOrigin:     req.CaseOrigin,
		ReporterNotes:  req.ReporterNotes,
		ContactEmails:  req.ContactEmails,
		Vertical:       req.Vertical,
		ErrorCode:      req.ErrorCode,
		ChannelID:      req.ChannelID,
		ChannelType:    req.ChannelType,
		ScriptName:     req.ScriptName,
		Products:       req.Products,
	}, actorName(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// UpdatePeople PATCH /tickets/:ticketId/people.
func (h *TicketsHandler) UpdatePeople(c *fiber.Ctx) error {
	var req dto.UpdatePeopleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.AssignPeople(c.UserContext(), c.Params("ticketId"), service.AssignmentInput{
		ContactEmails: req.ContactEmails,
		Team:          req.Team,
		Assignee:      req.Assignee,
	}, actorName(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// AddComment POST /tickets/:ticketId/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	userType := domain.UserType(req.UserType)
	if req.UserType == "" {
		userType = viewer.FromContext(c)
	}
	comment, err := h.service.AddComment(c.UserContext(), c.Params("ticketId"), service.CommentInput{
		Author:      req.Author,
		Content:     req.Content,
		UserType:    userType,
		ParentID:    req.ParentID,
		Attachments: req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromComment(comment)})
}

// actorName attributes mutations in the audit trail. Without accounts the
// caller-supplied header is all there is.
func actorName(c *fiber.Ctx) string {
	if name := c.Get("X-User-Name"); name != "" {
		return name
	}
	return "Current User"
}
