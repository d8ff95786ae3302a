package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/uts-support/ticket-service/internal/service"
)

// DiagnosticsHandler serves the db-test endpoint.
type DiagnosticsHandler struct {
	diagnostics *service.DiagnosticsService
	logger      *zap.Logger
}

// NewDiagnosticsHandler constructs handler.
func NewDiagnosticsHandler(diagnostics *service.DiagnosticsService, logger *zap.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnostics: diagnostics, logger: logger}
}

// DBTest GET /db-test. The probes themselves never fail; the 500 branch only
// fires if the probe machinery panics, so monitoring always gets a parseable
// body.
func (h *DiagnosticsHandler) DBTest(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("db-test probe panicked", zap.Any("panic", r))
			err = c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "diagnostic probe failed",
			})
		}
	}()

	report := h.diagnostics.RunReport(c.UserContext())
	return c.JSON(report)
}
