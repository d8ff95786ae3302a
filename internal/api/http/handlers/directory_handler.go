package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/uts-support/ticket-service/internal/api/dto"
	"github.com/uts-support/ticket-service/internal/service"
)

// DirectoryHandler serves the assignment directory.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// List GET /directory.
func (h *DirectoryHandler) List(c *fiber.Ctx) error {
	directory, err := h.directory.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DirectoryResponse{Teams: directory.Teams, Users: directory.Users})
}
