package service

import (
	"context"

	"github.com/uts-support/ticket-service/internal/repository"
	apperrors "github.com/uts-support/ticket-service/pkg/util"
)

// DirectoryService serves the teams and users available for assignment.
type DirectoryService struct {
	directory repository.DirectoryRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(directory repository.DirectoryRepository) *DirectoryService {
	return &DirectoryService{directory: directory}
}

// Directory lists assignable teams and users.
type Directory struct {
	Teams []string `json:"teams"`
	Users []string `json:"users"`
}

// List returns the assignment directory.
func (s *DirectoryService) List(ctx context.Context) (*Directory, error) {
	teams, err := s.directory.ListTeams(ctx)
	if err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}
	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.NewStoreConnectionError(err)
	}
	if teams == nil {
		teams = []string{}
	}
	if users == nil {
		users = []string{}
	}
	return &Directory{Teams: teams, Users: users}, nil
}
