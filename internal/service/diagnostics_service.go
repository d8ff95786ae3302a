package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uts-support/ticket-service/internal/repository"
	apperrors "github.com/uts-support/ticket-service/pkg/util"
)

// DiagnosticsService runs the db-test probes. Every method is total from the
// caller's perspective: failures come back as structured results, never as
// errors, so monitoring can always parse a response.
type DiagnosticsService struct {
	diagnostics repository.DiagnosticsRepository
	logger      *zap.Logger
}

// NewDiagnosticsService constructs the service.
func NewDiagnosticsService(diagnostics repository.DiagnosticsRepository, logger *zap.Logger) *DiagnosticsService {
	return &DiagnosticsService{diagnostics: diagnostics, logger: logger}
}

// ConnectionResult reports the outcome of the connectivity probe.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TablesResult lists the public tables found in the store.
type TablesResult struct {
	Success bool     `json:"success"`
	Tables  []string `json:"tables"`
	Message string   `json:"message"`
}

// TableCheckResult reports which required tables are absent.
type TableCheckResult struct {
	Success       bool     `json:"success"`
	MissingTables []string `json:"missingTables"`
	Message       string   `json:"message"`
}

// Report is the full db-test response body.
type Report struct {
	Connection ConnectionResult `json:"connection"`
	Tables     TablesResult     `json:"tables"`
	TableCheck TableCheckResult `json:"tableCheck"`
	Timestamp  time.Time        `json:"timestamp"`
}

// TestConnection probes the store with SELECT 1.
func (s *DiagnosticsService) TestConnection(ctx context.Context) ConnectionResult {
	if err := s.diagnostics.ProbeConnection(ctx); err != nil {
		s.logger.Error("connection probe failed", zap.Error(err))
		return ConnectionResult{Success: false, Message: apperrors.NormalizeStoreMessage(err)}
	}
	return ConnectionResult{Success: true, Message: "Database OK – returned: 1"}
}

// TableInfo lists the public schema tables.
func (s *DiagnosticsService) TableInfo(ctx context.Context) TablesResult {
	tables, err := s.diagnostics.ListTables(ctx)
	if err != nil {
		s.logger.Error("table listing failed", zap.Error(err))
		return TablesResult{Success: false, Tables: []string{}, Message: err.Error()}
	}
	if tables == nil {
		tables = []string{}
	}
	return TablesResult{
		Success: true,
		Tables:  tables,
		Message: fmt.Sprintf("Found %d tables", len(tables)),
	}
}

// CheckRequiredTables verifies the service's required table set exists.
func (s *DiagnosticsService) CheckRequiredTables(ctx context.Context) TableCheckResult {
	missing, err := s.diagnostics.MissingTables(ctx, repository.RequiredTables)
	if err != nil {
		s.logger.Error("table check failed", zap.Error(err))
		return TableCheckResult{Success: false, MissingTables: []string{}, Message: err.Error()}
	}
	if len(missing) == 0 {
		return TableCheckResult{Success: true, MissingTables: []string{}, Message: "All tables exist"}
	}
	return TableCheckResult{
		Success:       false,
		MissingTables: missing,
		Message:       fmt.Sprintf("Missing tables: %s", strings.Join(missing, ", ")),
	}
}

// RunReport executes all probes and assembles the db-test payload.
func (s *DiagnosticsService) RunReport(ctx context.Context) Report {
	return Report{
		Connection: s.TestConnection(ctx),
		Tables:     s.TableInfo(ctx),
		TableCheck: s.CheckRequiredTables(ctx),
		Timestamp:  time.Now(),
	}
}
