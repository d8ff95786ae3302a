package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RequiredTables is the table set the service needs before it can serve
// ticket traffic.
var RequiredTables = []string{"tickets", "comments", "ticket_history", "users", "teams"}

// DiagnosticsRepository probes the backing store for the db-test endpoint
// and the pre-flight schema check.
type DiagnosticsRepository interface {
	ProbeConnection(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)
	MissingTables(ctx context.Context, required []string) ([]string, error)
}

type diagnosticsRepository struct {
	pool *pgxpool.Pool
}

// NewDiagnosticsRepository builds repository.
func NewDiagnosticsRepository(pool *pgxpool.Pool) DiagnosticsRepository {
	return &diagnosticsRepository{pool: pool}
}

func (r *diagnosticsRepository) ProbeConnection(ctx context.Context) error {
	var ok int
	return r.pool.QueryRow(ctx, `SELECT 1 AS ok`).Scan(&ok)
}

func (r *diagnosticsRepository) ListTables(ctx context.Context) ([]string, error) {
	const query = `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_schema = 'public'
        ORDER BY table_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (r *diagnosticsRepository) MissingTables(ctx context.Context, required []string) ([]string, error) {
	const query = `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_schema = 'public'
        AND table_name = ANY($1)`
	rows, err := r.pool.Query(ctx, query, required)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]bool, len(required))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range required {
		if !existing[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
