package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectoryRepository reads the teams and users tables that back ticket
// assignment. The directory is seeded by migrations and read-only from the
// service's point of view.
type DirectoryRepository interface {
	TeamExists(ctx context.Context, name string) (bool, error)
	UserExists(ctx context.Context, name string) (bool, error)
	ListTeams(ctx context.Context) ([]string, error)
	ListUsers(ctx context.Context) ([]string, error)
}

type directoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository builds repository.
func NewDirectoryRepository(pool *pgxpool.Pool) DirectoryRepository {
	return &directoryRepository{pool: pool}
}

func (r *directoryRepository) TeamExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM teams WHERE name=$1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

func (r *directoryRepository) UserExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE name=$1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

func (r *directoryRepository) ListTeams(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, `SELECT name FROM teams ORDER BY name`)
}

func (r *directoryRepository) ListUsers(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, `SELECT name FROM users ORDER BY name`)
}

func (r *directoryRepository) listNames(ctx context.Context, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
