package util

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestNormalizeStoreMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "Database connection failed",
		},
		{
			name: "token parse symptom",
			err:  errors.New(`Unexpected token '<' at position 0`),
			want: "Invalid response from database – your DATABASE_URL is probably wrong (must be a Postgres connection URL).",
		},
		{
			name: "invalid response symptom",
			err:  errors.New("invalid response from server"),
			want: "Invalid response from database – your DATABASE_URL is probably wrong (must be a Postgres connection URL).",
		},
		{
			name: "plain failure",
			err:  errors.New("dial tcp: connection refused"),
			want: "Database connection failed – dial tcp: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStoreMessage(tt.err); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToDomainErrorPassthrough(t *testing.T) {
	orig := NewConflict("already closed", nil)
	got := ToDomainError(orig)
	if got.Code != "CONFLICT" || got.HTTPStatus != http.StatusConflict {
		t.Fatalf("got %+v", got)
	}
}

func TestToDomainErrorNoRows(t *testing.T) {
	got := ToDomainError(pgx.ErrNoRows)
	if got.Code != "NOT_FOUND" || got.HTTPStatus != http.StatusNotFound {
		t.Fatalf("got %+v", got)
	}
}

func TestToDomainErrorUnknown(t *testing.T) {
	got := ToDomainError(errors.New("boom"))
	if got.Code != "INTERNAL_ERROR" || got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("got %+v", got)
	}
	if got.Message != "internal server error" {
		t.Fatalf("message %q must not leak the cause", got.Message)
	}
}

func TestSchemaMissingMessage(t *testing.T) {
	err := NewSchemaMissing([]string{"users", "teams"})
	if !strings.Contains(err.Error(), "Missing tables: users, teams") {
		t.Fatalf("message = %q", err.Error())
	}
}
