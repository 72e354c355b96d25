package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/user-service/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, UndefinedColumn, MapCode("42703"))
	assert.Equal(t, ConnectionException, MapCode("08006"))
	assert.Equal(t, Other, MapCode("XX000"))
}

func TestMapSeverity(t *testing.T) {
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityError, MapSeverity("weird"))
}

func TestErrorCode(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_email_key"}

	assert.Equal(t, "USER_ALREADY_EXISTS", ErrorCode(fmt.Errorf("insert: %w", pgErr)))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.Nil(t, FromError(errors.New("plain")))
}

func TestError_Detail(t *testing.T) {
	tests := []struct {
		name       string
		err        *pgconn.PgError
		wantCode   string
		wantDetail string
	}{
		{
			name:       "unique violation names the column",
			err:        &pgconn.PgError{Code: "23505", TableName: "users", ConstraintName: "users_email_key"},
			wantCode:   "USER_ALREADY_EXISTS",
			wantDetail: "A User with this Email already exists",
		},
		{
			name:       "not null violation",
			err:        &pgconn.PgError{Code: "23502", TableName: "users", ColumnName: "email"},
			wantCode:   "USER_REQUIRED",
			wantDetail: "The Email is required",
		},
		{
			name:       "name longer than its column",
			err:        &pgconn.PgError{Code: "22001", TableName: "users", ColumnName: "name"},
			wantCode:   "USER_INVALID",
			wantDetail: "The Name value does not meet required conditions",
		},
		{
			name:       "foreign key violation",
			err:        &pgconn.PgError{Code: "23503", TableName: "users", ColumnName: "team_id"},
			wantCode:   "USER_NOT_FOUND",
			wantDetail: "The referenced Team does not exist",
		},
		{
			name:       "connection failure",
			err:        &pgconn.PgError{Code: "08006"},
			wantCode:   "RECORD_ERROR",
			wantDetail: "An error occurred while processing your request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlErr := FromError(fmt.Errorf("query: %w", tt.err))
			require.NotNil(t, sqlErr)

			assert.Equal(t, tt.wantCode, sqlErr.AppCode())
			assert.Equal(t, tt.wantDetail, sqlErr.Detail())
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "no rows",
			err:        fmt.Errorf("find: %w", sql.ErrNoRows),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "Resource not found",
		},
		{
			name:       "database error",
			err:        &pgconn.PgError{Code: "23505", TableName: "users"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantMsg:    http.StatusText(http.StatusInternalServerError),
		},
		{
			name:       "unknown failure",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantMsg:    http.StatusText(http.StatusInternalServerError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.ErrorAs(t, HandleError(tt.err), &httpErr)

			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
		})
	}
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewNotFoundError("Route not found", false, nil)
	assert.Same(t, original, HandleError(original))
}

func TestConvertPgError_Unwrap(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", Severity: "ERROR", Message: "fk", TableName: "users"}
	converted := ConvertPgError(pgErr)

	assert.Equal(t, ForeignKeyViolation, converted.Code)
	assert.Equal(t, SeverityError, converted.Severity)
	assert.ErrorIs(t, converted, pgErr)
	assert.Same(t, converted, FromError(fmt.Errorf("x: %w", converted)))
}
