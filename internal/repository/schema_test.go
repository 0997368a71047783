package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/bugtracker/internal/domain"
)

func TestConform(t *testing.T) {
	tests := []struct {
		name       string
		bug        domain.Bug
		wantFields []string
	}{
		{
			name: "valid with defaults",
			bug:  domain.Bug{Title: "t", Description: "d"},
		},
		{
			name:       "blank text",
			bug:        domain.Bug{Title: " ", Description: "\t"},
			wantFields: []string{"title", "description"},
		},
		{
			name:       "too long",
			bug:        domain.Bug{Title: strings.Repeat("a", 101), Description: strings.Repeat("b", 501)},
			wantFields: []string{"title", "description"},
		},
		{
			name:       "bad enums",
			bug:        domain.Bug{Title: "t", Description: "d", Status: "closed", Priority: "urgent"},
			wantFields: []string{"status", "priority"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bug := tt.bug
			err := conform(&bug)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				assert.Equal(t, domain.BugStatusOpen, bug.Status)
				assert.Equal(t, domain.BugPriorityMedium, bug.Priority)
				return
			}

			var schemaErr *domain.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Len(t, schemaErr.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, schemaErr.Fields, f)
			}
		})
	}
}

func TestConstraintField(t *testing.T) {
	assert.Equal(t, "status", constraintField("bugs_status_check"))
	assert.Equal(t, "description", constraintField("bugs_description_check"))
	assert.Equal(t, "document", constraintField(""))
}

func TestClassifySQLError_Postgres(t *testing.T) {
	check := classifySQLError(fmt.Errorf("insert bug: %w",
		&pgconn.PgError{Code: "23514", ConstraintName: "bugs_status_check"}))
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, check, &schemaErr)
	assert.Equal(t, map[string]string{"status": "status violates constraint bugs_status_check"}, schemaErr.Fields)

	dup := classifySQLError(fmt.Errorf("insert bug: %w", &pgconn.PgError{Code: "23505", ConstraintName: "bugs_pkey"}))
	assert.ErrorIs(t, dup, domain.ErrDuplicate)

	other := fmt.Errorf("insert bug: %w", &pgconn.PgError{Code: "40001"})
	assert.Same(t, other, classifySQLError(other))

	plain := errors.New("connection reset")
	assert.Same(t, plain, classifySQLError(plain))
}

func TestSQLiteConstraintName(t *testing.T) {
	assert.Equal(t, "bugs_status_check",
		sqliteConstraintName("constraint failed: CHECK constraint failed: bugs_status_check (275)"))
	assert.Equal(t, "bugs_title_check", sqliteConstraintName("CHECK constraint failed: bugs_title_check"))
	assert.Equal(t, "", sqliteConstraintName("something else"))
}
