package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/bugtracker/internal/domain"
)

func TestAppValidator_Check(t *testing.T) {
	v := NewAppValidator()

	tests := []struct {
		name string
		in   domain.BugInput
		want domain.FieldErrors
	}{
		{
			name: "valid minimal",
			in:   domain.BugInput{Title: "Crash on save", Description: "Stack trace attached"},
			want: domain.FieldErrors{},
		},
		{
			name: "valid full",
			in:   domain.BugInput{Title: "t", Description: "d", Status: "in-progress", Priority: "high"},
			want: domain.FieldErrors{},
		},
		{
			name: "missing text",
			in:   domain.BugInput{},
			want: domain.FieldErrors{"title": "Title is required", "description": "Description is required"},
		},
		{
			name: "whitespace only",
			in:   domain.BugInput{Title: "   ", Description: "\n\t "},
			want: domain.FieldErrors{"title": "Title is required", "description": "Description is required"},
		},
		{
			name: "too long",
			in:   domain.BugInput{Title: strings.Repeat("a", 101), Description: strings.Repeat("b", 501)},
			want: domain.FieldErrors{
				"title":       "Title cannot be more than 100 characters",
				"description": "Description cannot be more than 500 characters",
			},
		},
		{
			name: "at the limits",
			in:   domain.BugInput{Title: strings.Repeat("a", 100), Description: strings.Repeat("b", 500)},
			want: domain.FieldErrors{},
		},
		{
			name: "bad enums",
			in:   domain.BugInput{Title: "t", Description: "d", Status: "closed", Priority: "urgent"},
			want: domain.FieldErrors{"status": "Invalid status value", "priority": "Invalid priority value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Check(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) == 0, got.Valid())
		})
	}
}

func TestAppValidator_StatusEnum(t *testing.T) {
	v := NewAppValidator()
	base := domain.BugInput{Title: "t", Description: "d"}

	for _, s := range domain.BugStatuses {
		in := base
		in.Status = s
		assert.NotContains(t, v.Check(in), "status", s)
	}
	for _, s := range []domain.BugStatus{"closed", "OPEN", "in_progress", " open"} {
		in := base
		in.Status = s
		assert.Equal(t, "Invalid status value", v.Check(in)["status"], s)
	}
}

func TestAppValidator_TitleLengthCountsCharacters(t *testing.T) {
	v := NewAppValidator()

	in := domain.BugInput{Title: strings.Repeat("é", 100), Description: "d"}
	assert.True(t, v.Check(in).Valid())

	in.Title = strings.Repeat("é", 101)
	assert.Equal(t, "Title cannot be more than 100 characters", v.Check(in)["title"])
}

func TestAppValidator_Validate(t *testing.T) {
	v := NewAppValidator()

	require.NoError(t, v.Validate(&domain.BugInput{Title: "t", Description: "d"}))

	err := v.Validate(&domain.BugInput{})
	var fe domain.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Title is required", fe["title"])

	err = v.Validate("not a struct")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
