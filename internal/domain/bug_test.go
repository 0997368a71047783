package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBug_AppliesDefaults(t *testing.T) {
	b := NewBug(BugInput{Title: "t", Description: "d"})

	assert.Equal(t, BugStatusOpen, b.Status)
	assert.Equal(t, BugPriorityMedium, b.Priority)
	assert.Empty(t, b.ID)
	assert.True(t, b.CreatedAt.IsZero())
}

func TestBug_Apply(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stored := Bug{
		ID:          "abc",
		Title:       "old",
		Description: "old desc",
		Status:      BugStatusInProgress,
		Priority:    BugPriorityHigh,
		CreatedAt:   created,
	}

	tests := []struct {
		name string
		in   BugInput
		want Bug
	}{
		{
			name: "omitted enums are kept",
			in:   BugInput{Title: "new", Description: "new desc"},
			want: Bug{ID: "abc", Title: "new", Description: "new desc", Status: BugStatusInProgress, Priority: BugPriorityHigh, CreatedAt: created},
		},
		{
			name: "sent enums replace",
			in:   BugInput{Title: "new", Description: "new desc", Status: BugStatusResolved, Priority: BugPriorityLow},
			want: Bug{ID: "abc", Title: "new", Description: "new desc", Status: BugStatusResolved, Priority: BugPriorityLow, CreatedAt: created},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stored.Apply(tt.in))
		})
	}
}

func TestEnumValidity(t *testing.T) {
	for _, s := range BugStatuses {
		assert.True(t, s.Valid(), s)
	}
	for _, p := range BugPriorities {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, BugStatus("closed").Valid())
	assert.False(t, BugStatus("").Valid())
	assert.False(t, BugPriority("urgent").Valid())
}

func TestBugInput_DecodesAnyEnumValue(t *testing.T) {
	tests := []struct {
		body     string
		status   BugStatus
		priority BugPriority
	}{
		{`{"status":"resolved","priority":"high"}`, BugStatusResolved, BugPriorityHigh},
		{`{}`, "", ""},
		{`{"status":null,"priority":null}`, "", ""},
		{`{"status":5,"priority":["high"]}`, "5", `["high"]`},
		{`{"status":true,"priority":{"v":1}}`, "true", `{"v":1}`},
	}
	for _, tt := range tests {
		var in BugInput
		require.NoError(t, json.Unmarshal([]byte(tt.body), &in), tt.body)
		assert.Equal(t, tt.status, in.Status, tt.body)
		assert.Equal(t, tt.priority, in.Priority, tt.body)
	}
}

func TestFieldErrors(t *testing.T) {
	assert.True(t, FieldErrors{}.Valid())

	fe := FieldErrors{"title": "Title is required", "description": "Description is required"}
	require.False(t, fe.Valid())
	assert.Equal(t, "validation failed: description: Description is required, title: Title is required", fe.Error())

	var target FieldErrors
	assert.True(t, errors.As(error(fe), &target))
}
