package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/bugtracker/internal/domain"
)

func bug(id, title string) domain.Bug {
	return domain.Bug{
		ID:          id,
		Title:       title,
		Description: title + " description",
		Status:      domain.BugStatusOpen,
		Priority:    domain.BugPriorityMedium,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func loaded(bugs ...domain.Bug) State {
	return Reduce(New(), FetchSucceeded{Bugs: bugs})
}

func TestNew(t *testing.T) {
	s := New()
	assert.True(t, s.Loading)
	assert.False(t, s.Loaded)
	assert.Empty(t, s.Bugs)
	assert.False(t, s.Fatal())
}

func TestReduce_FetchSucceeded(t *testing.T) {
	s := loaded(bug("2", "b"), bug("1", "a"))

	assert.False(t, s.Loading)
	assert.True(t, s.Loaded)
	require.Len(t, s.Bugs, 2)
	assert.Equal(t, "2", s.Bugs[0].ID)
}

func TestReduce_MountFailureIsFatal(t *testing.T) {
	s := Reduce(New(), Failed{Message: "No response from server. Please try again."})

	assert.False(t, s.Loading)
	assert.True(t, s.Fatal())
	assert.Equal(t, "No response from server. Please try again.", s.Err)

	s = Reduce(s, ErrorDismissed{})
	assert.True(t, s.Fatal(), "a failed mount cannot be dismissed")
}

func TestReduce_CreatePrepends(t *testing.T) {
	editing := bug("1", "a")
	s := loaded(bug("1", "a"))
	s = Reduce(s, EditStarted{Bug: editing})

	s = Reduce(s, CreateSucceeded{Bug: bug("2", "new")})

	require.Len(t, s.Bugs, 2)
	assert.Equal(t, "2", s.Bugs[0].ID)
	assert.Equal(t, "1", s.Bugs[1].ID)
	assert.Nil(t, s.Editing)
	assert.Equal(t, NoticeCreated, s.Notice)
}

func TestReduce_UpdateReplacesByID(t *testing.T) {
	s := loaded(bug("2", "b"), bug("1", "a"))
	s = Reduce(s, EditStarted{Bug: s.Bugs[1]})
	require.NotNil(t, s.Editing)
	assert.Equal(t, "1", s.Editing.ID)

	changed := bug("1", "a2")
	changed.Status = domain.BugStatusResolved
	s = Reduce(s, UpdateSucceeded{Bug: changed})

	require.Len(t, s.Bugs, 2)
	assert.Equal(t, "2", s.Bugs[0].ID)
	assert.Equal(t, changed, s.Bugs[1])
	assert.Nil(t, s.Editing)
	assert.Equal(t, NoticeUpdated, s.Notice)
}

func TestReduce_DeleteFiltersOut(t *testing.T) {
	s := loaded(bug("3", "c"), bug("2", "b"), bug("1", "a"))
	s = Reduce(s, EditStarted{Bug: s.Bugs[1]})

	s = Reduce(s, DeleteSucceeded{ID: "2"})

	require.Len(t, s.Bugs, 2)
	assert.Equal(t, "3", s.Bugs[0].ID)
	assert.Equal(t, "1", s.Bugs[1].ID)
	assert.Nil(t, s.Editing)
	assert.Equal(t, NoticeDeleted, s.Notice)
}

func TestReduce_FailureKeepsConfirmedState(t *testing.T) {
	s := loaded(bug("1", "a"))

	s = Reduce(s, Failed{Message: "Bug not found"})

	assert.Equal(t, "Bug not found", s.Err)
	assert.False(t, s.Fatal())
	require.Len(t, s.Bugs, 1)

	s = Reduce(s, ErrorDismissed{})
	assert.Empty(t, s.Err)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := loaded(bug("2", "b"), bug("1", "a"))
	snapshot := append([]domain.Bug(nil), before.Bugs...)

	_ = Reduce(before, UpdateSucceeded{Bug: bug("1", "changed")})
	_ = Reduce(before, DeleteSucceeded{ID: "2"})
	_ = Reduce(before, CreateSucceeded{Bug: bug("3", "c")})

	assert.Equal(t, snapshot, before.Bugs)
}

func TestReduce_EditAndNotice(t *testing.T) {
	s := loaded(bug("1", "a"))

	s = Reduce(s, EditStarted{Bug: s.Bugs[0]})
	require.NotNil(t, s.Editing)
	s = Reduce(s, EditCancelled{})
	assert.Nil(t, s.Editing)

	s.Notice = "x"
	s = Reduce(s, NoticeDismissed{})
	assert.Empty(t, s.Notice)
}
