package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/bugtracker/internal/domain"
)

// stubStore records calls and returns canned results.
type stubStore struct {
	listResult []domain.Bug
	inserted   []domain.Bug
	getErr     error
	err        error
}

func (s *stubStore) List(context.Context) ([]domain.Bug, error) {
	return s.listResult, s.err
}

func (s *stubStore) Insert(_ context.Context, bug domain.Bug) (*domain.Bug, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.inserted = append(s.inserted, bug)
	bug.ID = "generated"
	return &bug, nil
}

func (s *stubStore) Get(_ context.Context, id string) (*domain.Bug, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &domain.Bug{ID: id}, nil
}

func (s *stubStore) Update(_ context.Context, id string, in domain.BugInput) (*domain.Bug, error) {
	if s.err != nil {
		return nil, s.err
	}
	bug := domain.Bug{ID: id}.Apply(in)
	return &bug, nil
}

func (s *stubStore) Delete(_ context.Context, id string) (*domain.Bug, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Bug{ID: id}, nil
}

func TestBugService_ListNeverNil(t *testing.T) {
	svc := NewBugService(&stubStore{})

	bugs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, bugs)
	assert.Empty(t, bugs)
}

func TestBugService_CreateAppliesDefaults(t *testing.T) {
	store := &stubStore{}
	svc := NewBugService(store)

	bug, err := svc.Create(context.Background(), domain.BugInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "generated", bug.ID)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, domain.BugStatusOpen, store.inserted[0].Status)
	assert.Equal(t, domain.BugPriorityMedium, store.inserted[0].Priority)
}

func TestBugService_ForwardsStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewBugService(&stubStore{err: boom})
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = svc.Create(ctx, domain.BugInput{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, boom)
	_, err = svc.Update(ctx, "1", domain.BugInput{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.Delete(ctx, "1"), boom)
}

func TestBugService_Exists(t *testing.T) {
	ctx := context.Background()

	ok, err := NewBugService(&stubStore{}).Exists(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewBugService(&stubStore{getErr: domain.ErrNotFound}).Exists(ctx, "1")
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("timeout")
	_, err = NewBugService(&stubStore{getErr: boom}).Exists(ctx, "1")
	assert.ErrorIs(t, err, boom)
}
