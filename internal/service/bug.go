package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sumire/bugtracker/internal/domain"
)

// BugStore defines the bug data access interface consumed by BugService.
type BugStore interface {
	List(ctx context.Context) ([]domain.Bug, error)
	Insert(ctx context.Context, bug domain.Bug) (*domain.Bug, error)
	Get(ctx context.Context, id string) (*domain.Bug, error)
	Update(ctx context.Context, id string, in domain.BugInput) (*domain.Bug, error)
	Delete(ctx context.Context, id string) (*domain.Bug, error)
}

// BugService handles bug persistence on behalf of the HTTP layer.
// Input is expected to have been validated by the caller.
type BugService struct {
	bugs BugStore
}

// NewBugService creates a new BugService.
func NewBugService(bugs BugStore) *BugService {
	return &BugService{bugs: bugs}
}

// List returns every bug, newest first.
func (s *BugService) List(ctx context.Context) ([]domain.Bug, error) {
	bugs, err := s.bugs.List(ctx)
	if err != nil {
		return nil, err
	}
	if bugs == nil {
		bugs = []domain.Bug{}
	}
	return bugs, nil
}

// Create persists a new bug built from the input.
func (s *BugService) Create(ctx context.Context, in domain.BugInput) (*domain.Bug, error) {
	bug, err := s.bugs.Insert(ctx, domain.NewBug(in))
	if err != nil {
		return nil, err
	}
	slog.Info("bug created", "bug_id", bug.ID, "status", bug.Status, "priority", bug.Priority)
	return bug, nil
}

// Update merges the input into the bug identified by id.
func (s *BugService) Update(ctx context.Context, id string, in domain.BugInput) (*domain.Bug, error) {
	bug, err := s.bugs.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	slog.Info("bug updated", "bug_id", bug.ID, "status", bug.Status, "priority", bug.Priority)
	return bug, nil
}

// Delete removes the bug identified by id.
func (s *BugService) Delete(ctx context.Context, id string) error {
	bug, err := s.bugs.Delete(ctx, id)
	if err != nil {
		return err
	}
	slog.Info("bug removed", "bug_id", bug.ID)
	return nil
}

// Exists reports whether a bug with the given id is stored.
func (s *BugService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.bugs.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("check bug %s: %w", id, err)
	}
}
