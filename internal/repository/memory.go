package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sumire/bugtracker/internal/domain"
)

// MemoryBugRepository keeps bugs in process memory. Nothing survives a restart.
type MemoryBugRepository struct {
	mu    sync.RWMutex
	bugs  map[string]domain.Bug
	order []string
	now   func() time.Time
}

// NewMemoryBugRepository creates an empty MemoryBugRepository.
func NewMemoryBugRepository() *MemoryBugRepository {
	return &MemoryBugRepository{
		bugs: make(map[string]domain.Bug),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns all bugs, newest first.
func (r *MemoryBugRepository) List(ctx context.Context) ([]domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bugs := make([]domain.Bug, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		bugs = append(bugs, r.bugs[r.order[i]])
	}
	sort.SliceStable(bugs, func(i, j int) bool {
		return bugs[i].CreatedAt.After(bugs[j].CreatedAt)
	})
	return bugs, nil
}

// Insert stores a new bug, assigning its ID and creation time.
func (r *MemoryBugRepository) Insert(ctx context.Context, bug domain.Bug) (*domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := conform(&bug); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bug.ID = uuid.New().String()
	bug.CreatedAt = r.now()
	if _, exists := r.bugs[bug.ID]; exists {
		return nil, fmt.Errorf("%w: id %s", domain.ErrDuplicate, bug.ID)
	}
	r.bugs[bug.ID] = bug
	r.order = append(r.order, bug.ID)
	return &bug, nil
}

// Get retrieves a bug by its ID.
func (r *MemoryBugRepository) Get(ctx context.Context, id string) (*domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bug, ok := r.bugs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &bug, nil
}

// Update merges the input into the stored bug and returns the result.
func (r *MemoryBugRepository) Update(ctx context.Context, id string, in domain.BugInput) (*domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bugs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	updated := stored.Apply(in)
	if err := conform(&updated); err != nil {
		return nil, err
	}
	r.bugs[id] = updated
	return &updated, nil
}

// Delete removes a bug and returns the removed record.
func (r *MemoryBugRepository) Delete(ctx context.Context, id string) (*domain.Bug, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bug, ok := r.bugs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.bugs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &bug, nil
}

// Close is a no-op.
func (r *MemoryBugRepository) Close() error { return nil }
