package tracker

import (
	"context"

	"github.com/sumire/bugtracker/internal/client"
	"github.com/sumire/bugtracker/internal/domain"
)

// API is the remote surface the synchronizer drives. *client.Client satisfies it.
type API interface {
	List(ctx context.Context) ([]domain.Bug, error)
	Create(ctx context.Context, in domain.BugInput) (*domain.Bug, error)
	Update(ctx context.Context, id string, in domain.BugInput) (*domain.Bug, error)
	Delete(ctx context.Context, id string) error
}

// Syncer issues one remote call per user action and reports the outcome as an Event.
// It keeps no state; callers feed the events to Reduce.
type Syncer struct {
	api API
}

// NewSyncer creates a Syncer over api.
func NewSyncer(api API) *Syncer {
	return &Syncer{api: api}
}

// Fetch loads the collection. It is meant to run once, when the view mounts.
func (s *Syncer) Fetch(ctx context.Context) Event {
	bugs, err := s.api.List(ctx)
	if err != nil {
		return failed(err)
	}
	return FetchSucceeded{Bugs: bugs}
}

// Submit creates a bug, or updates editing when it is non-nil.
func (s *Syncer) Submit(ctx context.Context, editing *domain.Bug, in domain.BugInput) Event {
	if editing == nil {
		bug, err := s.api.Create(ctx, in)
		if err != nil {
			return failed(err)
		}
		return CreateSucceeded{Bug: *bug}
	}

	bug, err := s.api.Update(ctx, editing.ID, in)
	if err != nil {
		return failed(err)
	}
	return UpdateSucceeded{Bug: *bug}
}

// Remove deletes the bug with the given id.
func (s *Syncer) Remove(ctx context.Context, id string) Event {
	if err := s.api.Delete(ctx, id); err != nil {
		return failed(err)
	}
	return DeleteSucceeded{ID: id}
}

func failed(err error) Failed {
	return Failed{Message: client.Message(err)}
}
