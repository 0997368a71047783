// Package tracker holds the client-side view of the bug collection and the
// transitions applied to it after each confirmed server response.
package tracker

import (
	"github.com/sumire/bugtracker/internal/domain"
)

// Notices shown after a confirmed change.
const (
	NoticeCreated = "Bug created successfully!"
	NoticeUpdated = "Bug updated successfully!"
	NoticeDeleted = "Bug deleted successfully!"
)

// State is the client's cache of the bug collection. It has no authority of
// its own; every change follows a server response.
type State struct {
	// Bugs is ordered newest first.
	Bugs    []domain.Bug
	Loading bool
	// Loaded is set once the mount fetch succeeded.
	Loaded bool
	// Err is the current failure message, empty when there is none.
	Err string
	// Editing is the bug whose values the form is editing, nil when creating.
	Editing *domain.Bug
	// Notice is transient confirmation text.
	Notice string
}

// New returns the state of a view that has just mounted and started its fetch.
func New() State {
	return State{Loading: true}
}

// Fatal reports whether the view failed before it had anything to show.
// Only quitting leaves this state.
func (s State) Fatal() bool {
	return s.Err != "" && !s.Loaded
}

// Event is a transition input for Reduce.
type Event interface {
	isEvent()
}

// FetchSucceeded carries the result of the mount fetch.
type FetchSucceeded struct{ Bugs []domain.Bug }

// CreateSucceeded carries the stored record returned by a create.
type CreateSucceeded struct{ Bug domain.Bug }

// UpdateSucceeded carries the stored record returned by an update.
type UpdateSucceeded struct{ Bug domain.Bug }

// DeleteSucceeded names the bug the server removed.
type DeleteSucceeded struct{ ID string }

// Failed reports any remote call failure with its user-facing message.
type Failed struct{ Message string }

// EditStarted selects a bug for editing.
type EditStarted struct{ Bug domain.Bug }

// EditCancelled returns the form to create mode.
type EditCancelled struct{}

// NoticeDismissed clears the notification.
type NoticeDismissed struct{}

// ErrorDismissed clears a failure that happened after the list was loaded.
type ErrorDismissed struct{}

func (FetchSucceeded) isEvent()  {}
func (CreateSucceeded) isEvent() {}
func (UpdateSucceeded) isEvent() {}
func (DeleteSucceeded) isEvent() {}
func (Failed) isEvent()          {}
func (EditStarted) isEvent()     {}
func (EditCancelled) isEvent()   {}
func (NoticeDismissed) isEvent() {}
func (ErrorDismissed) isEvent()  {}

// Reduce returns the state that follows s after ev. It never mutates s.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case FetchSucceeded:
		s.Bugs = clone(ev.Bugs)
		s.Loading = false
		s.Loaded = true
		s.Err = ""

	case CreateSucceeded:
		bugs := make([]domain.Bug, 0, len(s.Bugs)+1)
		bugs = append(bugs, ev.Bug)
		s.Bugs = append(bugs, s.Bugs...)
		s.Editing = nil
		s.Notice = NoticeCreated

	case UpdateSucceeded:
		bugs := clone(s.Bugs)
		for i := range bugs {
			if bugs[i].ID == ev.Bug.ID {
				bugs[i] = ev.Bug
			}
		}
		s.Bugs = bugs
		s.Editing = nil
		s.Notice = NoticeUpdated

	case DeleteSucceeded:
		bugs := make([]domain.Bug, 0, len(s.Bugs))
		for _, b := range s.Bugs {
			if b.ID != ev.ID {
				bugs = append(bugs, b)
			}
		}
		s.Bugs = bugs
		if s.Editing != nil && s.Editing.ID == ev.ID {
			s.Editing = nil
		}
		s.Notice = NoticeDeleted

	case Failed:
		s.Err = ev.Message
		s.Loading = false

	case EditStarted:
		bug := ev.Bug
		s.Editing = &bug

	case EditCancelled:
		s.Editing = nil

	case NoticeDismissed:
		s.Notice = ""

	case ErrorDismissed:
		if !s.Fatal() {
			s.Err = ""
		}
	}
	return s
}

func clone(bugs []domain.Bug) []domain.Bug {
	out := make([]domain.Bug, len(bugs))
	copy(out, bugs)
	return out
}
