package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// BugStatus represents the lifecycle state of a bug.
type BugStatus string

const (
	BugStatusOpen       BugStatus = "open"
	BugStatusInProgress BugStatus = "in-progress"
	BugStatusResolved   BugStatus = "resolved"
)

// BugStatuses lists the accepted statuses in display order.
var BugStatuses = []BugStatus{BugStatusOpen, BugStatusInProgress, BugStatusResolved}

// Valid reports whether s is one of the enumerated statuses.
func (s BugStatus) Valid() bool {
	switch s {
	case BugStatusOpen, BugStatusInProgress, BugStatusResolved:
		return true
	}
	return false
}

// UnmarshalJSON accepts any JSON value so that a non-string status is reported
// as an invalid value instead of an unreadable body.
func (s *BugStatus) UnmarshalJSON(data []byte) error {
	if v, ok := decodeEnum(data); ok {
		*s = BugStatus(v)
	}
	return nil
}

// BugPriority represents how urgently a bug should be addressed.
type BugPriority string

const (
	BugPriorityLow    BugPriority = "low"
	BugPriorityMedium BugPriority = "medium"
	BugPriorityHigh   BugPriority = "high"
)

// BugPriorities lists the accepted priorities in display order.
var BugPriorities = []BugPriority{BugPriorityLow, BugPriorityMedium, BugPriorityHigh}

// Valid reports whether p is one of the enumerated priorities.
func (p BugPriority) Valid() bool {
	switch p {
	case BugPriorityLow, BugPriorityMedium, BugPriorityHigh:
		return true
	}
	return false
}

// UnmarshalJSON accepts any JSON value so that a non-string priority is
// reported as an invalid value instead of an unreadable body.
func (p *BugPriority) UnmarshalJSON(data []byte) error {
	if v, ok := decodeEnum(data); ok {
		*p = BugPriority(v)
	}
	return nil
}

// decodeEnum returns the string held by a JSON enum field. Values that are not
// strings come back as their raw JSON text, which no enum accepts. null is
// reported as absent.
func decodeEnum(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", false
	}
	var v string
	if err := json.Unmarshal(data, &v); err == nil {
		return v, true
	}
	return string(data), true
}

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Bug is a persisted defect report. ID and CreatedAt are assigned by the store.
type Bug struct {
	ID          string      `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Status      BugStatus   `json:"status" db:"status"`
	Priority    BugPriority `json:"priority" db:"priority"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// BugInput is an unvalidated, client-supplied payload for creating or updating a bug.
// Empty Status or Priority means the field was not sent.
type BugInput struct {
	Title       string      `json:"title" validate:"notblank,max=100"`
	Description string      `json:"description" validate:"notblank,max=500"`
	Status      BugStatus   `json:"status,omitempty" validate:"omitempty,oneof=open in-progress resolved"`
	Priority    BugPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// NewBug builds an unsaved bug from input, applying the status and priority defaults.
func NewBug(in BugInput) Bug {
	b := Bug{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if b.Status == "" {
		b.Status = BugStatusOpen
	}
	if b.Priority == "" {
		b.Priority = BugPriorityMedium
	}
	return b
}

// Apply returns a copy of b with the input merged in. Title and description are
// always replaced; status and priority are kept when the input omits them.
// ID and CreatedAt are never touched.
func (b Bug) Apply(in BugInput) Bug {
	b.Title = in.Title
	b.Description = in.Description
	if in.Status != "" {
		b.Status = in.Status
	}
	if in.Priority != "" {
		b.Priority = in.Priority
	}
	return b
}

// Input converts a stored bug back into the payload that would reproduce it.
func (b Bug) Input() BugInput {
	return BugInput{
		Title:       b.Title,
		Description: b.Description,
		Status:      b.Status,
		Priority:    b.Priority,
	}
}
