package repository

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sumire/bugtracker/internal/domain"
)

// conform applies the document defaults and enforces the stored schema.
// Every store runs it before a write, whatever the handler layer already checked.
func conform(b *domain.Bug) error {
	if b.Status == "" {
		b.Status = domain.BugStatusOpen
	}
	if b.Priority == "" {
		b.Priority = domain.BugPriorityMedium
	}

	fields := make(map[string]string)
	checkText(fields, "title", b.Title, domain.MaxTitleLength)
	checkText(fields, "description", b.Description, domain.MaxDescriptionLength)
	if !b.Status.Valid() {
		fields["status"] = fmt.Sprintf("`%s` is not a valid status", b.Status)
	}
	if !b.Priority.Valid() {
		fields["priority"] = fmt.Sprintf("`%s` is not a valid priority", b.Priority)
	}

	if len(fields) > 0 {
		return &domain.SchemaError{Fields: fields}
	}
	return nil
}

func checkText(fields map[string]string, name, value string, limit int) {
	switch {
	case strings.TrimSpace(value) == "":
		fields[name] = name + " is required"
	case utf8.RuneCountInString(value) > limit:
		fields[name] = fmt.Sprintf("%s is longer than the maximum allowed length (%d)", name, limit)
	}
}

// constraintField maps a "bugs_<column>_check" constraint name to its column.
func constraintField(constraint string) string {
	field := strings.TrimSuffix(strings.TrimPrefix(constraint, "bugs_"), "_check")
	if field == "" {
		return "document"
	}
	return field
}
