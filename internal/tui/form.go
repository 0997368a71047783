package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sumire/bugtracker/internal/domain"
)

// Form field positions, in tab order.
const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldSubmit
	fieldCount
)

// form edits a candidate record. Text fields use inputs; the enums cycle
// through their allowed values.
type form struct {
	title       textinput.Model
	description textinput.Model
	status      int
	priority    int
	focus       int
}

func newForm() form {
	title := textinput.New()
	title.Placeholder = "Short summary"
	title.CharLimit = domain.MaxTitleLength
	title.Width = 60
	title.Cursor.Style = focusedStyle

	description := textinput.New()
	description.Placeholder = "What happened, and how to reproduce it"
	description.CharLimit = domain.MaxDescriptionLength
	description.Width = 60
	description.Cursor.Style = focusedStyle

	f := form{
		title:       title,
		description: description,
		status:      indexOf(domain.BugStatuses, domain.BugStatusOpen),
		priority:    indexOf(domain.BugPriorities, domain.BugPriorityMedium),
	}
	f.setFocus(fieldTitle)
	return f
}

// load fills the form with an existing bug's values.
func (f *form) load(b domain.Bug) tea.Cmd {
	f.title.SetValue(b.Title)
	f.description.SetValue(b.Description)
	if i := indexOf(domain.BugStatuses, b.Status); i >= 0 {
		f.status = i
	}
	if i := indexOf(domain.BugPriorities, b.Priority); i >= 0 {
		f.priority = i
	}
	return f.setFocus(fieldTitle)
}

func (f *form) reset() tea.Cmd {
	*f = newForm()
	return textinput.Blink
}

func (f *form) input() domain.BugInput {
	return domain.BugInput{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Status:      domain.BugStatuses[f.status],
		Priority:    domain.BugPriorities[f.priority],
	}
}

func (f *form) setFocus(i int) tea.Cmd {
	f.focus = i
	f.title.Blur()
	f.description.Blur()
	f.title.PromptStyle, f.title.TextStyle = noStyle, noStyle
	f.description.PromptStyle, f.description.TextStyle = noStyle, noStyle

	switch i {
	case fieldTitle:
		f.title.PromptStyle, f.title.TextStyle = focusedStyle, focusedStyle
		return f.title.Focus()
	case fieldDescription:
		f.description.PromptStyle, f.description.TextStyle = focusedStyle, focusedStyle
		return f.description.Focus()
	}
	return nil
}

func (f *form) blur() {
	f.setFocus(-1)
}

// cycle moves the selection of the focused enum field by delta.
func (f *form) cycle(delta int) {
	switch f.focus {
	case fieldStatus:
		f.status = wrap(f.status+delta, len(domain.BugStatuses))
	case fieldPriority:
		f.priority = wrap(f.priority+delta, len(domain.BugPriorities))
	}
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmds [2]tea.Cmd
	f.title, cmds[0] = f.title.Update(msg)
	f.description, cmds[1] = f.description.Update(msg)
	return tea.Batch(cmds[:]...)
}

func (f *form) view(editing bool, focused bool) string {
	label := func(i int, s string) string {
		if focused && f.focus == i {
			return focusedStyle.Render(s)
		}
		return blurredStyle.Render(s)
	}
	selector := func(i int, value string) string {
		if focused && f.focus == i {
			return focusedStyle.Render("< " + value + " >")
		}
		return "  " + value
	}

	heading := "New bug"
	button := "Create"
	if editing {
		heading = "Edit bug"
		button = "Update"
	}
	if focused && f.focus == fieldSubmit {
		button = focusedStyle.Render("[ " + button + " ]")
	} else {
		button = fmt.Sprintf("[ %s ]", blurredStyle.Render(button))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(heading) + "\n\n")
	fmt.Fprintf(&b, "%s\n%s\n\n", label(fieldTitle, "Title"), f.title.View())
	fmt.Fprintf(&b, "%s\n%s\n\n", label(fieldDescription, "Description"), f.description.View())
	fmt.Fprintf(&b, "%s %s\n", label(fieldStatus, "Status:  "), selector(fieldStatus, string(domain.BugStatuses[f.status])))
	fmt.Fprintf(&b, "%s %s\n\n", label(fieldPriority, "Priority:"), selector(fieldPriority, string(domain.BugPriorities[f.priority])))
	b.WriteString(button)
	return b.String()
}

func indexOf[T comparable](values []T, v T) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
