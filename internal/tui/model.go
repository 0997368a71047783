// Package tui is the terminal front end of the tracker. It renders a
// tracker.State and turns key presses into synchronizer calls.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sumire/bugtracker/internal/domain"
	"github.com/sumire/bugtracker/internal/tracker"
)

// NoticeTimeout is how long a success notice stays on screen.
const NoticeTimeout = 6 * time.Second

// focusList follows the form fields in tab order.
const focusList = fieldCount

type noticeExpired struct{ seq int }

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	sync    *tracker.Syncer
	state   tracker.State
	form    form
	focus   int
	cursor  int
	spinner spinner.Model

	// noticeSeq identifies the notice the pending timer belongs to, so an
	// old timer never dismisses a newer notice.
	noticeSeq int
}

// NewModel creates the root model. Remote calls run with ctx.
func NewModel(ctx context.Context, sync *tracker.Syncer) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = focusedStyle

	return &Model{
		ctx:     ctx,
		sync:    sync,
		state:   tracker.New(),
		form:    newForm(),
		spinner: s,
	}
}

// State returns the current view state.
func (m *Model) State() tracker.State {
	return m.state
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m *Model) fetch() tea.Cmd {
	return func() tea.Msg {
		return m.sync.Fetch(m.ctx)
	}
}

func (m *Model) submit() tea.Cmd {
	editing := m.state.Editing
	in := m.form.input()
	return func() tea.Msg {
		return m.sync.Submit(m.ctx, editing, in)
	}
}

func (m *Model) remove(id string) tea.Cmd {
	return func() tea.Msg {
		return m.sync.Remove(m.ctx, id)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tracker.Event:
		return m, m.apply(msg)

	case noticeExpired:
		if msg.seq == m.noticeSeq && m.state.Notice != "" {
			return m, m.apply(tracker.NoticeDismissed{})
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.form.update(msg)
}

// apply reduces ev into the state and runs the view-side effects it implies.
func (m *Model) apply(ev tracker.Event) tea.Cmd {
	prev := m.state
	m.state = tracker.Reduce(m.state, ev)

	var cmds []tea.Cmd
	switch ev.(type) {
	case tracker.CreateSucceeded, tracker.UpdateSucceeded, tracker.EditCancelled:
		cmds = append(cmds, m.form.reset())
		m.focus = fieldTitle
	case tracker.EditStarted:
		cmds = append(cmds, m.form.load(*m.state.Editing))
		m.focus = fieldTitle
	case tracker.DeleteSucceeded:
		if prev.Editing != nil && m.state.Editing == nil {
			cmds = append(cmds, m.form.reset())
		}
	}

	if m.cursor >= len(m.state.Bugs) {
		m.cursor = max(len(m.state.Bugs)-1, 0)
	}

	if m.state.Notice != "" && isSuccess(ev) {
		m.noticeSeq++
		seq := m.noticeSeq
		cmds = append(cmds, tea.Tick(NoticeTimeout, func(time.Time) tea.Msg {
			return noticeExpired{seq: seq}
		}))
	}
	return tea.Batch(cmds...)
}

func isSuccess(ev tracker.Event) bool {
	switch ev.(type) {
	case tracker.CreateSucceeded, tracker.UpdateSucceeded, tracker.DeleteSucceeded:
		return true
	}
	return false
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	if m.state.Fatal() {
		if key == "q" || key == "esc" {
			return tea.Quit
		}
		return nil
	}
	if m.state.Err != "" {
		switch key {
		case "esc", "enter":
			return m.apply(tracker.ErrorDismissed{})
		case "q":
			return tea.Quit
		}
		return nil
	}
	if m.state.Loading {
		return nil
	}

	if m.focus == focusList {
		return m.handleListKey(key)
	}
	return m.handleFormKey(msg)
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return m.setFocus(m.focus + 1)
	case "shift+tab", "up":
		return m.setFocus(m.focus - 1)
	case "esc":
		if m.state.Editing != nil {
			return m.apply(tracker.EditCancelled{})
		}
		return m.setFocus(focusList)
	case "enter":
		if m.focus == fieldSubmit {
			return m.submit()
		}
		return m.setFocus(m.focus + 1)
	case "left", "h":
		if m.form.focus == fieldStatus || m.form.focus == fieldPriority {
			m.form.cycle(-1)
			return nil
		}
	case "right", "l", " ":
		if m.form.focus == fieldStatus || m.form.focus == fieldPriority {
			m.form.cycle(1)
			return nil
		}
	case "ctrl+s":
		return m.submit()
	}
	return m.form.update(msg)
}

func (m *Model) handleListKey(key string) tea.Cmd {
	switch key {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Bugs)-1 {
			m.cursor++
		}
	case "tab", "n":
		if key == "n" && m.state.Editing != nil {
			return m.apply(tracker.EditCancelled{})
		}
		return m.setFocus(fieldTitle)
	case "shift+tab":
		return m.setFocus(fieldSubmit)
	case "esc":
		if m.state.Editing != nil {
			return m.apply(tracker.EditCancelled{})
		}
	case "e", "enter":
		if bug, ok := m.selected(); ok {
			return m.apply(tracker.EditStarted{Bug: bug})
		}
	case "d":
		if bug, ok := m.selected(); ok {
			return m.remove(bug.ID)
		}
	}
	return nil
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = wrap(i, fieldCount+1)
	if m.focus == focusList {
		m.form.blur()
		return nil
	}
	return m.form.setFocus(m.focus)
}

func (m *Model) selected() (domain.Bug, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Bugs) {
		return domain.Bug{}, false
	}
	return m.state.Bugs[m.cursor], true
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Bug Tracker") + "\n\n")

	switch {
	case m.state.Loading:
		fmt.Fprintf(&b, "%s Loading bugs...\n", m.spinner.View())
		return b.String()
	case m.state.Err != "":
		b.WriteString(errorStyle.Render("Error: "+m.state.Err) + "\n\n")
		if m.state.Fatal() {
			b.WriteString(helpStyle.Render("q: quit") + "\n")
		} else {
			b.WriteString(helpStyle.Render("esc: dismiss • q: quit") + "\n")
		}
		return b.String()
	}

	if m.state.Notice != "" {
		b.WriteString(noticeStyle.Render(m.state.Notice) + "\n\n")
	}

	b.WriteString(panelStyle.Render(m.form.view(m.state.Editing != nil, m.focus != focusList)) + "\n\n")
	b.WriteString(m.listView() + "\n\n")
	b.WriteString(helpStyle.Render(m.help()) + "\n")
	return b.String()
}

func (m *Model) listView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Bugs (%d)", len(m.state.Bugs))) + "\n")

	if len(m.state.Bugs) == 0 {
		b.WriteString(blurredStyle.Render("No bugs reported yet."))
		return b.String()
	}

	for i, bug := range m.state.Bugs {
		pointer := "  "
		title := bug.Title
		if m.focus == focusList && i == m.cursor {
			pointer = focusedStyle.Render("> ")
			title = focusedStyle.Render(title)
		}
		if m.state.Editing != nil && m.state.Editing.ID == bug.ID {
			title += blurredStyle.Render(" (editing)")
		}
		fmt.Fprintf(&b, "\n%s%s %s %s  %s\n", pointer,
			badge(statusStyles, string(bug.Status)),
			badge(priorityStyles, string(bug.Priority)),
			title,
			blurredStyle.Render(bug.CreatedAt.Local().Format("2006-01-02 15:04")))
		fmt.Fprintf(&b, "    %s\n", blurredStyle.Render(bug.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) help() string {
	if m.focus == focusList {
		return "↑/↓: select • e: edit • d: delete • tab: form • q: quit"
	}
	if m.state.Editing != nil {
		return "tab: next field • ←/→: change • enter: update • esc: cancel edit"
	}
	return "tab: next field • ←/→: change • enter: create • esc: list"
}
