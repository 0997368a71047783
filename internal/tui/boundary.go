package tui

import (
	"fmt"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Panic is the fault captured by a Boundary.
type Panic struct {
	Value any
	Stack []byte
}

func (p *Panic) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Fallback renders the screen shown after the wrapped model panics.
type Fallback func(fault any) string

// Boundary wraps a model and contains panics raised by its Update or View.
// Once a fault is captured only the fallback is rendered, until the user
// resets the boundary with "r", which builds a fresh model.
type Boundary struct {
	build    func() tea.Model
	inner    tea.Model
	fallback Fallback
	fault    *Panic
}

// NewBoundary creates a Boundary around the model returned by build.
func NewBoundary(build func() tea.Model, fallback Fallback) *Boundary {
	if fallback == nil {
		fallback = DefaultFallback(false)
	}
	return &Boundary{
		build:    build,
		inner:    build(),
		fallback: fallback,
	}
}

// Fault returns the captured panic, or nil.
func (b *Boundary) Fault() *Panic {
	return b.fault
}

func (b *Boundary) Init() tea.Cmd {
	return b.guard(b.inner.Init)
}

func (b *Boundary) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if b.fault != nil {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "r":
				return b, b.reset()
			case "q", "ctrl+c", "esc":
				return b, tea.Quit
			}
		}
		return b, nil
	}

	return b, b.guard(func() tea.Cmd {
		next, cmd := b.inner.Update(msg)
		b.inner = next
		return cmd
	})
}

func (b *Boundary) View() string {
	if b.fault == nil {
		view, ok := b.render()
		if ok {
			return view
		}
	}
	return b.fallback(b.fault)
}

func (b *Boundary) reset() tea.Cmd {
	b.fault = nil
	b.inner = b.build()
	return b.guard(b.inner.Init)
}

func (b *Boundary) guard(fn func() tea.Cmd) (cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			b.fault = &Panic{Value: r, Stack: debug.Stack()}
			cmd = nil
		}
	}()
	return fn()
}

func (b *Boundary) render() (view string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.fault = &Panic{Value: r, Stack: debug.Stack()}
			view, ok = "", false
		}
	}()
	return b.inner.View(), true
}

// DefaultFallback returns the standard fallback screen. With verbose set the
// fault and, for a captured panic, its stack are included.
func DefaultFallback(verbose bool) Fallback {
	return func(fault any) string {
		var s strings.Builder
		s.WriteString(errorStyle.Render("Something went wrong") + "\n\n")
		s.WriteString("We're sorry for the inconvenience. Press r to try again.\n")
		if verbose {
			fmt.Fprintf(&s, "\n%v\n", fault)
			if p, ok := fault.(*Panic); ok {
				s.WriteString("\n" + blurredStyle.Render(string(p.Stack)) + "\n")
			}
		}
		s.WriteString("\n" + helpStyle.Render("r: try again • q: quit") + "\n")
		return s.String()
	}
}
