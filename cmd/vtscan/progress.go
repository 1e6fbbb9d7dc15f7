package main

import (
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// spinnerModel animates a status line while a scan runs in the background.
// The scan itself runs outside the program; the model polls a completion
// flag on every spinner tick so the task executes exactly once no matter
// how the program ends.
type spinnerModel struct {
	spinner     spinner.Model
	message     string
	done        *atomic.Bool
	interrupted bool
	quitting    bool
}

func newSpinnerModel(message string, done *atomic.Bool) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	return spinnerModel{spinner: s, message: message, done: done}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.interrupted = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done.Load() {
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.quitting {
		// An empty final frame clears the status line.
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

// withSpinner runs fn while a spinner animates, returning fn's value and
// whether it ran to completion. Without a TTY the task runs plainly with no
// status line. completed is false only when the user interrupted the wait;
// the process is expected to exit shortly after.
func withSpinner[T any](message string, fn func() T) (value T, completed bool) {
	if !isTTY() {
		return fn(), true
	}

	var done atomic.Bool
	resultCh := make(chan T, 1)
	go func() {
		resultCh <- fn()
		done.Store(true)
	}()

	final, err := tea.NewProgram(newSpinnerModel(message, &done)).Run()
	if err == nil {
		if m, ok := final.(spinnerModel); ok && m.interrupted {
			var zero T
			return zero, false
		}
	}
	// A broken terminal just loses the animation, never the scan.
	return <-resultCh, true
}
