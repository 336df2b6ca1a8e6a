package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	screenStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1).
			Width(Width + 2)

	rumbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
)

// ConsoleSink is a hardware.Feedback that draws the controller screen in the
// terminal. Print and Rumble only record; Flush draws.
type ConsoleSink struct {
	mu     sync.Mutex
	w      io.Writer
	lines  Lines
	rumble string
	dirty  bool
}

// NewConsoleSink draws to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Connected implements hardware.Feedback.
func (s *ConsoleSink) Connected() bool { return s.w != nil }

// Print implements hardware.Feedback.
func (s *ConsoleSink) Print(line int, text string) {
	if line < 0 || line >= len(s.lines) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	text = fit(text)
	if s.lines[line] != text {
		s.lines[line] = text
		s.dirty = true
	}
}

// Rumble implements hardware.Feedback.
func (s *ConsoleSink) Rumble(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rumble = pattern
	s.dirty = true
}

// Lines returns what is on screen.
func (s *ConsoleSink) Lines() Lines {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines
}

// View renders the screen box with the last rumble pattern under it.
func (s *ConsoleSink) View() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *ConsoleSink) view() string {
	box := screenStyle.Render(strings.Join(s.lines[:], "\n"))
	if s.rumble == "" {
		return box
	}
	return box + "\n" + rumbleStyle.Render("rumble "+s.rumble)
}

// Flush draws the screen if anything changed since the last Flush.
func (s *ConsoleSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.w == nil {
		return nil
	}
	s.dirty = false
	out := s.view()
	s.rumble = ""
	if _, err := fmt.Fprintln(s.w, out); err != nil {
		return fmt.Errorf("draw controller screen: %w", err)
	}
	return nil
}
