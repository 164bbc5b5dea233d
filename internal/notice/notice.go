// ABOUTME: Transient user-visible notices (the CLI/TUI equivalent of toasts)
// ABOUTME: Decouples cart and checkout logic from how messages are displayed

package notice

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a notice
type Level int

const (
	Info Level = iota
	Success
	Error
)

// String returns the string representation of a Level
func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier shows a short-lived message to the user
type Notifier interface {
	Notify(level Level, msg string)
}

// Func adapts a function to the Notifier interface
type Func func(level Level, msg string)

// Notify calls f(level, msg)
func (f Func) Notify(level Level, msg string) { f(level, msg) }

// Discard drops every notice
var Discard Notifier = Func(func(Level, string) {})

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
)

// Writer prints notices as single styled lines
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a notifier writing to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify writes the notice with a level marker
func (n *Writer) Notify(level Level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, Render(level, msg))
}

// Render formats a notice for terminal display
func Render(level Level, msg string) string {
	switch level {
	case Success:
		return successStyle.Render("✓ " + msg)
	case Error:
		return errorStyle.Render("✗ " + msg)
	default:
		return infoStyle.Render("ℹ " + msg)
	}
}

// Entry is one recorded notice
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps every notice in memory
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Notify records the notice
func (r *Recorder) Notify(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
}

// Entries returns a copy of the recorded notices
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many notices with the given message were recorded
func (r *Recorder) Count(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Message == msg {
			n++
		}
	}
	return n
}
