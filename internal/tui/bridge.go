// ABOUTME: Connects background storefront calls to the running TUI program
// ABOUTME: Delivers notices, confirmation prompts and session expiry as messages

package tui

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/storefront-cli/internal/notice"
)

// noticeMsg shows a transient notice in the footer
type noticeMsg struct {
	level notice.Level
	text  string
}

// confirmRequestMsg asks the user a yes/no question; the answer goes to reply
type confirmRequestMsg struct {
	prompt string
	reply  chan<- bool
}

// sessionExpiredMsg sends the user back to the login screen
type sessionExpiredMsg struct{}

// Bridge is the notifier, confirmer and login redirect handed to the client
// and cart controllers. It must only be called from tea.Cmd goroutines:
// calling it from Update would block the event loop it is sending to.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge creates a bridge that drops messages until a program is attached
func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) post(msg tea.Msg) bool {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		slog.Debug("Dropping TUI message, no program attached", "msg", msg)
		return false
	}
	send(msg)
	return true
}

// Notify implements notice.Notifier
func (b *Bridge) Notify(level notice.Level, msg string) {
	b.post(noticeMsg{level: level, text: msg})
}

// LoginRedirect is the client's login redirect
func (b *Bridge) LoginRedirect() {
	b.post(sessionExpiredMsg{})
}

// Confirm implements cart.Confirmer with a modal prompt
func (b *Bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	reply := make(chan bool, 1)
	if !b.post(confirmRequestMsg{prompt: prompt, reply: reply}) {
		return false, nil
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
