// ABOUTME: Tests for the main menu
// ABOUTME: Validates entries per login state and keyboard selection

package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func actions(m *Menu) []Action {
	var out []Action
	for _, o := range m.options {
		out = append(out, o.action)
	}
	return out
}

func TestMenuLoggedOut(t *testing.T) {
	m := New(false)

	got := actions(m)
	want := []Action{ActionProducts, ActionLogin, ActionSignup, ActionQuit}
	if len(got) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestMenuLoggedIn(t *testing.T) {
	m := New(true)

	for _, a := range actions(m) {
		if a == ActionLogin || a == ActionSignup {
			t.Errorf("logged-in menu should not offer %s", a)
		}
	}
	if m.options[1].action != ActionCart {
		t.Errorf("expected cart as second option, got %s", m.options[1].action)
	}
}

func TestMenuNavigationAndSelect(t *testing.T) {
	m := New(true)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Selected() != ActionCart {
		t.Fatalf("expected cart selected, got %s", m.Selected())
	}

	// Cursor stops at the top
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Selected() != ActionProducts {
		t.Fatalf("expected products selected, got %s", m.Selected())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on enter")
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok || msg.Action != ActionProducts {
		t.Errorf("expected SelectedMsg for products, got %#v", msg)
	}
}

func TestMenuView(t *testing.T) {
	view := New(false).View()
	for _, label := range []string{"Browse products", "Log in", "Sign up", "Quit"} {
		if !strings.Contains(view, label) {
			t.Errorf("expected view to contain %q", label)
		}
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{ActionProducts, "products"},
		{ActionCart, "cart"},
		{ActionCompletePayment, "complete-payment"},
		{ActionLogout, "logout"},
		{Action(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.action.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
