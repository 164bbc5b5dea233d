// ABOUTME: Main menu for the storefront TUI
// ABOUTME: Offers shopping actions when logged in and account actions when not

package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront-cli/internal/tui/icons"
	"github.com/markalston/storefront-cli/internal/tui/styles"
)

// Action is a menu entry the user can pick
type Action int

const (
	ActionProducts Action = iota
	ActionCart
	ActionCompletePayment
	ActionLogin
	ActionSignup
	ActionLogout
	ActionQuit
)

// SelectedMsg is sent when the user picks an entry
type SelectedMsg struct {
	Action Action
}

type option struct {
	label  string
	icon   icons.Icon
	action Action
}

// Menu is the main menu model
type Menu struct {
	options []option
	cursor  int
}

// New builds the menu for the current login state
func New(loggedIn bool) *Menu {
	m := &Menu{}
	m.options = append(m.options, option{"Browse products", icons.Product, ActionProducts})
	if loggedIn {
		m.options = append(m.options,
			option{"My cart", icons.Cart, ActionCart},
			option{"Complete a payment", icons.Payment, ActionCompletePayment},
			option{"Log out", icons.Logout, ActionLogout},
		)
	} else {
		m.options = append(m.options,
			option{"Log in", icons.Login, ActionLogin},
			option{"Sign up", icons.User, ActionSignup},
		)
	}
	m.options = append(m.options, option{"Quit", icons.Quit, ActionQuit})
	return m
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		action := m.options[m.cursor].action
		return m, func() tea.Msg { return SelectedMsg{Action: action} }
	}
	return m, nil
}

// Selected returns the highlighted action
func (m *Menu) Selected() Action {
	return m.options[m.cursor].action
}

// View implements tea.Model
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Storefront"))
	sb.WriteString("\n")

	for i, opt := range m.options {
		line := opt.icon.String() + " " + opt.label
		if i == m.cursor {
			sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("> ") + styles.Selected.Render(line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	return styles.ActivePanel.Render(strings.TrimRight(sb.String(), "\n"))
}

// String returns the string representation of an Action
func (a Action) String() string {
	switch a {
	case ActionProducts:
		return "products"
	case ActionCart:
		return "cart"
	case ActionCompletePayment:
		return "complete-payment"
	case ActionLogin:
		return "login"
	case ActionSignup:
		return "signup"
	case ActionLogout:
		return "logout"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}
