// ABOUTME: Account and payment-return forms as bubbletea models
// ABOUTME: Uses huh forms with visual progress indicator for step navigation

package wizard

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/tui/icons"
	"github.com/markalston/storefront-cli/internal/tui/styles"
)

// Kind is which form the wizard collects
type Kind int

const (
	KindLogin Kind = iota
	KindSignup
	KindReturn
)

// SubmittedMsg is sent when the wizard finishes successfully. Only the
// field matching Kind is set.
type SubmittedMsg struct {
	Kind      Kind
	Login     client.LoginRequest
	Signup    client.SignupRequest
	ReturnURL string
}

// CancelledMsg is sent when the wizard is cancelled
type CancelledMsg struct {
	Kind Kind
}

// Wizard manages a login, signup or payment-return form as a bubbletea model
type Wizard struct {
	kind  Kind
	steps []string
	form  *huh.Form
	step  int
	width int

	// Form field values
	fullName  string
	email     string
	password  string
	phone     string
	returnURL string
}

// NewLogin creates a login form, pre-filled with email when known
func NewLogin(email string) *Wizard {
	w := &Wizard{kind: KindLogin, steps: []string{"Log in"}, step: 1, email: email}
	w.form = w.createLoginForm()
	return w
}

// NewSignup creates the two-step signup flow
func NewSignup() *Wizard {
	w := &Wizard{kind: KindSignup, steps: []string{"Account", "Contact"}, step: 1}
	w.form = w.createAccountForm()
	return w
}

// NewReturn asks for the URL the payment page redirected to
func NewReturn() *Wizard {
	w := &Wizard{kind: KindReturn, steps: []string{"Payment return"}, step: 1}
	w.form = w.createReturnForm()
	return w
}

// Kind reports which form this is
func (w *Wizard) Kind() Kind {
	return w.kind
}

// createTheme returns the huh theme shared by every storefront form
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Cyan accents on slate, same as the rest of the storefront UI
	cyan := lipgloss.Color("#06B6D4")    // Cyan-500 - primary
	cyanLight := lipgloss.Color("#22D3EE") // Cyan-400 - accents
	blue := lipgloss.Color("#3B82F6")    // Blue-500 - info
	gray := lipgloss.Color("#9CA3AF")    // Gray-400 - muted
	grayLight := lipgloss.Color("#E5E7EB") // Gray-200 - text
	red := lipgloss.Color("#F87171")     // Red-400 - errors
	slate := lipgloss.Color("#334155")   // Slate-700 - borders

	// Group styles (section headers)
	t.Group.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	// Focused field styles
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(cyan)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(cyanLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	// Select field styles
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(cyan).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true)
	t.Focused.NextIndicator = lipgloss.NewStyle().
		Foreground(cyan).
		MarginLeft(1).
		SetString("→")
	t.Focused.PrevIndicator = lipgloss.NewStyle().
		Foreground(cyan).
		MarginRight(1).
		SetString("←")

	// Text input styles
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	// Button styles
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(blue).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	// Blurred field styles (inherit from focused with muted colors)
	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

func (w *Wizard) createLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&w.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&w.password).
				Validate(validateRequired("password")),
		).Title("Log in").
			Description("Sign in to manage your cart"),
	).WithTheme(createTheme())
}

func (w *Wizard) createAccountForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Value(&w.fullName).
				Validate(validateRequired("full name")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&w.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&w.password).
				Validate(validateRequired("password")),
		).Title("Step 1: Account").
			Description("Choose how you will sign in"),
	).WithTheme(createTheme())
}

func (w *Wizard) createContactForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Phone number").
				Description("Optional. Press Enter to skip").
				CharLimit(20).
				Value(&w.phone),
		).Title("Step 2: Contact").
			Description("How the store can reach you about orders"),
	).WithTheme(createTheme())
}

func (w *Wizard) createReturnForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Return URL").
				Description("Paste the address the payment page sent you back to").
				Placeholder("https://shop.example.com/payment/success?session_id=...").
				Value(&w.returnURL).
				Validate(validateReturnURL),
		).Title("Complete a payment"),
	).WithTheme(createTheme())
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.form.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		form, cmd := w.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			w.form = f
		}
		return w, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			kind := w.kind
			return w, func() tea.Msg { return CancelledMsg{Kind: kind} }
		}
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	if w.form.State == huh.StateCompleted {
		return w.advanceStep()
	}

	return w, cmd
}

func (w *Wizard) advanceStep() (tea.Model, tea.Cmd) {
	if w.kind == KindSignup && w.step == 1 {
		w.step = 2
		w.form = w.createContactForm()
		return w, w.form.Init()
	}

	msg := w.result()
	return w, func() tea.Msg { return msg }
}

// result builds the submission from the collected values
func (w *Wizard) result() SubmittedMsg {
	out := SubmittedMsg{Kind: w.kind}
	switch w.kind {
	case KindLogin:
		out.Login = client.LoginRequest{Email: strings.TrimSpace(w.email), Password: w.password}
	case KindSignup:
		out.Signup = client.SignupRequest{
			FullName: strings.TrimSpace(w.fullName),
			Email:    strings.TrimSpace(w.email),
			Password: w.password,
			PhoneNo:  strings.TrimSpace(w.phone),
		}
	case KindReturn:
		out.ReturnURL = strings.TrimSpace(w.returnURL)
	}
	return out
}

// SetWidth sets the wizard width for proper rendering
func (w *Wizard) SetWidth(width int) {
	w.width = width
}

// View implements tea.Model
func (w *Wizard) View() string {
	var sb strings.Builder

	if len(w.steps) > 1 {
		sb.WriteString(w.renderProgress())
		sb.WriteString("\n\n")
	}
	sb.WriteString(w.form.View())

	return sb.String()
}

// renderProgress renders the step progress indicator
func (w *Wizard) renderProgress() string {
	width := w.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range w.steps {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	stepsLine := strings.Join(steps, "    ")

	// Progress bar line format: "│  " + bar + " │" = 5 chars overhead
	barWidth := width - 5
	filledWidth := (w.step * barWidth) / len(w.steps)
	emptyWidth := barWidth - filledWidth

	filledBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth))
	emptyBar := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", emptyWidth))

	styledTitle := titleStyle.Render("Progress")
	titleWidth := lipgloss.Width("Progress")

	// Top border: "┌─ " + title + " " + fill + "┐"
	topBorder := "┌─ " + styledTitle + " " + strings.Repeat("─", max(0, width-5-titleWidth)) + "┐"

	// Steps line: "│ " + content + padding + " │" = 4 chars overhead
	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │"

	progressLinePadded := "│  " + filledBar + emptyBar + " │"
	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLinePadded,
		bottomBorder,
	}, "\n"))
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("enter a valid email address")
	}
	return nil
}

func validateReturnURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("paste the full URL, including https://")
	}
	return nil
}
