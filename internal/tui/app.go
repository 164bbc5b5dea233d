// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes keyboard input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront-cli/internal/account"
	"github.com/markalston/storefront-cli/internal/cart"
	"github.com/markalston/storefront-cli/internal/catalog"
	"github.com/markalston/storefront-cli/internal/checkout"
	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/notice"
	"github.com/markalston/storefront-cli/internal/session"
	"github.com/markalston/storefront-cli/internal/tui/cartview"
	"github.com/markalston/storefront-cli/internal/tui/catalogview"
	"github.com/markalston/storefront-cli/internal/tui/icons"
	"github.com/markalston/storefront-cli/internal/tui/menu"
	"github.com/markalston/storefront-cli/internal/tui/styles"
	"github.com/markalston/storefront-cli/internal/tui/widgets"
	"github.com/markalston/storefront-cli/internal/tui/wizard"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenProducts
	ScreenCart
	ScreenWizard
	ScreenReceipt
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	noticeTTL        = 4 * time.Second
)

// cartDoneMsg is sent when a cart controller call returns
type cartDoneMsg struct {
	op   cart.Op
	ctrl *cart.Controller
	err  error
}

// productsLoadedMsg is sent when a catalog page is loaded
type productsLoadedMsg struct {
	page *client.ProductPage
	num  int
	err  error
}

// categoriesLoadedMsg is sent when category names are loaded
type categoriesLoadedMsg struct {
	cats []client.Category
}

// authDoneMsg is sent when a login or signup call returns
type authDoneMsg struct {
	kind wizard.Kind
	err  error
}

// loggedOutMsg is sent when the session has been cleared
type loggedOutMsg struct{}

// checkoutStartedMsg is sent when the payment page was created
type checkoutStartedMsg struct {
	sess *client.CheckoutSession
	err  error
}

// paymentDoneMsg is sent when a payment completion returns
type paymentDoneMsg struct {
	summary *client.PaymentSummary
	err     error
}

// cancelDoneMsg is sent after a cancelled payment was reported
type cancelDoneMsg struct{}

// noticeExpiredMsg hides the notice with the given id
type noticeExpiredMsg struct {
	id int
}

// Deps are the services the TUI drives
type Deps struct {
	Client    *client.Client
	Store     *session.Store
	Catalog   *catalog.Browser
	Bridge    *Bridge
	Navigator checkout.Navigator // defaults to opening the system browser
}

// App is the root model for the TUI
type App struct {
	deps    Deps
	account *account.Service
	ctx     context.Context
	cancel  context.CancelFunc

	screen     Screen
	width      int
	height     int
	lastUpdate time.Time
	lastEmail  string

	// Per-session state, replaced on login and dropped on logout or expiry
	ctrl    *cart.Controller
	handoff *checkout.Handoff

	// Child models
	menu         *menu.Menu
	wizardScreen *wizard.Wizard
	cartView     *cartview.View
	catalogView  *catalogview.View
	spinner      spinner.Model

	inflight   int
	confirm    *confirmRequestMsg
	notice     *noticeMsg
	noticeID   int
	paymentURL string
	receipt    *client.PaymentSummary
}

// New creates a new TUI application
func New(deps Deps) *App {
	if deps.Bridge == nil {
		deps.Bridge = NewBridge()
	}
	if deps.Navigator == nil {
		deps.Navigator = checkout.BrowserNavigator{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		deps:    deps,
		account: account.New(deps.Client, deps.Store, deps.Bridge),
		ctx:     ctx,
		cancel:  cancel,
		screen:  ScreenMenu,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
	}
	if a.loggedIn() {
		a.startSession()
	}
	a.menu = menu.New(a.loggedIn())
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.ctrl != nil {
		// Warm the cart so the header count is right from the start
		return a.cartOp(cart.OpFetch, func(ctx context.Context, c *cart.Controller) error {
			return c.FetchCart(ctx)
		})
	}
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.cartView != nil {
			a.cartView.SetSize(a.mainWidth(), a.contentHeight())
		}
		if a.catalogView != nil {
			a.catalogView.SetWidth(a.sideWidth())
		}
		if a.wizardScreen != nil {
			return a.updateWizard(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}
		if a.confirm != nil {
			return a.updateConfirm(msg)
		}

		switch a.screen {
		case ScreenMenu:
			return a.updateMenu(msg)
		case ScreenProducts:
			return a.updateProducts(msg)
		case ScreenCart:
			return a.updateCart(msg)
		case ScreenWizard:
			return a.updateWizard(msg)
		case ScreenReceipt:
			return a.updateReceipt(msg)
		}

	case spinner.TickMsg:
		if a.inflight == 0 {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case noticeMsg:
		a.notice = &msg
		a.noticeID++
		id := a.noticeID
		return a, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{id: id} })

	case noticeExpiredMsg:
		if msg.id == a.noticeID {
			a.notice = nil
		}
		return a, nil

	case confirmRequestMsg:
		a.answer(false)
		a.confirm = &msg
		return a, nil

	case sessionExpiredMsg:
		return a.handleSessionExpired()

	case menu.SelectedMsg:
		return a.handleMenuSelected(msg)

	case wizard.SubmittedMsg:
		return a.handleWizardSubmitted(msg)

	case wizard.CancelledMsg:
		a.wizardScreen = nil
		if msg.Kind == wizard.KindReturn && a.ctrl != nil {
			a.screen = ScreenCart
		} else {
			a.screen = ScreenMenu
		}
		return a, nil

	case cartDoneMsg:
		return a.handleCartDone(msg)

	case productsLoadedMsg:
		a.inflight--
		if msg.err != nil {
			a.showNotice(notice.Error, msg.err.Error())
			return a, nil
		}
		if a.catalogView == nil {
			a.catalogView = catalogview.New(a.sideWidth())
		}
		a.catalogView.SetPage(msg.page, msg.num)
		a.lastUpdate = time.Now()
		return a, nil

	case categoriesLoadedMsg:
		if a.catalogView != nil {
			a.catalogView.SetCategories(msg.cats)
		}
		return a, nil

	case authDoneMsg:
		return a.handleAuthDone(msg)

	case loggedOutMsg:
		a.inflight--
		a.endSession()
		a.menu = menu.New(false)
		a.screen = ScreenMenu
		return a, nil

	case checkoutStartedMsg:
		return a.handleCheckoutStarted(msg)

	case paymentDoneMsg:
		a.inflight--
		a.syncCart()
		if msg.err != nil {
			return a, nil
		}
		a.receipt = msg.summary
		a.paymentURL = ""
		a.screen = ScreenReceipt
		return a, nil

	case cancelDoneMsg:
		a.inflight--
		a.paymentURL = ""
		a.screen = ScreenCart
		return a, nil

	default:
		// Forward unknown messages to the wizard when active (needed for huh form internals)
		if a.screen == ScreenWizard && a.wizardScreen != nil {
			return a.updateWizard(msg)
		}
	}

	return a, nil
}

func (a *App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		a.answer(true)
	case "n", "N", "esc", "q":
		a.answer(false)
	}
	return a, nil
}

func (a *App) answer(ok bool) {
	if a.confirm == nil {
		return
	}
	a.confirm.reply <- ok
	a.confirm = nil
}

func (a *App) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return a, a.quit()
	}
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateProducts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.catalogView == nil {
		if msg.String() == "b" || msg.String() == "esc" {
			a.screen = ScreenMenu
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, a.quit()
	case "b", "esc":
		a.screen = ScreenMenu
	case "up", "k":
		a.catalogView.MoveUp()
	case "down", "j":
		a.catalogView.MoveDown()
	case "right", "n":
		if next := a.catalogView.NextPage(); next != 0 {
			return a, a.loadProducts(next)
		}
	case "left", "p":
		if prev := a.catalogView.PrevPage(); prev != 0 {
			return a, a.loadProducts(prev)
		}
	case "r":
		a.deps.Catalog.Refresh()
		return a, tea.Batch(a.loadProducts(a.catalogView.Page()), a.loadCategories())
	case "a", "enter":
		p, ok := a.catalogView.Selected()
		if !ok {
			return a, nil
		}
		if a.ctrl == nil {
			a.showNotice(notice.Error, cart.MsgLoginFirst)
			return a, nil
		}
		if a.ctrl.Busy() {
			return a, nil
		}
		return a, a.cartOp(cart.OpSet, func(ctx context.Context, c *cart.Controller) error {
			return c.AddItem(ctx, p.ID, 1)
		})
	case "c":
		if a.ctrl != nil {
			return a, a.openCart()
		}
	}
	return a, nil
}

func (a *App) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.cartView == nil {
		// Session ended while the cart was open
		a.screen = ScreenMenu
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, a.quit()
	case "b", "esc":
		a.screen = ScreenMenu
		return a, nil
	case "up", "k":
		a.cartView.MoveUp()
		return a, nil
	case "down", "j":
		a.cartView.MoveDown()
		return a, nil
	case "p":
		return a, a.openWizard(wizard.NewReturn())
	}

	// Every other key changes the cart; controls are disabled while busy
	if a.ctrl == nil || a.ctrl.Busy() {
		return a, nil
	}

	item, hasItem := a.cartView.Selected()
	switch msg.String() {
	case "r":
		return a, a.cartOp(cart.OpFetch, func(ctx context.Context, c *cart.Controller) error {
			return c.FetchCart(ctx)
		})
	case "+", "=":
		if hasItem {
			return a, a.cartOp(cart.OpSet, func(ctx context.Context, c *cart.Controller) error {
				return c.Increment(ctx, item.ProductID)
			})
		}
	case "-":
		if hasItem {
			return a, a.cartOp(cart.OpSet, func(ctx context.Context, c *cart.Controller) error {
				return c.Decrement(ctx, item.ProductID)
			})
		}
	case "d", "x", "delete":
		if hasItem {
			return a, a.cartOp(cart.OpRemove, func(ctx context.Context, c *cart.Controller) error {
				return c.RemoveItem(ctx, item.ProductID)
			})
		}
	case "c":
		if !a.ctrl.Cart().IsEmpty() {
			return a, a.cartOp(cart.OpClear, func(ctx context.Context, c *cart.Controller) error {
				return c.ClearCart(ctx)
			})
		}
	case "o":
		return a, a.startCheckout()
	}
	return a, nil
}

func (a *App) updateReceipt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, a.quit()
	case "b", "esc", "enter":
		a.receipt = nil
		a.screen = ScreenMenu
	case "c":
		a.receipt = nil
		return a, a.openCart()
	}
	return a, nil
}

func (a *App) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.wizardScreen == nil {
		return a, nil
	}
	model, cmd := a.wizardScreen.Update(msg)
	a.wizardScreen = model.(*wizard.Wizard)
	return a, cmd
}

func (a *App) handleMenuSelected(msg menu.SelectedMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case menu.ActionProducts:
		a.screen = ScreenProducts
		if a.catalogView == nil {
			a.catalogView = catalogview.New(a.sideWidth())
			return a, tea.Batch(a.loadProducts(1), a.loadCategories())
		}
		return a, nil
	case menu.ActionCart:
		return a, a.openCart()
	case menu.ActionCompletePayment:
		return a, a.openWizard(wizard.NewReturn())
	case menu.ActionLogin:
		return a, a.openWizard(wizard.NewLogin(a.lastEmail))
	case menu.ActionSignup:
		return a, a.openWizard(wizard.NewSignup())
	case menu.ActionLogout:
		return a, a.background(func(ctx context.Context) tea.Msg {
			a.account.Logout(ctx)
			return loggedOutMsg{}
		})
	case menu.ActionQuit:
		return a, a.quit()
	}
	return a, nil
}

func (a *App) handleWizardSubmitted(msg wizard.SubmittedMsg) (tea.Model, tea.Cmd) {
	switch msg.Kind {
	case wizard.KindLogin:
		a.lastEmail = msg.Login.Email
		return a, a.background(func(ctx context.Context) tea.Msg {
			_, err := a.account.Login(ctx, msg.Login.Email, msg.Login.Password)
			return authDoneMsg{kind: wizard.KindLogin, err: err}
		})

	case wizard.KindSignup:
		a.lastEmail = msg.Signup.Email
		return a, a.background(func(ctx context.Context) tea.Msg {
			_, err := a.account.Signup(ctx, msg.Signup)
			return authDoneMsg{kind: wizard.KindSignup, err: err}
		})

	case wizard.KindReturn:
		a.wizardScreen = nil
		ret, err := checkout.ParseReturn(msg.ReturnURL)
		if err != nil || a.handoff == nil {
			if err == nil {
				err = errors.New(cart.MsgLoginFirst)
			}
			a.showNotice(notice.Error, err.Error())
			a.screen = ScreenMenu
			return a, nil
		}
		a.screen = ScreenCart
		h := a.handoff
		if ret.Outcome == checkout.Cancelled {
			return a, a.background(func(ctx context.Context) tea.Msg {
				h.Cancel(ret.Query)
				return cancelDoneMsg{}
			})
		}
		return a, a.background(func(ctx context.Context) tea.Msg {
			summary, err := h.Complete(ctx, ret.SessionID)
			return paymentDoneMsg{summary: summary, err: err}
		})
	}
	return a, nil
}

func (a *App) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	a.inflight--
	if msg.err != nil {
		// Start the form over so the user can correct and retry
		if msg.kind == wizard.KindSignup {
			return a, a.openWizard(wizard.NewSignup())
		}
		return a, a.openWizard(wizard.NewLogin(a.lastEmail))
	}

	a.wizardScreen = nil
	a.startSession()
	a.menu = menu.New(true)
	a.screen = ScreenMenu
	return a, a.cartOp(cart.OpFetch, func(ctx context.Context, c *cart.Controller) error {
		return c.FetchCart(ctx)
	})
}

// handleSessionExpired drops everything tied to the old session and asks
// the user to log in again. The client has already shown the notice.
func (a *App) handleSessionExpired() (tea.Model, tea.Cmd) {
	a.endSession()
	a.menu = menu.New(false)
	return a, a.openWizard(wizard.NewLogin(a.lastEmail))
}

func (a *App) handleCartDone(msg cartDoneMsg) (tea.Model, tea.Cmd) {
	a.inflight--
	if msg.ctrl != a.ctrl {
		// Result for a controller from an earlier session
		return a, nil
	}
	if msg.err == nil || !errors.Is(msg.err, cart.ErrBusy) {
		a.lastUpdate = time.Now()
	}
	if errors.Is(msg.err, client.ErrNotAuthenticated) {
		return a.handleSessionExpired()
	}
	a.syncCart()
	return a, nil
}

func (a *App) handleCheckoutStarted(msg checkoutStartedMsg) (tea.Model, tea.Cmd) {
	a.inflight--
	a.syncCart()
	if msg.sess == nil {
		return a, nil
	}
	a.paymentURL = msg.sess.Target()
	if msg.err != nil {
		a.showNotice(notice.Info, "Open the payment page shown below to pay")
	}
	return a, nil
}

// startSession creates the cart controller and checkout handoff for the
// logged-in user
func (a *App) startSession() {
	a.ctrl = cart.New(a.deps.Client, a.deps.Store, cart.Options{
		Confirmer: a.deps.Bridge,
		Notifier:  a.deps.Bridge,
	})
	a.handoff = checkout.New(a.deps.Client, a.deps.Store, a.ctrl, a.deps.Navigator, a.deps.Bridge)
	a.cartView = cartview.New(a.mainWidth(), a.contentHeight())
	a.lastEmail = a.deps.Store.Snapshot().Email
}

// endSession detaches the controller so late results are dropped
func (a *App) endSession() {
	if a.ctrl != nil {
		a.ctrl.Close()
	}
	a.answer(false)
	a.ctrl = nil
	a.handoff = nil
	a.cartView = nil
	a.paymentURL = ""
	a.receipt = nil
}

// syncCart copies the controller's confirmed cart into the view
func (a *App) syncCart() {
	if a.ctrl == nil || a.cartView == nil {
		return
	}
	a.cartView.SetCart(a.ctrl.Cart(), a.ctrl.Loaded())
}

func (a *App) openCart() tea.Cmd {
	if a.ctrl == nil {
		a.showNotice(notice.Error, cart.MsgLoginFirst)
		return nil
	}
	a.screen = ScreenCart
	if a.ctrl.Loaded() || a.ctrl.Busy() {
		return nil
	}
	return a.cartOp(cart.OpFetch, func(ctx context.Context, c *cart.Controller) error {
		return c.FetchCart(ctx)
	})
}

func (a *App) openWizard(w *wizard.Wizard) tea.Cmd {
	w.SetWidth(a.width - 1)
	a.wizardScreen = w
	a.screen = ScreenWizard
	return w.Init()
}

func (a *App) startCheckout() tea.Cmd {
	c := a.ctrl.Cart()
	if c == nil {
		a.showNotice(notice.Error, checkout.MsgEmptyCart)
		return nil
	}
	h, cartID := a.handoff, c.ID
	return a.background(func(ctx context.Context) tea.Msg {
		sess, err := h.Initiate(ctx, cartID)
		return checkoutStartedMsg{sess: sess, err: err}
	})
}

// cartOp runs fn against the current controller in the background
func (a *App) cartOp(op cart.Op, fn func(context.Context, *cart.Controller) error) tea.Cmd {
	ctrl := a.ctrl
	return a.background(func(ctx context.Context) tea.Msg {
		return cartDoneMsg{op: op, ctrl: ctrl, err: fn(ctx, ctrl)}
	})
}

// background runs fn in a tea.Cmd and keeps the spinner going until its
// message is handled
func (a *App) background(fn func(context.Context) tea.Msg) tea.Cmd {
	a.inflight++
	ctx := a.ctx
	work := func() tea.Msg { return fn(ctx) }
	if a.inflight == 1 {
		return tea.Batch(a.spinner.Tick, work)
	}
	return work
}

func (a *App) loadProducts(page int) tea.Cmd {
	browser := a.deps.Catalog
	return a.background(func(ctx context.Context) tea.Msg {
		p, err := browser.Products(ctx, client.ProductQuery{Page: page})
		return productsLoadedMsg{page: p, num: page, err: err}
	})
}

func (a *App) loadCategories() tea.Cmd {
	browser := a.deps.Catalog
	ctx := a.ctx
	return func() tea.Msg {
		cats, _ := browser.Categories(ctx)
		return categoriesLoadedMsg{cats: cats}
	}
}

// showNotice sets a notice from inside Update, where the bridge cannot be used
func (a *App) showNotice(level notice.Level, text string) {
	a.notice = &noticeMsg{level: level, text: text}
	a.noticeID++
}

func (a *App) quit() tea.Cmd {
	a.shutdown()
	return tea.Quit
}

// shutdown cancels calls in flight and detaches the controller
func (a *App) shutdown() {
	a.answer(false)
	a.cancel()
	if a.ctrl != nil {
		a.ctrl.Close()
	}
}

func (a *App) loggedIn() bool {
	return a.deps.Store != nil && a.deps.Store.IsLoggedIn()
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenMenu:
		content = a.menu.View()
	case ScreenProducts:
		content = a.viewProducts()
	case ScreenCart:
		content = a.viewCart()
	case ScreenWizard:
		if a.wizardScreen != nil {
			content = a.wizardScreen.View()
		}
	case ScreenReceipt:
		content = a.viewReceipt()
	default:
		content = a.menu.View()
	}

	if a.confirm != nil {
		modal := styles.Modal.Render(a.confirm.prompt + "\n\n" +
			styles.KeyStyle.Render("y") + " Yes   " + styles.KeyStyle.Render("n") + " No")
		content = lipgloss.PlaceHorizontal(max(a.width-1, minTerminalWidth), lipgloss.Center, modal)
	}

	return a.wrapWithFrame(content)
}

// viewProducts renders the product list with the highlighted product beside it
func (a *App) viewProducts() string {
	if a.catalogView == nil {
		return styles.Panel.Render(a.spinner.View() + " Loading products...")
	}

	leftPane := styles.ActivePanel.Width(a.mainWidth()).Render(a.catalogView.RenderList())
	detail := a.catalogView.RenderDetail()
	if detail == "" {
		return leftPane
	}
	if a.ctrl != nil {
		detail += "\n" + styles.Help.Render(icons.Add.String()+" a  Add to cart")
	} else {
		detail += "\n" + styles.Help.Render("Log in to add items to your cart")
	}
	rightPane := styles.Panel.Width(a.sideWidth()).Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// viewCart renders the cart with the actions pane
func (a *App) viewCart() string {
	if a.cartView == nil {
		return styles.StatusCritical.Render(cart.MsgLoginFirst)
	}

	var pending *cart.Pending
	if a.ctrl != nil {
		if p, ok := a.ctrl.Pending(); ok {
			pending = &p
		}
	}
	a.cartView.SetPending(pending, a.spinner.View())

	leftPane := styles.ActivePanel.Width(a.mainWidth()).Render(a.cartView.Render())

	actionStyle := lipgloss.NewStyle()
	if pending != nil {
		actionStyle = styles.Dimmed
	}
	rightContent := styles.Title.Render("Actions") + "\n"
	rightContent += actionStyle.Render(icons.Add.String()+" +  More") + "\n"
	rightContent += actionStyle.Render(icons.Remove.String()+" -  Less") + "\n"
	rightContent += actionStyle.Render(icons.Trash.String()+" d  Remove item") + "\n"
	rightContent += actionStyle.Render(icons.Trash.String()+" c  Clear cart") + "\n"
	rightContent += actionStyle.Render(icons.Payment.String()+" o  Checkout") + "\n"
	rightContent += actionStyle.Render(icons.Refresh.String()+" r  Refresh") + "\n"
	if a.paymentURL != "" {
		rightContent += "\n" + styles.StatusInfo.Render("Payment page:") + "\n" +
			lipgloss.NewStyle().Width(max(20, a.sideWidth()-panelPadding)).Render(a.paymentURL) + "\n" +
			styles.Help.Render("After paying, press p and paste the return URL")
	}
	rightPane := styles.Panel.Width(a.sideWidth()).Render(rightContent)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// viewReceipt renders a completed payment
func (a *App) viewReceipt() string {
	if a.receipt == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.CheckOK.String() + " Payment complete"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("Order #%d · %s", a.receipt.ID, a.receipt.Status)))
	sb.WriteString("\n")
	for _, it := range a.receipt.PurchasedItems {
		sb.WriteString(fmt.Sprintf("%-24s %3d × %-10s %s\n",
			it.Name, it.Quantity, client.FormatPrice(it.PriceAtPurchase), client.FormatPrice(it.LineTotal())))
	}
	sb.WriteString("\n")
	sb.WriteString("Total paid: " + styles.Price.Render(client.FormatPrice(a.receipt.TotalAmount)))
	return styles.ActivePanel.Render(sb.String())
}

// mainWidth calculates the width for the main pane
func (a *App) mainWidth() int {
	if a.width < minTerminalWidth {
		return max(a.width-panelPadding, 40)
	}
	return (a.width - panelPadding) * 3 / 5
}

// sideWidth calculates the width for the side pane
func (a *App) sideWidth() int {
	return max(a.width-a.mainWidth()-4, 20)
}

// contentHeight calculates the height available for panel content
func (a *App) contentHeight() int {
	// Header, panel border and padding, notice line, footer
	return a.height - 9
}

// renderHeader creates the header bar with app branding and session context
func (a *App) renderHeader() string {
	// Guard against zero/small width before WindowSizeMsg is received
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Storefront"))

	sess := session.Session{}
	if a.deps.Store != nil {
		sess = a.deps.Store.Snapshot()
	}
	rightText := ""
	if a.ctrl != nil && a.ctrl.Loaded() {
		count := 0
		if c := a.ctrl.Cart(); c != nil {
			count = c.TotalQuantity
		}
		rightText += fmt.Sprintf("%s %d  ", icons.Cart.String(), count)
	}
	rightText += widgets.SessionBadge(sess.FullName, sess.IsLoggedIn) + " "

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText + borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch {
	case a.confirm != nil:
		shortcuts = []string{"y Yes", "n No"}
	case a.screen == ScreenMenu:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case a.screen == ScreenProducts:
		shortcuts = []string{"↑↓ Select", "←→ Page", "a Add", "c Cart", "b Back", "q Quit"}
	case a.screen == ScreenCart:
		shortcuts = []string{"↑↓ Select", "+/- Qty", "d Remove", "o Checkout", "p Paid", "b Back"}
	case a.screen == ScreenWizard:
		shortcuts = []string{"Tab Next", "Enter Confirm", "Esc Cancel"}
	case a.screen == ScreenReceipt:
		shortcuts = []string{"c Cart", "b Menu", "q Quit"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && (a.screen == ScreenCart || a.screen == ScreenProducts) {
		elapsed := formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText + borderStyle.Render("─╯")
}

// renderNotice shows the latest notice, or the spinner while calls run
func (a *App) renderNotice() string {
	if a.notice != nil {
		return " " + widgets.StatusText(a.notice.text, widgets.FromNotice(a.notice.level))
	}
	if a.inflight > 0 {
		return " " + a.spinner.View()
	}
	return ""
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header, notice line and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderNotice())
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, deps Deps) error {
	app := New(deps)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	app.deps.Bridge.attach(p.Send)
	defer app.deps.Bridge.attach(nil)
	defer app.shutdown()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
