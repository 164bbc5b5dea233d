// ABOUTME: Integration tests for TUI app
// ABOUTME: Drives the root model against the in-memory storefront server

package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/storefront-cli/internal/cart"
	"github.com/markalston/storefront-cli/internal/catalog"
	"github.com/markalston/storefront-cli/internal/checkout"
	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/notice"
	"github.com/markalston/storefront-cli/internal/session"
	"github.com/markalston/storefront-cli/internal/shoptest"
	"github.com/markalston/storefront-cli/internal/tui/menu"
	"github.com/markalston/storefront-cli/internal/tui/wizard"
)

// recordingNavigator remembers the payment pages it was asked to open
type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	return nil
}

func (n *recordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// harness runs the app's commands synchronously. The bridge is attached to
// a collector instead of a program; confirmation prompts are answered with
// answer.
type harness struct {
	t     *testing.T
	app   *App
	srv   *shoptest.Server
	store *session.Store
	nav   *recordingNavigator

	mu       sync.Mutex
	answer   bool
	prompts  []string
	notices  []noticeMsg
	incoming []tea.Msg
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	srv := shoptest.New()
	t.Cleanup(srv.Close)

	store := session.NewStore(session.NewFileSlot(t.TempDir()))
	require.NoError(t, store.Rehydrate(context.Background()))
	if loggedIn {
		require.NoError(t, store.Login(context.Background(), shoptest.FullName, shoptest.Email, shoptest.Token))
	}

	h := &harness{t: t, srv: srv, store: store, nav: &recordingNavigator{}, answer: true}
	bridge := NewBridge()
	bridge.attach(h.collect)

	c := client.New(srv.URL,
		client.WithCredentials(store),
		client.WithNotifier(bridge),
		client.WithLoginRedirect(bridge.LoginRedirect),
	)
	browser := catalog.New(c, time.Minute)
	t.Cleanup(browser.Close)

	h.app = New(Deps{Client: c, Store: store, Catalog: browser, Bridge: bridge, Navigator: h.nav})
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	t.Cleanup(h.app.shutdown)
	return h
}

func (h *harness) collect(msg tea.Msg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch m := msg.(type) {
	case confirmRequestMsg:
		h.prompts = append(h.prompts, m.prompt)
		m.reply <- h.answer
	case noticeMsg:
		h.notices = append(h.notices, m)
	default:
		h.incoming = append(h.incoming, msg)
	}
}

func (h *harness) setAnswer(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.answer = ok
}

func (h *harness) noticeTexts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, n := range h.notices {
		out = append(out, n.text)
	}
	return out
}

func (h *harness) noticeCount(text string) int {
	n := 0
	for _, got := range h.noticeTexts() {
		if got == text {
			n++
		}
	}
	return n
}

// send delivers msg to the app and runs whatever it schedules
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	_, cmd := h.app.Update(msg)
	h.drain(cmd)
}

func (h *harness) key(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		h.send(msg)
	}
}

// drain runs commands until the app stops producing messages it handles.
// Commands that do not finish promptly (ticks, cursor blinks) are dropped.
func (h *harness) drain(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		msgs := runAll(queue)
		queue = nil
		h.mu.Lock()
		msgs = append(msgs, h.incoming...)
		h.incoming = nil
		h.mu.Unlock()

		for _, msg := range msgs {
			queue = append(queue, h.deliver(msg)...)
		}
	}
}

func (h *harness) deliver(msg tea.Msg) []tea.Cmd {
	switch msg := msg.(type) {
	case tea.BatchMsg:
		return msg
	case cartDoneMsg, productsLoadedMsg, categoriesLoadedMsg, authDoneMsg, loggedOutMsg,
		checkoutStartedMsg, paymentDoneMsg, cancelDoneMsg, sessionExpiredMsg,
		menu.SelectedMsg, wizard.SubmittedMsg, wizard.CancelledMsg:
		_, cmd := h.app.Update(msg)
		return []tea.Cmd{cmd}
	}
	return nil
}

func runAll(cmds []tea.Cmd) []tea.Msg {
	results := make(chan tea.Msg, len(cmds))
	n := 0
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		n++
		go func(cmd tea.Cmd) { results <- cmd() }(cmd)
	}

	var msgs []tea.Msg
	deadline := time.After(time.Second)
	for i := 0; i < n; i++ {
		select {
		case msg := <-results:
			if msg != nil {
				msgs = append(msgs, msg)
			}
		case <-deadline:
			return msgs
		}
	}
	return msgs
}

func TestApp_LoggedOutStartsOnMenu(t *testing.T) {
	h := newHarness(t, false)

	assert.Equal(t, ScreenMenu, h.app.screen)
	assert.Nil(t, h.app.ctrl)
	assert.Nil(t, h.app.Init())
	assert.Contains(t, h.app.View(), "Log in")
	assert.Contains(t, h.app.View(), "GUEST")
}

func TestApp_LoggedInWarmsCart(t *testing.T) {
	h := newHarness(t, true)
	h.srv.SeedCart(map[int64]int{7: 2})

	h.drain(h.app.Init())

	require.NotNil(t, h.app.ctrl)
	assert.True(t, h.app.ctrl.Loaded())
	assert.Equal(t, 2, h.app.ctrl.Cart().TotalQuantity)
	assert.Contains(t, h.app.renderHeader(), shoptest.FullName)
	assert.Zero(t, h.app.inflight)
}

func TestApp_CartIncrementAndDecrement(t *testing.T) {
	h := newHarness(t, true)
	h.srv.SeedCart(map[int64]int{7: 2})

	h.send(menu.SelectedMsg{Action: menu.ActionCart})
	require.Equal(t, ScreenCart, h.app.screen)
	require.True(t, h.app.ctrl.Loaded())

	h.key("+")
	item, ok := h.srv.Cart().Item(7)
	require.True(t, ok)
	assert.Equal(t, 3, item.Quantity)

	h.key("-", "-")
	item, _ = h.srv.Cart().Item(7)
	assert.Equal(t, 1, item.Quantity)
	assert.Contains(t, h.app.View(), "Brass Lamp")
	assert.Equal(t, 3, h.noticeCount(cart.MsgUpdated))
}

func TestApp_RemoveAsksFirst(t *testing.T) {
	h := newHarness(t, true)
	h.srv.SeedCart(map[int64]int{7: 1, 8: 1})
	h.send(menu.SelectedMsg{Action: menu.ActionCart})

	h.setAnswer(false)
	h.key("d")
	assert.Len(t, h.srv.Cart().Items, 2)
	assert.Zero(t, h.srv.Hits("DELETE /api/v1/cart/7"))

	h.setAnswer(true)
	h.key("d")
	assert.Len(t, h.srv.Cart().Items, 1)
	assert.Equal(t, []string{cart.PromptRemove, cart.PromptRemove}, h.prompts)
	assert.Equal(t, 1, h.noticeCount(cart.MsgRemoved))
}

func TestApp_ClearCart(t *testing.T) {
	h := newHarness(t, true)
	h.srv.SeedCart(map[int64]int{7: 1, 9: 4})
	h.send(menu.SelectedMsg{Action: menu.ActionCart})

	h.key("c")

	assert.Equal(t, []string{cart.PromptClear}, h.prompts)
	assert.True(t, h.app.ctrl.Cart().IsEmpty())
	assert.Contains(t, h.app.View(), "Your cart is empty")
}

func TestApp_CartKeysIgnoredWhileBusy(t *testing.T) {
	h := newHarness(t, true)
	h.srv.SeedCart(map[int64]int{7: 2})
	h.send(menu.SelectedMsg{Action: menu.ActionCart})

	release, err := h.app.ctrl.Hold(cart.OpCheckout)
	require.NoError(t, err)
	defer release()

	for _, k := range []string{"+", "-", "d", "c", "o", "r"} {
		_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		assert.Nil(t, cmd, "key %q should be ignored while busy", k)
	}
	assert.Zero(t, h.srv.Hits("POST /api/v1/cart"))
}

func TestApp_SessionExpiryReturnsToLogin(t *testing.T) {
	h := newHarness(t, true)
	h.srv.SeedCart(map[int64]int{7: 2})
	h.send(menu.SelectedMsg{Action: menu.ActionCart})

	h.srv.RevokeTokens()
	h.key("r")

	assert.Equal(t, ScreenWizard, h.app.screen)
	require.NotNil(t, h.app.wizardScreen)
	assert.Equal(t, wizard.KindLogin, h.app.wizardScreen.Kind())
	assert.Nil(t, h.app.ctrl)
	assert.False(t, h.store.IsLoggedIn())
	assert.Equal(t, 1, h.noticeCount(client.MsgSessionExpired))
}

func TestApp_LoginStartsSession(t *testing.T) {
	h := newHarness(t, false)

	h.send(menu.SelectedMsg{Action: menu.ActionLogin})
	require.Equal(t, ScreenWizard, h.app.screen)

	h.send(wizard.SubmittedMsg{
		Kind:  wizard.KindLogin,
		Login: client.LoginRequest{Email: shoptest.Email, Password: shoptest.Password},
	})

	assert.Equal(t, ScreenMenu, h.app.screen)
	require.NotNil(t, h.app.ctrl)
	assert.True(t, h.app.ctrl.Loaded())
	assert.True(t, h.store.IsLoggedIn())
	assert.Contains(t, h.noticeTexts(), "Login successful!")
	assert.Contains(t, h.app.View(), "Log out")
}

func TestApp_LoginFailureReopensForm(t *testing.T) {
	h := newHarness(t, false)

	h.send(wizard.SubmittedMsg{
		Kind:  wizard.KindLogin,
		Login: client.LoginRequest{Email: shoptest.Email, Password: "nope"},
	})

	assert.Equal(t, ScreenWizard, h.app.screen)
	require.NotNil(t, h.app.wizardScreen)
	assert.Equal(t, wizard.KindLogin, h.app.wizardScreen.Kind())
	assert.Equal(t, shoptest.Email, h.app.lastEmail)
	assert.Nil(t, h.app.ctrl)
	assert.Contains(t, h.noticeTexts(), "Invalid email or password")
}

func TestApp_Logout(t *testing.T) {
	h := newHarness(t, true)
	h.drain(h.app.Init())

	h.send(menu.SelectedMsg{Action: menu.ActionLogout})

	assert.False(t, h.store.IsLoggedIn())
	assert.Nil(t, h.app.ctrl)
	assert.Equal(t, menu.ActionProducts, h.app.menu.Selected())
	assert.Contains(t, h.app.View(), "Sign up")
}

func TestApp_ProductsAddRequiresLogin(t *testing.T) {
	h := newHarness(t, false)

	h.send(menu.SelectedMsg{Action: menu.ActionProducts})
	require.Equal(t, ScreenProducts, h.app.screen)
	assert.Contains(t, h.app.View(), "Brass Lamp")

	h.key("a")

	require.NotNil(t, h.app.notice)
	assert.Equal(t, cart.MsgLoginFirst, h.app.notice.text)
	assert.Zero(t, h.srv.Hits("POST /api/v1/cart"))
}

func TestApp_ProductsAddToCart(t *testing.T) {
	h := newHarness(t, true)
	h.drain(h.app.Init())

	h.send(menu.SelectedMsg{Action: menu.ActionProducts})
	h.key("down", "a")

	item, ok := h.srv.Cart().Item(8)
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 1, h.app.ctrl.Cart().TotalQuantity)
}

func TestApp_ProductsSinglePageDoesNotPage(t *testing.T) {
	h := newHarness(t, false)
	h.send(menu.SelectedMsg{Action: menu.ActionProducts})

	_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, h.srv.Hits("GET /api/v1/products/list"))
}

func TestApp_CheckoutAndComplete(t *testing.T) {
	h := newHarness(t, true)
	h.srv.SeedCart(map[int64]int{7: 2})
	h.send(menu.SelectedMsg{Action: menu.ActionCart})

	h.key("o")

	require.Len(t, h.nav.Targets(), 1)
	assert.Equal(t, h.srv.URL+"/pay/cs_test_1", h.nav.Targets()[0])
	assert.Equal(t, h.nav.Targets()[0], h.app.paymentURL)

	h.send(wizard.SubmittedMsg{
		Kind:      wizard.KindReturn,
		ReturnURL: "http://localhost:5173/payment/success?session_id=cs_test_1",
	})

	assert.Equal(t, ScreenReceipt, h.app.screen)
	require.NotNil(t, h.app.receipt)
	assert.Equal(t, "1000.00", h.app.receipt.TotalAmount.StringFixed(2))
	assert.Contains(t, h.app.View(), "Total paid")
	assert.Equal(t, 1, h.noticeCount(checkout.MsgPaymentComplete))
	assert.True(t, h.app.ctrl.Cart().IsEmpty())
}

func TestApp_CheckoutEmptyCart(t *testing.T) {
	h := newHarness(t, true)
	h.send(menu.SelectedMsg{Action: menu.ActionCart})

	h.key("o")

	assert.Empty(t, h.nav.Targets())
	assert.Zero(t, h.srv.Hits("POST /api/v1/payment/checkout/3"))
}

func TestApp_CancelledReturn(t *testing.T) {
	h := newHarness(t, true)
	h.srv.SeedCart(map[int64]int{7: 1})
	h.send(menu.SelectedMsg{Action: menu.ActionCart})
	h.key("o")

	h.send(wizard.SubmittedMsg{
		Kind:      wizard.KindReturn,
		ReturnURL: "http://localhost:5173/payment/cancel?cancelled=true",
	})

	assert.Equal(t, ScreenCart, h.app.screen)
	assert.Empty(t, h.app.paymentURL)
	assert.Contains(t, h.noticeTexts(), checkout.ReasonCancelled)
	assert.Zero(t, h.srv.Hits("POST /api/v1/payment/complete/cs_test_1"))
	assert.Len(t, h.srv.Cart().Items, 1)
}

func TestApp_ReturnWhileLoggedOut(t *testing.T) {
	h := newHarness(t, false)

	h.send(wizard.SubmittedMsg{Kind: wizard.KindReturn, ReturnURL: "http://localhost:5173/payment/success?session_id=cs_test_1"})

	assert.Equal(t, ScreenMenu, h.app.screen)
	require.NotNil(t, h.app.notice)
	assert.Equal(t, cart.MsgLoginFirst, h.app.notice.text)
}

func TestApp_ConfirmModal(t *testing.T) {
	h := newHarness(t, true)
	reply := make(chan bool, 1)

	h.app.Update(confirmRequestMsg{prompt: cart.PromptClear, reply: reply})
	assert.Contains(t, h.app.View(), cart.PromptClear)

	// Screen keys are swallowed while the modal is open
	h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, h.app.confirm)
	assert.False(t, <-reply)

	reply = make(chan bool, 1)
	h.app.Update(confirmRequestMsg{prompt: cart.PromptRemove, reply: reply})
	h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.True(t, <-reply)
}

func TestApp_NoticeExpiry(t *testing.T) {
	h := newHarness(t, false)

	_, cmd := h.app.Update(noticeMsg{level: notice.Success, text: "Cart updated"})
	assert.NotNil(t, cmd)
	first := h.app.noticeID
	assert.Contains(t, h.app.View(), "Cart updated")

	h.app.Update(noticeMsg{level: notice.Error, text: "Item removed"})
	h.app.Update(noticeExpiredMsg{id: first})
	require.NotNil(t, h.app.notice, "an older timer must not hide a newer notice")

	h.app.Update(noticeExpiredMsg{id: h.app.noticeID})
	assert.Nil(t, h.app.notice)
}

func TestApp_BackFromCart(t *testing.T) {
	h := newHarness(t, true)
	h.send(menu.SelectedMsg{Action: menu.ActionCart})

	h.key("b")
	assert.Equal(t, ScreenMenu, h.app.screen)
}

func TestFormatTimeSince(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{time.Second, "just now"},
		{30 * time.Second, "30s ago"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, formatTimeSince(time.Now().Add(-tc.ago)))
	}
}
