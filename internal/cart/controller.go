// ABOUTME: Cart Controller keeping the local cart consistent with the server cart
// ABOUTME: Serializes mutations behind one busy flag and only adopts confirmed state

package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/notice"
)

var (
	// ErrBusy is returned when another cart call is still in flight
	ErrBusy = errors.New("cart is busy")

	// ErrNotConfirmed is returned when the user declined a destructive action
	ErrNotConfirmed = errors.New("action not confirmed")

	// ErrDetached is returned once the controller has been closed. A response
	// that arrives after Close is dropped with this error.
	ErrDetached = errors.New("cart controller closed")
)

// Notices and prompts shown by the controller
const (
	MsgUpdated      = "Cart updated"
	MsgRemoved      = "Item removed"
	MsgCleared      = "Cart cleared"
	MsgLoginFirst   = "Please login to continue"
	PromptRemove    = "Remove this item?"
	PromptClear     = "Clear entire cart? This cannot be undone."
	failLoad        = "Failed to load cart"
	failUpdate      = "Failed to update cart"
	failRemove      = "Failed to remove item"
	failClear       = "Failed to clear cart"
	failRefreshCart = "Item removed, but the cart could not be refreshed"
)

// API is the subset of the storefront client the controller drives
type API interface {
	GetCart(ctx context.Context) (*client.Cart, error)
	SetCartItem(ctx context.Context, productID int64, quantity int) (*client.Cart, error)
	RemoveCartItem(ctx context.Context, productID int64) error
	ClearCart(ctx context.Context) error
}

// Session reports whether a user is logged in
type Session interface {
	IsLoggedIn() bool
}

// Op names the call holding the busy flag
type Op int

const (
	OpFetch Op = iota
	OpSet
	OpRemove
	OpClear
	OpCheckout
)

// String returns the string representation of an Op
func (o Op) String() string {
	switch o {
	case OpFetch:
		return "fetch"
	case OpSet:
		return "set"
	case OpRemove:
		return "remove"
	case OpClear:
		return "clear"
	case OpCheckout:
		return "checkout"
	default:
		return "unknown"
	}
}

// Pending describes the in-flight call. It is never merged into the cart.
type Pending struct {
	Op        Op
	ProductID int64
	Quantity  int
	Started   time.Time
}

// Options configures a Controller
type Options struct {
	Confirmer Confirmer       // defaults to NeverConfirm
	Notifier  notice.Notifier // defaults to notice.Discard
}

// Controller owns one view of the user's cart. Create one per screen or
// command and Close it when that screen goes away.
type Controller struct {
	api      API
	session  Session
	confirm  Confirmer
	notifier notice.Notifier

	mu      sync.Mutex
	cart    *client.Cart
	loaded  bool
	pending *Pending
	closed  bool
}

// New creates a controller with an empty, not yet loaded cart
func New(api API, session Session, opts Options) *Controller {
	c := &Controller{
		api:      api,
		session:  session,
		confirm:  opts.Confirmer,
		notifier: opts.Notifier,
	}
	if c.confirm == nil {
		c.confirm = NeverConfirm
	}
	if c.notifier == nil {
		c.notifier = notice.Discard
	}
	return c
}

// Cart returns the last server-confirmed cart, nil when empty or absent
func (c *Controller) Cart() *client.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart
}

// Loaded reports whether the cart has been fetched at least once
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Busy reports whether a call currently holds the busy flag
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Pending returns the in-flight call, if any
func (c *Controller) Pending() (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Pending{}, false
	}
	return *c.pending, true
}

// Close detaches the controller. Calls still in flight finish at the
// transport but their results are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Hold takes the busy flag for a caller outside the controller, such as
// checkout initiation. The returned release must be called exactly once.
func (c *Controller) Hold(op Op) (func(), error) {
	if err := c.begin(Pending{Op: op}); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(c.end) }, nil
}

// FetchCart replaces the local cart with the server's. A user without a
// cart gets an empty cart, not an error.
func (c *Controller) FetchCart(ctx context.Context) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.begin(Pending{Op: OpFetch}); err != nil {
		return err
	}
	defer c.end()

	cart, err := c.api.GetCart(ctx)
	return c.settle(err, failLoad, "", func() { c.adopt(cart) })
}

// SetItemQuantity sets the absolute quantity of a line. Quantities below 1
// are rejected without a request.
func (c *Controller) SetItemQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		err := &client.ValidationError{Field: "quantity", Message: "must be at least 1"}
		c.notifier.Notify(notice.Error, "Quantity must be at least 1")
		return err
	}
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.begin(Pending{Op: OpSet, ProductID: productID, Quantity: quantity}); err != nil {
		return err
	}
	defer c.end()

	cart, err := c.api.SetCartItem(ctx, productID, quantity)
	return c.settle(err, failUpdate, MsgUpdated, func() { c.adopt(cart) })
}

// Increment raises a line's quantity by one
func (c *Controller) Increment(ctx context.Context, productID int64) error {
	item, err := c.line(productID)
	if err != nil {
		return err
	}
	return c.SetItemQuantity(ctx, productID, item.Quantity+1)
}

// Decrement lowers a line's quantity by one. At quantity 1 it does nothing;
// removing the line is a separate, confirmed action.
func (c *Controller) Decrement(ctx context.Context, productID int64) error {
	item, err := c.line(productID)
	if err != nil {
		return err
	}
	if item.Quantity <= 1 {
		return nil
	}
	return c.SetItemQuantity(ctx, productID, item.Quantity-1)
}

// AddItem adds quantity units of a product, merging into an existing line.
// The server only knows absolute quantities, so the merged total is sent.
func (c *Controller) AddItem(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		err := &client.ValidationError{Field: "quantity", Message: "must be at least 1"}
		c.notifier.Notify(notice.Error, "Quantity must be at least 1")
		return err
	}
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.begin(Pending{Op: OpSet, ProductID: productID, Quantity: quantity}); err != nil {
		return err
	}
	defer c.end()

	current, loaded := c.snapshot()
	if !loaded {
		fetched, err := c.api.GetCart(ctx)
		if err := c.settle(err, failLoad, "", func() { c.adopt(fetched) }); err != nil {
			return err
		}
		current = fetched
	}

	total := quantity
	if item, ok := current.Item(productID); ok {
		total += item.Quantity
	}
	c.setPendingQuantity(total)

	cart, err := c.api.SetCartItem(ctx, productID, total)
	return c.settle(err, failUpdate, MsgUpdated, func() { c.adopt(cart) })
}

// RemoveItem deletes a line after the user confirms, then reloads the cart
func (c *Controller) RemoveItem(ctx context.Context, productID int64) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if c.Busy() {
		return ErrBusy
	}
	if err := c.ask(ctx, PromptRemove); err != nil {
		return err
	}
	if err := c.begin(Pending{Op: OpRemove, ProductID: productID}); err != nil {
		return err
	}
	defer c.end()

	if err := c.api.RemoveCartItem(ctx, productID); err != nil {
		return c.settle(err, failRemove, "", nil)
	}

	cart, err := c.api.GetCart(ctx)
	if err != nil && !errors.Is(err, client.ErrAuthExpired) {
		// The delete was confirmed but the new cart was not; the next read refetches
		slog.Warn("Cart reload after removal failed", "product_id", productID, "error", err)
		if err := c.settle(nil, "", MsgRemoved, c.forget); err != nil {
			return err
		}
		c.notifier.Notify(notice.Info, failRefreshCart)
		return nil
	}
	return c.settle(err, failRemove, MsgRemoved, func() { c.adopt(cart) })
}

// ClearCart deletes the whole cart after the user confirms
func (c *Controller) ClearCart(ctx context.Context) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if c.Busy() {
		return ErrBusy
	}
	if err := c.ask(ctx, PromptClear); err != nil {
		return err
	}
	if err := c.begin(Pending{Op: OpClear}); err != nil {
		return err
	}
	defer c.end()

	err := c.api.ClearCart(ctx)
	return c.settle(err, failClear, MsgCleared, func() { c.adopt(nil) })
}

// Invalidate forgets the local cart so the next read refetches it
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forget()
}

func (c *Controller) requireSession() error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrDetached
	}
	if c.session == nil || !c.session.IsLoggedIn() {
		return client.ErrNotAuthenticated
	}
	return nil
}

func (c *Controller) ask(ctx context.Context, prompt string) error {
	ok, err := c.confirm.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}
	return nil
}

func (c *Controller) begin(p Pending) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrDetached
	}
	if c.pending != nil {
		return ErrBusy
	}
	p.Started = time.Now()
	c.pending = &p
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

func (c *Controller) setPendingQuantity(q int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Quantity = q
	}
}

func (c *Controller) snapshot() (*client.Cart, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart, c.loaded
}

func (c *Controller) line(productID int64) (client.CartItem, error) {
	if err := c.requireSession(); err != nil {
		return client.CartItem{}, err
	}
	item, ok := c.Cart().Item(productID)
	if !ok {
		return client.CartItem{}, &client.ValidationError{
			Field:   "productId",
			Message: fmt.Sprintf("product %d is not in the cart", productID),
		}
	}
	return item, nil
}

// settle applies the outcome of a call. A closed controller drops it
// entirely. On success apply runs under the lock and success is shown; on
// failure the cart is left as it was and a notice explains why.
func (c *Controller) settle(err error, failure, success string, apply func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrDetached
	}

	if err != nil {
		if errors.Is(err, client.ErrAuthExpired) {
			// The session is gone; so is any cart we knew about
			c.forget()
			return err
		}
		c.notifier.Notify(notice.Error, describe(err, failure))
		return err
	}

	if apply != nil {
		apply()
	}
	if success != "" {
		c.notifier.Notify(notice.Success, success)
	}
	return nil
}

// adopt replaces the confirmed cart with a server copy. Must hold mu.
func (c *Controller) adopt(cart *client.Cart) {
	if err := cart.Verify(); err != nil {
		slog.Warn("Server cart is inconsistent", "error", err)
	}
	c.cart = cart
	c.loaded = true
}

// forget drops the local cart until the server is asked again. Must hold mu.
func (c *Controller) forget() {
	c.cart = nil
	c.loaded = false
}

func describe(err error, fallback string) string {
	var se *client.ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	var ne *client.NetworkError
	if errors.As(err, &ne) {
		return fallback + ": " + ne.Error()
	}
	if errors.As(err, &se) {
		return fallback + ": " + se.Error()
	}
	return fallback
}
