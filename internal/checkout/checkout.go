// ABOUTME: Checkout Handoff to the hosted payment provider and back
// ABOUTME: Starts a provider session, completes it on return, and reports cancels

package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/storefront-cli/internal/cart"
	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/notice"
)

// Notices shown during the handoff
const (
	MsgLoginFirst      = "Please login to continue"
	MsgEmptyCart       = "Your cart is empty"
	MsgCheckoutFailed  = "Checkout failed. Please try again."
	MsgInvalidSession  = "Invalid payment session"
	MsgPaymentComplete = "Payment completed successfully!"
	MsgVerifyFailed    = "Payment verification failed. Please contact support."
	ReasonCancelled    = "Payment cancelled"
	ReasonInterrupted  = "Checkout interrupted"
)

// completeTimeout bounds a shared completion call
const completeTimeout = 60 * time.Second

var (
	// ErrNoCart is returned when checkout is attempted without a cart id
	ErrNoCart = errors.New("no cart to check out")

	// ErrEmptyCart is returned when the cart has no lines
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidSession is returned when completion lacks a correlation
	// token or a logged-in user
	ErrInvalidSession = errors.New("invalid payment session")
)

// API is the subset of the storefront client used by the handoff
type API interface {
	CreateCheckout(ctx context.Context, cartID int64) (*client.CheckoutSession, error)
	CompletePayment(ctx context.Context, sessionToken string) (*client.PaymentSummary, error)
}

// Session reports whether a user is logged in
type Session interface {
	IsLoggedIn() bool
}

// CartState is the cart view the handoff coordinates with
type CartState interface {
	Cart() *client.Cart
	Hold(op cart.Op) (func(), error)
	FetchCart(ctx context.Context) error
	Invalidate()
}

// Handoff drives one checkout round trip
type Handoff struct {
	api      API
	session  Session
	cart     CartState
	nav      Navigator
	notifier notice.Notifier

	mu        sync.Mutex
	completed map[string]*client.PaymentSummary
	inflight  singleflight.Group
}

// New creates a handoff. nav receives the provider URL; notifier defaults
// to notice.Discard.
func New(api API, session Session, cartState CartState, nav Navigator, notifier notice.Notifier) *Handoff {
	if notifier == nil {
		notifier = notice.Discard
	}
	return &Handoff{
		api:       api,
		session:   session,
		cart:      cartState,
		nav:       nav,
		notifier:  notifier,
		completed: make(map[string]*client.PaymentSummary),
	}
}

// Initiate creates a provider session for cartID and hands the user over to
// it. The cart's busy flag is held for the whole call so its controls stay
// disabled until the handoff either navigates away or fails.
func (h *Handoff) Initiate(ctx context.Context, cartID int64) (*client.CheckoutSession, error) {
	if !h.session.IsLoggedIn() {
		h.notifier.Notify(notice.Error, MsgLoginFirst)
		return nil, client.ErrNotAuthenticated
	}
	if cartID == 0 {
		h.notifier.Notify(notice.Error, MsgLoginFirst)
		return nil, ErrNoCart
	}
	if c := h.cart.Cart(); c != nil && c.ID == cartID && c.IsEmpty() {
		h.notifier.Notify(notice.Error, MsgEmptyCart)
		return nil, ErrEmptyCart
	}

	release, err := h.cart.Hold(cart.OpCheckout)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := h.api.CreateCheckout(ctx, cartID)
	if err != nil {
		if !errors.Is(err, client.ErrAuthExpired) {
			h.notifier.Notify(notice.Error, failureText(err, MsgCheckoutFailed))
		}
		return nil, err
	}

	target := sess.Target()
	if err := validateTarget(target); err != nil {
		h.notifier.Notify(notice.Error, MsgCheckoutFailed)
		return nil, err
	}

	slog.Info("Handing off to payment provider", "cart_id", cartID)
	if err := h.nav.Navigate(ctx, target); err != nil {
		return sess, fmt.Errorf("failed to open payment page: %w", err)
	}
	return sess, nil
}

// Complete confirms a payment after the provider redirected back with a
// correlation token. A token already completed by this handoff returns the
// first summary without another request or notice.
func (h *Handoff) Complete(ctx context.Context, sessionToken string) (*client.PaymentSummary, error) {
	if sessionToken == "" || !h.session.IsLoggedIn() {
		h.notifier.Notify(notice.Error, MsgInvalidSession)
		return nil, ErrInvalidSession
	}

	if summary, ok := h.lookup(sessionToken); ok {
		return summary, nil
	}

	// The shared call outlives any one caller; each caller still stops
	// waiting when its own context ends.
	ch := h.inflight.DoChan(sessionToken, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), completeTimeout)
		defer cancel()
		if summary, ok := h.lookup(sessionToken); ok {
			return summary, nil
		}

		summary, err := h.api.CompletePayment(shared, sessionToken)
		if err != nil {
			if !errors.Is(err, client.ErrAuthExpired) {
				h.notifier.Notify(notice.Error, MsgVerifyFailed)
			}
			return nil, err
		}

		h.mu.Lock()
		h.completed[sessionToken] = summary
		h.mu.Unlock()

		h.notifier.Notify(notice.Success, MsgPaymentComplete)
		h.refreshCart(shared)
		return summary, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*client.PaymentSummary), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel reports a cancelled or abandoned checkout. It never calls the API:
// the cart is untouched because no completion happened.
func (h *Handoff) Cancel(query url.Values) string {
	reason := CancelReason(query)
	h.notifier.Notify(notice.Info, reason)
	return reason
}

// CancelReason describes a cancel return from its query parameters
func CancelReason(query url.Values) string {
	if query.Has("cancelled") {
		return ReasonCancelled
	}
	return ReasonInterrupted
}

func (h *Handoff) lookup(token string) (*client.PaymentSummary, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.completed[token]
	return s, ok
}

// refreshCart reloads the cart, which the server should now have emptied
func (h *Handoff) refreshCart(ctx context.Context) {
	if err := h.cart.FetchCart(ctx); err != nil {
		slog.Warn("Cart refresh after payment failed", "error", err)
		h.cart.Invalidate()
	}
}

func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("payment provider returned an unusable URL %q", target)
	}
	return nil
}

func failureText(err error, fallback string) string {
	var se *client.ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

// Outcome is how the provider sent the user back
type Outcome int

const (
	Succeeded Outcome = iota
	Cancelled
)

// String returns the string representation of an Outcome
func (o Outcome) String() string {
	if o == Succeeded {
		return "success"
	}
	return "cancel"
}

// Return is a parsed provider redirect
type Return struct {
	Outcome   Outcome
	SessionID string
	Query     url.Values
}

// ParseReturn classifies a provider redirect URL. A cancel path wins; any
// other URL carrying session_id is a success; a success path without one is
// still a success so completion can report the missing token.
func ParseReturn(rawURL string) (Return, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Return{}, fmt.Errorf("invalid return URL: %w", err)
	}
	q := u.Query()
	path := strings.ToLower(u.Path)

	switch {
	case strings.Contains(path, "cancel"):
		return Return{Outcome: Cancelled, Query: q}, nil
	case q.Get("session_id") != "":
		return Return{Outcome: Succeeded, SessionID: q.Get("session_id"), Query: q}, nil
	case strings.Contains(path, "success"):
		return Return{Outcome: Succeeded, Query: q}, nil
	default:
		return Return{Outcome: Cancelled, Query: q}, nil
	}
}
