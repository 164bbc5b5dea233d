// ABOUTME: Protected payment endpoints for the hosted checkout handoff
// ABOUTME: Creates provider sessions and completes them after the redirect back

package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNoRedirect is returned when checkout creation yields no target URL
var ErrNoRedirect = errors.New("checkout response did not include a redirect URL")

// CreateCheckout calls POST /api/v1/payment/checkout/{cartId}
func (c *Client) CreateCheckout(ctx context.Context, cartID int64) (*CheckoutSession, error) {
	var sess CheckoutSession
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/api/v1/payment/checkout/" + strconv.FormatInt(cartID, 10),
		protected: true,
	}, &sess)
	if err != nil {
		return nil, err
	}
	if sess.Target() == "" {
		return nil, ErrNoRedirect
	}
	return &sess, nil
}

// CompletePayment calls POST /api/v1/payment/complete/{sessionToken}.
// The server makes repeated completion with the same token idempotent.
func (c *Client) CompletePayment(ctx context.Context, sessionToken string) (*PaymentSummary, error) {
	var summary PaymentSummary
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/api/v1/payment/complete/" + url.PathEscape(sessionToken),
		protected: true,
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
