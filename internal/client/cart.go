// ABOUTME: Protected cart endpoints
// ABOUTME: Every call here carries the bearer token and the expiry policy

package client

import (
	"context"
	"net/http"
	"strconv"
)

// GetCart calls GET /api/v1/cart. A user without a cart yet gets nil, nil.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var cart *Cart
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/v1/cart", protected: true}, &cart)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// SetCartItem calls POST /api/v1/cart. quantity is absolute, not a delta.
func (c *Client) SetCartItem(ctx context.Context, productID int64, quantity int) (*Cart, error) {
	var cart *Cart
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/api/v1/cart",
		body:      SetItemRequest{ProductID: productID, Quantity: quantity},
		protected: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveCartItem calls DELETE /api/v1/cart/{productId}
func (c *Client) RemoveCartItem(ctx context.Context, productID int64) error {
	return c.do(ctx, call{
		method:    http.MethodDelete,
		path:      "/api/v1/cart/" + strconv.FormatInt(productID, 10),
		protected: true,
	}, nil)
}

// ClearCart calls DELETE /api/v1/cart
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/v1/cart", protected: true}, nil)
}
