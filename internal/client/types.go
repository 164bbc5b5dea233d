// ABOUTME: Request and response types of the storefront API
// ABOUTME: Money fields use decimal so totals never drift through float math

package client

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /api/v1/auth/signup
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PhoneNo  string `json:"phoneNo,omitempty"`
}

// AuthResponse is returned by login and signup
type AuthResponse struct {
	Token    string `json:"token"`
	FullName string `json:"fullName,omitempty"`
}

// CartProduct is the product snapshot embedded in a cart line
type CartProduct struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Brand  string          `json:"brand"`
	Price  decimal.Decimal `json:"price"`
	Images []string        `json:"images"`
}

// CartItem is one line of the cart
type CartItem struct {
	ID         int64           `json:"id"`
	CartID     int64           `json:"cartId,omitempty"`
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	PriceAtAdd decimal.Decimal `json:"priceAtAdd"`
	Product    CartProduct     `json:"product"`
}

// LineTotal is quantity times the snapshot price
func (i CartItem) LineTotal() decimal.Decimal {
	return i.PriceAtAdd.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the server-held cart
type Cart struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Items         []CartItem      `json:"items"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// Item returns the line for productID
func (c *Cart) Item(productID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Subtotal sums the line totals
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// IsEmpty reports whether the cart is absent or has no lines
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Verify checks the cart's structural rules: totalQuantity equals the sum of
// line quantities, every quantity is at least 1, and product ids are unique.
func (c *Cart) Verify() error {
	if c == nil {
		return nil
	}
	seen := make(map[int64]bool, len(c.Items))
	sum := 0
	for _, it := range c.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("product %d has quantity %d", it.ProductID, it.Quantity)
		}
		if seen[it.ProductID] {
			return fmt.Errorf("product %d appears more than once", it.ProductID)
		}
		seen[it.ProductID] = true
		sum += it.Quantity
	}
	if sum != c.TotalQuantity {
		return fmt.Errorf("totalQuantity %d does not match line quantities %d", c.TotalQuantity, sum)
	}
	return nil
}

// SetItemRequest is the body of POST /api/v1/cart (absolute set)
type SetItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CheckoutSession is returned by checkout creation
type CheckoutSession struct {
	RedirectURL      string `json:"redirectUrl,omitempty"`
	StripeSessionURL string `json:"stripeSessionUrl,omitempty"`
	SessionID        string `json:"sessionId,omitempty"`
}

// Target is the URL the user must be sent to
func (s *CheckoutSession) Target() string {
	if s.RedirectURL != "" {
		return s.RedirectURL
	}
	return s.StripeSessionURL
}

// PurchasedItem is one line of a completed order
type PurchasedItem struct {
	ProductID       int64           `json:"productId"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
}

// LineTotal is quantity times the purchase price
func (p PurchasedItem) LineTotal() decimal.Decimal {
	return p.PriceAtPurchase.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// PaymentSummary is returned by payment completion
type PaymentSummary struct {
	ID             int64           `json:"id"`
	Status         string          `json:"status"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	CreatedAt      string          `json:"createdat,omitempty"`
	PurchasedItems []PurchasedItem `json:"purchasedItems"`
}

// Product is a catalog entry
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type,omitempty"`
	Images      []string        `json:"images"`
	CategoryID  int64           `json:"categoryid,omitempty"`
	OwnerID     int64           `json:"ownerid,omitempty"`
	CreatedAt   string          `json:"createdat,omitempty"`
	UpdatedAt   string          `json:"updatedat,omitempty"`
}

// ProductQuery filters the product listing. Zero values are omitted.
type ProductQuery struct {
	Page       int
	Limit      int
	Type       string
	CategoryID int64
	PriceRange string
}

// ProductPage is one page of the product listing
type ProductPage struct {
	Data       []Product `json:"data"`
	TotalPages int       `json:"totalPages"`
}

// Category groups products
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type categoryList struct {
	Data []Category `json:"data"`
}

// errorResponse is the error body shape returned by the API. message may be
// a string or a list of validation messages.
type errorResponse struct {
	Message any    `json:"message"`
	Error   string `json:"error"`
}

// FormatPrice renders an amount in rupees with two decimals
func FormatPrice(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}
