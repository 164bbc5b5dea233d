// ABOUTME: Cart panel for the TUI cart screen
// ABOUTME: Renders lines with a cursor, the pending operation and the totals

package cartview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront-cli/internal/cart"
	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/tui/icons"
	"github.com/markalston/storefront-cli/internal/tui/styles"
)

// View displays one cart
type View struct {
	cart    *client.Cart
	loaded  bool
	pending *cart.Pending
	spinner string
	cursor  int
	width   int
	height  int
}

// New creates an empty cart panel
func New(width, height int) *View {
	return &View{width: width, height: height}
}

// SetCart replaces the displayed cart, keeping the cursor on a valid line
func (v *View) SetCart(c *client.Cart, loaded bool) {
	v.cart = c
	v.loaded = loaded
	v.clampCursor()
}

// SetPending shows the call in flight, nil when idle. spinner is the
// current spinner frame.
func (v *View) SetPending(p *cart.Pending, spinner string) {
	v.pending = p
	v.spinner = spinner
}

// SetSize updates the panel dimensions
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// MoveUp moves the cursor one line up
func (v *View) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
	}
}

// MoveDown moves the cursor one line down
func (v *View) MoveDown() {
	v.cursor++
	v.clampCursor()
}

// Selected returns the line under the cursor
func (v *View) Selected() (client.CartItem, bool) {
	if v.cart.IsEmpty() {
		return client.CartItem{}, false
	}
	return v.cart.Items[v.cursor], true
}

func (v *View) clampCursor() {
	n := 0
	if v.cart != nil {
		n = len(v.cart.Items)
	}
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// Render draws the panel
func (v *View) Render() string {
	if !v.loaded {
		return lipgloss.NewStyle().Width(v.width).Render(v.spinner + " Loading cart...")
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Cart.String() + " Your cart"))
	sb.WriteString("\n")

	if v.cart.IsEmpty() {
		sb.WriteString(styles.Subtitle.Render("Your cart is empty"))
		sb.WriteString("\n")
		sb.WriteString(v.status())
		return lipgloss.NewStyle().Width(v.width).Render(sb.String())
	}

	nameWidth := v.width - 34
	if nameWidth < 12 {
		nameWidth = 12
	}

	for i, it := range v.cart.Items {
		name := truncate(it.Product.Name, nameWidth)
		qty := strconv.Itoa(it.Quantity)
		if v.pending != nil && v.pending.ProductID == it.ProductID && v.pending.Op == cart.OpSet {
			// Show the requested quantity next to the confirmed one
			qty = fmt.Sprintf("%d→%d", it.Quantity, v.pending.Quantity)
		}
		line := fmt.Sprintf("%-*s %7s × %-10s %s",
			nameWidth, name, qty, client.FormatPrice(it.PriceAtAdd), styles.Price.Render(client.FormatPrice(it.LineTotal())))

		switch {
		case v.pending != nil:
			sb.WriteString("  " + styles.Dimmed.Render(line))
		case i == v.cursor:
			sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("> ") + styles.Selected.Render(line))
		default:
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Items:    %s\n", styles.ValueStyle.Render(strconv.Itoa(v.cart.TotalQuantity))))
	sb.WriteString(fmt.Sprintf("Subtotal: %s\n", styles.Price.Render(client.FormatPrice(v.cart.Subtotal()))))
	sb.WriteString(v.status())

	return lipgloss.NewStyle().Width(v.width).Render(sb.String())
}

// status describes the call in flight
func (v *View) status() string {
	if v.pending == nil {
		return ""
	}
	var what string
	switch v.pending.Op {
	case cart.OpFetch:
		what = "Refreshing cart"
	case cart.OpSet:
		what = "Updating cart"
	case cart.OpRemove:
		what = "Removing item"
	case cart.OpClear:
		what = "Clearing cart"
	case cart.OpCheckout:
		what = "Starting checkout"
	}
	return "\n" + styles.StatusInfo.Render(v.spinner+" "+what+"...")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}
