// ABOUTME: Cart commands for the storefront CLI
// ABOUTME: Shows and edits the logged-in user's server-side cart

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/markalston/storefront-cli/internal/cart"
	"github.com/markalston/storefront-cli/internal/client"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change your cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCartCommand(func(ctx context.Context, ctrl *cart.Controller) error {
			return ctrl.FetchCart(ctx)
		})
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set the quantity of a product in the cart",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		productID, quantity, err := parseLine(args[0], args[1])
		if err != nil {
			os.Exit(report(os.Stdout, err, false))
		}
		runCartCommand(func(ctx context.Context, ctrl *cart.Controller) error {
			return ctrl.SetItemQuantity(ctx, productID, quantity)
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product to the cart",
	Long:  "Add a product to the cart. Adding a product already in the cart increases its quantity.",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		qty := "1"
		if len(args) == 2 {
			qty = args[1]
		}
		productID, quantity, err := parseLine(args[0], qty)
		if err != nil {
			os.Exit(report(os.Stdout, err, false))
		}
		runCartCommand(func(ctx context.Context, ctrl *cart.Controller) error {
			return ctrl.AddItem(ctx, productID, quantity)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		productID, err := parseProductID(args[0])
		if err != nil {
			os.Exit(report(os.Stdout, err, false))
		}
		runCartCommand(func(ctx context.Context, ctrl *cart.Controller) error {
			return ctrl.RemoveItem(ctx, productID)
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runCartCommand(func(ctx context.Context, ctrl *cart.Controller) error {
			return ctrl.ClearCart(ctx)
		})
	},
}

func init() {
	cartCmd.AddCommand(cartShowCmd, cartSetCmd, cartAddCmd, cartRemoveCmd, cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}

func runCartCommand(op func(context.Context, *cart.Controller) error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if code := runCart(ctx, os.Stdout, op); code != 0 {
		os.Exit(code)
	}
}

// runCart applies op to a fresh controller, then prints the resulting cart
// and returns exit code
func runCart(ctx context.Context, w io.Writer, op func(context.Context, *cart.Controller) error) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	ctrl := e.cartController()
	defer ctrl.Close()

	if err := op(ctx, ctrl); err != nil {
		return e.fail(w, err)
	}
	if !ctrl.Loaded() {
		if err := ctrl.FetchCart(ctx); err != nil {
			return e.fail(w, err)
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatCartJSON(ctrl.Cart()))
	} else {
		fmt.Fprintln(w, formatCartHuman(ctrl.Cart()))
	}
	return 0
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &client.ValidationError{Field: "product id", Message: fmt.Sprintf("%q is not a product id", s)}
	}
	return id, nil
}

func parseLine(idArg, qtyArg string) (int64, int, error) {
	id, err := parseProductID(idArg)
	if err != nil {
		return 0, 0, err
	}
	qty, err := strconv.Atoi(qtyArg)
	if err != nil {
		return 0, 0, &client.ValidationError{Field: "quantity", Message: fmt.Sprintf("%q is not a number", qtyArg)}
	}
	return id, qty, nil
}

var totalStyle = lipgloss.NewStyle().Bold(true)

// formatCartHuman renders the cart as a table with its subtotal
func formatCartHuman(c *client.Cart) string {
	if c.IsEmpty() {
		return "Your cart is empty"
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "PRODUCT", "QTY", "PRICE", "TOTAL")
	for _, it := range c.Items {
		t.Row(
			strconv.FormatInt(it.ProductID, 10),
			it.Product.Name,
			strconv.Itoa(it.Quantity),
			client.FormatPrice(it.PriceAtAdd),
			client.FormatPrice(it.LineTotal()),
		)
	}

	return fmt.Sprintf("%s\n%s", t.Render(),
		totalStyle.Render(fmt.Sprintf("Items: %d   Subtotal: %s", c.TotalQuantity, client.FormatPrice(c.Subtotal()))))
}

type cartLineView struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"lineTotal"`
}

// formatCartJSON formats the cart as JSON; an absent cart is an empty one
func formatCartJSON(c *client.Cart) string {
	output := map[string]interface{}{
		"cartId":        int64(0),
		"items":         []cartLineView{},
		"totalQuantity": 0,
		"subtotal":      c.Subtotal().StringFixed(2),
	}
	if c != nil {
		lines := make([]cartLineView, 0, len(c.Items))
		for _, it := range c.Items {
			lines = append(lines, cartLineView{
				ProductID: it.ProductID,
				Name:      it.Product.Name,
				Quantity:  it.Quantity,
				Price:     it.PriceAtAdd.StringFixed(2),
				LineTotal: it.LineTotal().StringFixed(2),
			})
		}
		output["cartId"] = c.ID
		output["items"] = lines
		output["totalQuantity"] = c.TotalQuantity
	}
	return toJSON(output)
}
