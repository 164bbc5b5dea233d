// ABOUTME: Checkout commands for the storefront CLI
// ABOUTME: Starts a hosted payment session and completes or cancels it on return

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/markalston/storefront-cli/internal/checkout"
	"github.com/markalston/storefront-cli/internal/client"
)

var openBrowser bool

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Pay for the cart",
}

var checkoutStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Create a payment session for the cart",
	Long: `Create a payment session for the cart and print the payment page URL.
With --open the page is opened in your browser.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var nav checkout.Navigator = checkout.WriterNavigator{W: os.Stdout}
		if openBrowser {
			nav = checkout.BrowserNavigator{Fallback: os.Stdout}
		}
		if code := runCheckoutStart(ctx, os.Stdout, nav); code != 0 {
			os.Exit(code)
		}
	},
}

var checkoutCompleteCmd = &cobra.Command{
	Use:   "complete <session-id | return-url>",
	Short: "Confirm a payment after returning from the payment page",
	Long: `Confirm a payment. Pass the session id, or paste the whole URL the
payment page sent you back to. A cancel URL is reported as cancelled.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runCheckoutComplete(ctx, os.Stdout, args[0]); code != 0 {
			os.Exit(code)
		}
	},
}

var checkoutCancelCmd = &cobra.Command{
	Use:   "cancel [return-url]",
	Short: "Report an abandoned payment",
	Long:  "Report a cancelled or interrupted payment. The cart is left unchanged.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw := ""
		if len(args) == 1 {
			raw = args[0]
		}
		if code := runCheckoutCancel(os.Stdout, raw); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	checkoutStartCmd.Flags().BoolVar(&openBrowser, "open", false, "Open the payment page in a browser")
	checkoutCmd.AddCommand(checkoutStartCmd, checkoutCompleteCmd, checkoutCancelCmd)
	rootCmd.AddCommand(checkoutCmd)
}

// runCheckoutStart loads the cart and hands it to the payment provider.
// Returns exit code.
func runCheckoutStart(ctx context.Context, w io.Writer, nav checkout.Navigator) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	ctrl := e.cartController()
	defer ctrl.Close()

	if err := ctrl.FetchCart(ctx); err != nil {
		return e.fail(w, err)
	}
	var cartID int64
	if c := ctrl.Cart(); c != nil {
		cartID = c.ID
	}

	if IsJSONOutput() {
		nav = navigatorFunc(func(context.Context, string) error { return nil })
	}
	sess, err := e.handoff(ctrl, nav).Initiate(ctx, cartID)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, toJSON(map[string]string{
			"paymentUrl": sess.Target(),
			"sessionId":  sess.SessionID,
		}))
	}
	return 0
}

// runCheckoutComplete confirms a payment by session id or return URL.
// Returns exit code.
func runCheckoutComplete(ctx context.Context, w io.Writer, arg string) int {
	token := arg
	if strings.Contains(arg, "://") {
		ret, err := checkout.ParseReturn(arg)
		if err != nil {
			return report(w, err, false)
		}
		if ret.Outcome == checkout.Cancelled {
			return runCheckoutCancel(w, arg)
		}
		token = ret.SessionID
	}

	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	ctrl := e.cartController()
	defer ctrl.Close()

	summary, err := e.handoff(ctrl, nil).Complete(ctx, token)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, toJSON(summary))
	} else {
		fmt.Fprintln(w, formatSummaryHuman(summary))
	}
	return 0
}

// runCheckoutCancel reports why the payment did not finish. It never calls
// the API and always exits 1.
func runCheckoutCancel(w io.Writer, raw string) int {
	var query url.Values
	if raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return report(w, fmt.Errorf("invalid return URL: %w", err), false)
		}
		query = u.Query()
	}

	reason := checkout.CancelReason(query)
	if IsJSONOutput() {
		fmt.Fprintln(w, toJSON(map[string]string{"status": "cancelled", "reason": reason}))
	} else {
		fmt.Fprintf(w, "%s. Your cart has not been charged.\n", reason)
	}
	return 1
}

// formatSummaryHuman renders a completed payment
func formatSummaryHuman(s *client.PaymentSummary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PRODUCT", "QTY", "PRICE", "TOTAL")
	for _, it := range s.PurchasedItems {
		t.Row(it.Name, strconv.Itoa(it.Quantity), client.FormatPrice(it.PriceAtPurchase), client.FormatPrice(it.LineTotal()))
	}
	return fmt.Sprintf(`Payment:  #%d (%s)
%s
%s`, s.ID, s.Status, t.Render(), totalStyle.Render("Total paid: "+client.FormatPrice(s.TotalAmount)))
}

type navigatorFunc func(ctx context.Context, target string) error

func (f navigatorFunc) Navigate(ctx context.Context, target string) error { return f(ctx, target) }
