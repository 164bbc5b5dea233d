// ABOUTME: Catalog commands for the storefront CLI
// ABOUTME: Lists products and categories; no login required

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/markalston/storefront-cli/internal/catalog"
	"github.com/markalston/storefront-cli/internal/client"
)

var productQuery client.ProductQuery

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runProductsList(ctx, os.Stdout, productQuery); code != 0 {
			os.Exit(code)
		}
	},
}

var productsShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseProductID(args[0])
		if err != nil {
			os.Exit(report(os.Stdout, err, false))
		}
		if code := runProductShow(context.Background(), os.Stdout, id); code != 0 {
			os.Exit(code)
		}
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runCategories(context.Background(), os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	f := productsListCmd.Flags()
	f.IntVar(&productQuery.Page, "page", 1, "Page number")
	f.IntVar(&productQuery.Limit, "limit", catalog.DefaultPageSize, "Products per page")
	f.StringVar(&productQuery.Type, "type", "", "Only products of this type")
	f.Int64Var(&productQuery.CategoryID, "category", 0, "Only products in this category id")
	f.StringVar(&productQuery.PriceRange, "price-range", "", "Price range, e.g. 100-500")

	productsCmd.AddCommand(productsListCmd, productsShowCmd)
	rootCmd.AddCommand(productsCmd, categoriesCmd)
}

// browser builds a catalog browser for one command
func (e *env) browser() *catalog.Browser {
	return catalog.New(e.client, e.cfg.CatalogCacheTTL)
}

// runProductsList prints one page of products and returns exit code
func runProductsList(ctx context.Context, w io.Writer, q client.ProductQuery) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	b := e.browser()
	defer b.Close()

	page, err := b.Products(ctx, q)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, toJSON(page))
		return 0
	}

	names := make(map[int64]string)
	for _, p := range page.Data {
		if _, ok := names[p.CategoryID]; !ok {
			names[p.CategoryID] = b.CategoryName(ctx, p.CategoryID)
		}
	}
	fmt.Fprintln(w, formatProductsHuman(page, q.Page, names))
	return 0
}

// runProductShow prints one product and returns exit code
func runProductShow(ctx context.Context, w io.Writer, id int64) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	b := e.browser()
	defer b.Close()

	p, err := b.Product(ctx, id)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, toJSON(p))
	} else {
		fmt.Fprintln(w, formatProductHuman(p, b.CategoryName(ctx, p.CategoryID)))
	}
	return 0
}

// runCategories prints every category and returns exit code
func runCategories(ctx context.Context, w io.Writer) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	b := e.browser()
	defer b.Close()

	cats, err := b.Categories(ctx)
	if err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, toJSON(cats))
		return 0
	}
	if len(cats) == 0 {
		fmt.Fprintln(w, "No categories")
		return 0
	}
	t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "NAME")
	for _, c := range cats {
		t.Row(strconv.FormatInt(c.ID, 10), c.Name)
	}
	fmt.Fprintln(w, t.Render())
	return 0
}

// formatProductsHuman renders a page of products with a page footer
func formatProductsHuman(page *client.ProductPage, current int, categories map[int64]string) string {
	if len(page.Data) == 0 {
		return "No products found"
	}
	if current < 1 {
		current = 1
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "BRAND", "CATEGORY", "PRICE")
	for _, p := range page.Data {
		t.Row(strconv.FormatInt(p.ID, 10), p.Name, p.Brand, categories[p.CategoryID], client.FormatPrice(p.Price))
	}
	return fmt.Sprintf("%s\nPage %d of %d", t.Render(), current, page.TotalPages)
}

// formatProductHuman renders a product's detail
func formatProductHuman(p *client.Product, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", totalStyle.Render(p.Name))
	fmt.Fprintf(&b, "ID:        %d\n", p.ID)
	fmt.Fprintf(&b, "Brand:     %s\n", orDash(p.Brand))
	fmt.Fprintf(&b, "Category:  %s\n", orDash(category))
	fmt.Fprintf(&b, "Type:      %s\n", orDash(p.Type))
	fmt.Fprintf(&b, "Price:     %s", client.FormatPrice(p.Price))
	if p.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", p.Description)
	}
	return b.String()
}
