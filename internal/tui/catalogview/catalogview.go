// ABOUTME: Product list and detail panels for the TUI products screen
// ABOUTME: Tracks the page, the highlighted product and its category name

package catalogview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/tui/icons"
	"github.com/markalston/storefront-cli/internal/tui/styles"
)

// View shows one page of the catalog
type View struct {
	page       *client.ProductPage
	pageNum    int
	categories map[int64]string
	cursor     int
	width      int
}

// New creates an empty product list on page 1
func New(width int) *View {
	return &View{pageNum: 1, width: width, categories: map[int64]string{}}
}

// SetPage shows a loaded page
func (v *View) SetPage(page *client.ProductPage, num int) {
	v.page = page
	v.pageNum = num
	v.cursor = 0
}

// SetCategories records category names for display
func (v *View) SetCategories(cats []client.Category) {
	for _, c := range cats {
		v.categories[c.ID] = c.Name
	}
}

// SetWidth updates the list width
func (v *View) SetWidth(width int) {
	v.width = width
}

// Page returns the page number shown
func (v *View) Page() int {
	return v.pageNum
}

// NextPage returns the following page number, or 0 on the last page
func (v *View) NextPage() int {
	if v.page == nil || v.pageNum >= v.page.TotalPages {
		return 0
	}
	return v.pageNum + 1
}

// PrevPage returns the previous page number, or 0 on the first page
func (v *View) PrevPage() int {
	if v.pageNum <= 1 {
		return 0
	}
	return v.pageNum - 1
}

// MoveUp moves the cursor one product up
func (v *View) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
	}
}

// MoveDown moves the cursor one product down
func (v *View) MoveDown() {
	if v.page != nil && v.cursor < len(v.page.Data)-1 {
		v.cursor++
	}
}

// Selected returns the highlighted product
func (v *View) Selected() (client.Product, bool) {
	if v.page == nil || len(v.page.Data) == 0 {
		return client.Product{}, false
	}
	return v.page.Data[v.cursor], true
}

// RenderList draws the product list with its page footer
func (v *View) RenderList() string {
	if v.page == nil {
		return "Loading products..."
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Product.String() + " Products"))
	sb.WriteString("\n")

	if len(v.page.Data) == 0 {
		sb.WriteString(styles.Subtitle.Render("No products found"))
		return sb.String()
	}

	for i, p := range v.page.Data {
		line := fmt.Sprintf("%-24s %s", p.Name, styles.Price.Render(client.FormatPrice(p.Price)))
		if i == v.cursor {
			sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("> ") + styles.Selected.Render(line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("Page %d of %d", v.pageNum, v.page.TotalPages)))
	return sb.String()
}

// RenderDetail draws the highlighted product
func (v *View) RenderDetail() string {
	p, ok := v.Selected()
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(p.Name))
	sb.WriteString("\n")
	if p.Brand != "" {
		sb.WriteString(styles.Subtitle.Render(p.Brand))
		sb.WriteString("\n")
	}
	if name := v.categories[p.CategoryID]; name != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", icons.Category.String(), name))
	}
	if p.Type != "" {
		sb.WriteString(fmt.Sprintf("Type: %s\n", p.Type))
	}
	sb.WriteString(fmt.Sprintf("\nPrice: %s\n", styles.Price.Render(client.FormatPrice(p.Price))))
	if p.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Width(max(20, v.width)).Render(p.Description))
		sb.WriteString("\n")
	}
	return sb.String()
}
