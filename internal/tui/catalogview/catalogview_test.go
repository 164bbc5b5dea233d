// ABOUTME: Tests for the product list panel
// ABOUTME: Validates paging bounds, cursor and detail rendering

package catalogview

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/markalston/storefront-cli/internal/client"
)

func samplePage(totalPages int) *client.ProductPage {
	return &client.ProductPage{
		TotalPages: totalPages,
		Data: []client.Product{
			{ID: 7, Name: "Brass Lamp", Brand: "Lumen", Price: decimal.NewFromInt(500), CategoryID: 1, Description: "Warm light"},
			{ID: 8, Name: "Oak Desk", Brand: "Grain", Price: decimal.NewFromInt(1200), CategoryID: 2},
		},
	}
}

func TestRenderList(t *testing.T) {
	v := New(60)
	v.SetPage(samplePage(3), 2)

	view := v.RenderList()
	for _, expected := range []string{"Brass Lamp", "Oak Desk", "₹500.00", "Page 2 of 3"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected list to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestPaging(t *testing.T) {
	v := New(60)
	v.SetPage(samplePage(3), 1)
	if v.PrevPage() != 0 {
		t.Errorf("expected no previous page on page 1, got %d", v.PrevPage())
	}
	if v.NextPage() != 2 {
		t.Errorf("expected next page 2, got %d", v.NextPage())
	}

	v.SetPage(samplePage(3), 3)
	if v.NextPage() != 0 {
		t.Errorf("expected no next page on the last page, got %d", v.NextPage())
	}
	if v.PrevPage() != 2 {
		t.Errorf("expected previous page 2, got %d", v.PrevPage())
	}
}

func TestCursorAndDetail(t *testing.T) {
	v := New(60)
	v.SetPage(samplePage(1), 1)
	v.SetCategories([]client.Category{{ID: 1, Name: "Lighting"}, {ID: 2, Name: "Furniture"}})

	detail := v.RenderDetail()
	if !strings.Contains(detail, "Lighting") || !strings.Contains(detail, "Warm light") {
		t.Errorf("expected category and description in detail\n%s", detail)
	}

	v.MoveDown()
	v.MoveDown()
	p, ok := v.Selected()
	if !ok || p.ID != 8 {
		t.Fatalf("expected product 8 selected, got %d", p.ID)
	}
	if !strings.Contains(v.RenderDetail(), "Furniture") {
		t.Error("expected detail to follow the cursor")
	}
}

func TestEmptyPage(t *testing.T) {
	v := New(60)
	if !strings.Contains(v.RenderList(), "Loading") {
		t.Error("expected loading text before the first page")
	}

	v.SetPage(&client.ProductPage{TotalPages: 1}, 1)
	if !strings.Contains(v.RenderList(), "No products found") {
		t.Error("expected empty message")
	}
	if _, ok := v.Selected(); ok {
		t.Error("expected no selection on an empty page")
	}
}
