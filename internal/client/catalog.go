// ABOUTME: Public catalog endpoints for products and categories
// ABOUTME: No credentials are attached and 401s are plain server errors

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Values encodes the non-zero filters as query parameters
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Type != "" {
		v.Set("type", q.Type)
	}
	if q.CategoryID > 0 {
		v.Set("category", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.PriceRange != "" {
		v.Set("priceRange", q.PriceRange)
	}
	return v
}

// ListProducts calls GET /api/v1/products/list
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	var page ProductPage
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/v1/products/list", query: q.Values()}, &page)
	if err != nil {
		return nil, err
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	return &page, nil
}

// GetProduct calls GET /api/v1/products/{id}
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/v1/products/" + strconv.FormatInt(id, 10)}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCategories calls GET /api/v1/category/list
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var list categoryList
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/v1/category/list"}, &list)
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}
