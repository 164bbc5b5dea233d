// ABOUTME: Public product and category browsing over the storefront API
// ABOUTME: Caches listing, detail and category responses for a configurable TTL

package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/markalston/storefront-cli/internal/cache"
	"github.com/markalston/storefront-cli/internal/client"
)

// DefaultPageSize matches the listing page of the web storefront
const DefaultPageSize = 12

// Source is the subset of the API client used for browsing
type Source interface {
	ListProducts(ctx context.Context, q client.ProductQuery) (*client.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*client.Product, error)
	ListCategories(ctx context.Context) ([]client.Category, error)
}

// Browser serves catalog reads, from cache when fresh
type Browser struct {
	src        Source
	pages      *cache.Cache[*client.ProductPage]
	products   *cache.Cache[*client.Product]
	categories *cache.Cache[[]client.Category]
}

// New creates a browser. ttl <= 0 disables caching.
func New(src Source, ttl time.Duration) *Browser {
	return &Browser{
		src:        src,
		pages:      cache.New[*client.ProductPage](ttl),
		products:   cache.New[*client.Product](ttl),
		categories: cache.New[[]client.Category](ttl),
	}
}

// Products returns one page of the listing. Page and limit default to 1 and
// DefaultPageSize.
func (b *Browser) Products(ctx context.Context, q client.ProductQuery) (*client.ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}

	key := "products?" + q.Values().Encode()
	if page, ok := b.pages.Get(key); ok {
		return page, nil
	}

	page, err := b.src.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	b.pages.Set(key, page)
	return page, nil
}

// Product returns the detail of one product
func (b *Browser) Product(ctx context.Context, id int64) (*client.Product, error) {
	key := "product/" + strconv.FormatInt(id, 10)
	if p, ok := b.products.Get(key); ok {
		return p, nil
	}

	p, err := b.src.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	b.products.Set(key, p)
	return p, nil
}

// Categories returns every category
func (b *Browser) Categories(ctx context.Context) ([]client.Category, error) {
	if cats, ok := b.categories.Get("categories"); ok {
		return cats, nil
	}

	cats, err := b.src.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	b.categories.Set("categories", cats)
	return cats, nil
}

// CategoryName resolves a category id for display, "" when unknown
func (b *Browser) CategoryName(ctx context.Context, id int64) string {
	cats, err := b.Categories(ctx)
	if err != nil {
		return ""
	}
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// Refresh drops every cached response
func (b *Browser) Refresh() {
	b.pages.Purge()
	b.products.Purge()
	b.categories.Purge()
}

// Close stops the cache sweepers
func (b *Browser) Close() {
	b.pages.Close()
	b.products.Close()
	b.categories.Close()
}
