// ABOUTME: Tests for catalog browsing and response caching
// ABOUTME: Counts calls on a fake source to verify cache hits

package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/storefront-cli/internal/client"
)

type fakeSource struct {
	listCalls     int
	productCalls  int
	categoryCalls int
	lastQuery     client.ProductQuery
	err           error
}

func (f *fakeSource) ListProducts(ctx context.Context, q client.ProductQuery) (*client.ProductPage, error) {
	f.listCalls++
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &client.ProductPage{Data: []client.Product{{ID: 1, Name: "Lamp"}}, TotalPages: 3}, nil
}

func (f *fakeSource) GetProduct(ctx context.Context, id int64) (*client.Product, error) {
	f.productCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &client.Product{ID: id, Name: "Lamp"}, nil
}

func (f *fakeSource) ListCategories(ctx context.Context) ([]client.Category, error) {
	f.categoryCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []client.Category{{ID: 4, Name: "Lighting"}}, nil
}

func newBrowser(t *testing.T, src Source, ttl time.Duration) *Browser {
	t.Helper()
	b := New(src, ttl)
	t.Cleanup(b.Close)
	return b
}

func TestProducts_DefaultsAndCache(t *testing.T) {
	src := &fakeSource{}
	b := newBrowser(t, src, time.Minute)

	page, err := b.Products(context.Background(), client.ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, src.lastQuery.Page)
	assert.Equal(t, DefaultPageSize, src.lastQuery.Limit)

	_, err = b.Products(context.Background(), client.ProductQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, src.listCalls, "identical query should be served from cache")

	_, err = b.Products(context.Background(), client.ProductQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, src.listCalls)
}

func TestProduct_Cached(t *testing.T) {
	src := &fakeSource{}
	b := newBrowser(t, src, time.Minute)

	for i := 0; i < 3; i++ {
		p, err := b.Product(context.Background(), 9)
		require.NoError(t, err)
		assert.Equal(t, int64(9), p.ID)
	}
	assert.Equal(t, 1, src.productCalls)
}

func TestCategories_RefreshRefetches(t *testing.T) {
	src := &fakeSource{}
	b := newBrowser(t, src, time.Minute)

	assert.Equal(t, "Lighting", b.CategoryName(context.Background(), 4))
	assert.Equal(t, "", b.CategoryName(context.Background(), 5))
	assert.Equal(t, 1, src.categoryCalls)

	b.Refresh()
	_, err := b.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.categoryCalls)
}

func TestNoCacheWhenTTLDisabled(t *testing.T) {
	src := &fakeSource{}
	b := newBrowser(t, src, 0)

	_, _ = b.Product(context.Background(), 1)
	_, _ = b.Product(context.Background(), 1)
	assert.Equal(t, 2, src.productCalls)
}

func TestErrorsAreWrappedAndNotCached(t *testing.T) {
	boom := &client.ServerError{Status: 500, Message: "boom"}
	src := &fakeSource{err: boom}
	b := newBrowser(t, src, time.Minute)

	_, err := b.Products(context.Background(), client.ProductQuery{})
	require.Error(t, err)
	var se *client.ServerError
	assert.True(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "failed to list products")

	src.err = nil
	_, err = b.Products(context.Background(), client.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, src.listCalls)
}
