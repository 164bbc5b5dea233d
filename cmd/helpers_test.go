// ABOUTME: Shared helpers for command tests
// ABOUTME: Isolates config from the host and points commands at a fake storefront

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/markalston/storefront-cli/internal/cart"
	"github.com/markalston/storefront-cli/internal/shoptest"
)

// isolateConfig keeps tests away from the user's config directory, saved
// session and environment, and resets global flags afterwards.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STOREFRONT_CONFIG_DIR", dir)
	for _, key := range []string{
		"STOREFRONT_API_URL",
		"STOREFRONT_REQUEST_TIMEOUT",
		"STOREFRONT_SESSION_BACKEND",
		"STOREFRONT_REDIS_ADDR",
		"STOREFRONT_CATALOG_CACHE_TTL",
		"LOG_LEVEL",
		"LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	prevConfirm := promptConfirmer
	t.Cleanup(func() {
		apiURL = ""
		jsonOutput = false
		configPath = ""
		assumeYes = false
		promptConfirmer = prevConfirm
	})
	// Never fall through to a terminal prompt
	promptConfirmer = cart.NeverConfirm
	return dir
}

// newShop starts a fake storefront and points the commands at it
func newShop(t *testing.T) *shoptest.Server {
	t.Helper()
	isolateConfig(t)
	srv := shoptest.New()
	t.Cleanup(srv.Close)
	apiURL = srv.URL
	return srv
}

// loginAs logs the test account in and fails the test if that does not work
func loginAs(t *testing.T) {
	t.Helper()
	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, shoptest.Email, shoptest.Password); code != 0 {
		t.Fatalf("login failed with code %d: %s", code, buf.String())
	}
}
