// ABOUTME: Tests for the browser navigator fallback path
// ABOUTME: Substitutes the launcher with a command that cannot start

package checkout

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingBinary(ctx context.Context, target string) *exec.Cmd {
	return exec.CommandContext(ctx, "/nonexistent/storefront-browser", target)
}

func TestBrowserNavigator_FallsBackToWriter(t *testing.T) {
	var buf bytes.Buffer
	nav := BrowserNavigator{Fallback: &buf, command: missingBinary}

	require.NoError(t, nav.Navigate(context.Background(), "https://pay.example.com/y"))
	assert.Contains(t, buf.String(), "https://pay.example.com/y")
}

func TestBrowserNavigator_NoFallback(t *testing.T) {
	nav := BrowserNavigator{command: missingBinary}
	assert.Error(t, nav.Navigate(context.Background(), "https://pay.example.com/y"))
}
