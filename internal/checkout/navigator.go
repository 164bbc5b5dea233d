// ABOUTME: Navigators that hand the user over to the payment page
// ABOUTME: Either print the URL or open it in the system browser

package checkout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
)

// Navigator performs the full navigation to an external page
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// WriterNavigator prints the URL for the user to open
type WriterNavigator struct {
	W io.Writer
}

// Navigate writes the payment URL
func (n WriterNavigator) Navigate(ctx context.Context, target string) error {
	_, err := fmt.Fprintf(n.W, "Continue to payment: %s\n", target)
	return err
}

// BrowserNavigator opens the URL with the platform's default browser and
// falls back to printing it when that fails.
type BrowserNavigator struct {
	Fallback io.Writer
	command  func(ctx context.Context, target string) *exec.Cmd
}

// Navigate opens target in a browser
func (n BrowserNavigator) Navigate(ctx context.Context, target string) error {
	build := n.command
	if build == nil {
		build = openCommand
	}
	if err := build(ctx, target).Start(); err != nil {
		slog.Warn("Could not open browser", "error", err)
		if n.Fallback == nil {
			return err
		}
		return WriterNavigator{W: n.Fallback}.Navigate(ctx, target)
	}
	return nil
}

func openCommand(ctx context.Context, target string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", target)
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return exec.CommandContext(ctx, "xdg-open", target)
	}
}
