// ABOUTME: Interactive TUI command for the storefront CLI
// ABOUTME: Wires the client, session and catalog into the bubbletea application

package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/storefront-cli/internal/checkout"
	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/logger"
	"github.com/markalston/storefront-cli/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI",
	Long: `Launch the full-screen storefront.

Browse products, manage your cart and pay from one screen. Logs go to
debug.log in the config directory so they do not corrupt the display.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if code := runTUI(ctx, os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI starts the interactive application and returns exit code
func runTUI(ctx context.Context, w io.Writer) int {
	if IsJSONOutput() {
		return report(w, errors.New("--json cannot be used with tui"), false)
	}

	bridge := tui.NewBridge()
	e, err := setup(ctx, w,
		client.WithNotifier(bridge),
		client.WithLoginRedirect(bridge.LoginRedirect),
	)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	logs, err := logger.Init(logger.Options{
		Level:  e.cfg.LogLevel,
		Format: e.cfg.LogFormat,
		File:   e.cfg.LogFile(),
	})
	if err != nil {
		return report(w, err, false)
	}
	defer logs.Close()

	browser := e.browser()
	defer browser.Close()

	err = tui.Run(ctx, tui.Deps{
		Client:    e.client,
		Store:     e.store,
		Catalog:   browser,
		Bridge:    bridge,
		Navigator: checkout.BrowserNavigator{},
	})
	if err != nil {
		return report(w, err, false)
	}
	return 0
}
