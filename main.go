// ABOUTME: Entry point for the storefront CLI
// ABOUTME: Shop, manage the cart and check out from the terminal or the TUI

package main

import (
	"fmt"
	"os"

	"github.com/markalston/storefront-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
