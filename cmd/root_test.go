// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable and flag configuration

package cmd

import (
	"testing"

	"github.com/markalston/storefront-cli/internal/config"
)

func TestGetAPIURL_Default(t *testing.T) {
	apiURL = "" // Reset flag

	url := GetAPIURL(nil)
	if url != "http://localhost:3000/" {
		t.Errorf("expected default URL http://localhost:3000/, got %s", url)
	}
}

func TestGetAPIURL_FromEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("STOREFRONT_API_URL", "http://shop.example.com")
	apiURL = "" // Reset flag

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	url := GetAPIURL(cfg)
	if url != "http://shop.example.com" {
		t.Errorf("expected http://shop.example.com, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("STOREFRONT_API_URL", "http://shop.example.com")
	apiURL = "http://flag-override.example.com"
	defer func() { apiURL = "" }()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	url := GetAPIURL(cfg)
	if url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	want := []string{"login", "signup", "logout", "whoami", "cart", "checkout", "products", "categories", "tui"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %q subcommand to be registered", name)
		}
	}
}
