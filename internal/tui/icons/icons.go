// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("STOREFRONT_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// These terminals are commonly set up with a Nerd Font
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Shop
	App      = Icon{"󰓜", "◈"} // nf-md-storefront
	Cart     = Icon{"󰄐", "▤"} // nf-md-cart
	Product  = Icon{"󰏗", "▣"} // nf-md-package_variant
	Category = Icon{"󰓹", "▦"} // nf-md-tag
	Payment  = Icon{"󰆛", "$"} // nf-md-credit_card
	User     = Icon{"󰀄", "☺"} // nf-md-account

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Actions
	Add     = Icon{"󰐕", "+"} // nf-md-plus
	Remove  = Icon{"󰍴", "-"} // nf-md-minus
	Trash   = Icon{"󰩺", "⌫"} // nf-md-trash_can
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Login   = Icon{"󰍂", "→"} // nf-md-login
	Logout  = Icon{"󰍃", "←"} // nf-md-logout
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
)
