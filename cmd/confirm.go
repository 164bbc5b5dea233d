// ABOUTME: Interactive confirmation and credential prompts for commands
// ABOUTME: Uses huh forms, skipped by --yes or when values come from flags

package cmd

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/markalston/storefront-cli/internal/cart"
)

// promptConfirmer asks on the terminal. Tests replace it.
var promptConfirmer cart.Confirmer = cart.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
})

func confirmer() cart.Confirmer {
	if assumeYes {
		return cart.AlwaysConfirm
	}
	return promptConfirmer
}

// askCredentials fills in whichever of email and password is missing
var askCredentials = func(ctx context.Context, email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(email).Validate(required("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).Validate(required("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).RunWithContext(ctx)
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}
