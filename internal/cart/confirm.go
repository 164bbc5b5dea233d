// ABOUTME: Confirmation gate for destructive cart operations
// ABOUTME: The controller asks before removing a line or clearing the cart

package cart

import "context"

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f(ctx, prompt)
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt (the CLI's --yes)
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// NeverConfirm declines every prompt
var NeverConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return false, nil
})
