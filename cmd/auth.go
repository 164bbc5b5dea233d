// ABOUTME: Account commands for the storefront CLI
// ABOUTME: login, signup, logout and whoami against the saved session

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/markalston/storefront-cli/internal/account"
	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/session"
)

var (
	loginEmail    string
	loginPassword string
	signupInput   client.SignupRequest
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the storefront",
	Long: `Log in with email and password. Missing values are prompted for.
The session is saved so later commands stay logged in.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		email, password := loginEmail, loginPassword
		if err := askCredentials(ctx, &email, &password); err != nil {
			os.Exit(report(os.Stdout, err, false))
		}
		if code := runLogin(ctx, os.Stdout, email, password); code != 0 {
			os.Exit(code)
		}
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		in := signupInput
		if err := askSignup(ctx, &in); err != nil {
			os.Exit(report(os.Stdout, err, false))
		}
		if code := runSignup(ctx, os.Stdout, in); code != 0 {
			os.Exit(code)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		if code := runLogout(context.Background(), os.Stdout); code != 0 {
			os.Exit(code)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Run: func(cmd *cobra.Command, args []string) {
		if code := runWhoami(context.Background(), os.Stdout, time.Now()); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")

	signupCmd.Flags().StringVar(&signupInput.FullName, "name", "", "Full name")
	signupCmd.Flags().StringVar(&signupInput.Email, "email", "", "Email")
	signupCmd.Flags().StringVar(&signupInput.Password, "password", "", "Password (prompted when omitted)")
	signupCmd.Flags().StringVar(&signupInput.PhoneNo, "phone", "", "Phone number")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

// runLogin logs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, email, password string) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	sess, err := account.New(e.client, e.store, e.notifier).Login(ctx, email, password)
	if err != nil {
		return e.fail(w, err)
	}
	fmt.Fprintln(w, formatSession(sess))
	return 0
}

// runSignup creates an account and returns exit code
func runSignup(ctx context.Context, w io.Writer, in client.SignupRequest) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	sess, err := account.New(e.client, e.store, e.notifier).Signup(ctx, in)
	if err != nil {
		return e.fail(w, err)
	}
	fmt.Fprintln(w, formatSession(sess))
	return 0
}

// runLogout clears the saved session and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	if err := account.New(e.client, e.store, e.notifier).Logout(ctx); err != nil {
		return e.fail(w, err)
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, toJSON(map[string]bool{"isLoggedIn": false}))
	}
	return 0
}

// runWhoami prints the saved session. Exit code 1 when nobody is logged in.
func runWhoami(ctx context.Context, w io.Writer, now time.Time) int {
	e, err := setup(ctx, w)
	if err != nil {
		return report(w, err, false)
	}
	defer e.Close()

	sess := e.store.Snapshot()
	if !sess.IsLoggedIn {
		if IsJSONOutput() {
			fmt.Fprintln(w, toJSON(map[string]bool{"isLoggedIn": false}))
		} else {
			fmt.Fprintln(w, "Not logged in")
		}
		return 1
	}

	var claims *session.TokenClaims
	if c, err := session.PeekClaims(sess.Token); err == nil {
		claims = &c
	}
	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(sess, claims, now))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(sess, claims, now))
	}
	return 0
}

func askSignup(ctx context.Context, in *client.SignupRequest) error {
	if in.FullName != "" && in.Email != "" && in.Password != "" {
		return nil
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Full name").Value(&in.FullName).Validate(required("full name")),
		huh.NewInput().Title("Email").Value(&in.Email).Validate(required("email")),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&in.Password).Validate(required("password")),
		huh.NewInput().Title("Phone (optional)").Value(&in.PhoneNo),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("signup cancelled")
		}
		return err
	}
	return nil
}

func formatSession(sess session.Session) string {
	if IsJSONOutput() {
		return formatSessionJSON(sess, nil, time.Now())
	}
	name := sess.FullName
	if name == "" {
		name = sess.Email
	}
	return fmt.Sprintf("Logged in as %s", name)
}

// formatWhoamiHuman formats the session for human readability
func formatWhoamiHuman(sess session.Session, claims *session.TokenClaims, now time.Time) string {
	out := fmt.Sprintf(`Name:    %s
Email:   %s`, orDash(sess.FullName), orDash(sess.Email))
	if claims != nil && !claims.ExpiresAt.IsZero() {
		state := "expires " + claims.ExpiresAt.Format(time.RFC3339)
		if claims.Expired(now) {
			state = "expired " + claims.ExpiresAt.Format(time.RFC3339)
		}
		out += "\nToken:   " + state
	}
	return out
}

// formatSessionJSON formats the session as JSON. The token itself is never
// printed.
func formatSessionJSON(sess session.Session, claims *session.TokenClaims, now time.Time) string {
	output := map[string]interface{}{
		"fullName":   sess.FullName,
		"email":      sess.Email,
		"isLoggedIn": sess.IsLoggedIn,
	}
	if claims != nil && !claims.ExpiresAt.IsZero() {
		output["tokenExpiresAt"] = claims.ExpiresAt.Format(time.RFC3339)
		output["tokenExpired"] = claims.Expired(now)
	}
	return toJSON(output)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
