// ABOUTME: Login and signup flows shared by the CLI and the TUI
// ABOUTME: Calls the auth endpoints and records the new session

package account

import (
	"context"
	"errors"
	"strings"

	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/notice"
	"github.com/markalston/storefront-cli/internal/session"
)

// Notices shown by the auth flows
const (
	MsgLoginOK      = "Login successful!"
	MsgSignupOK     = "Signup successful!"
	MsgLoggedOut    = "Logged out"
	failLogin       = "Login failed. Try again."
	failSignup      = "Signup failed. Try again."
	failUnreachable = "Something went wrong. Please try again."
)

// API is the subset of the storefront client used to authenticate
type API interface {
	Login(ctx context.Context, in client.LoginRequest) (*client.AuthResponse, error)
	Signup(ctx context.Context, in client.SignupRequest) (*client.AuthResponse, error)
}

// Service logs users in and out of the local session
type Service struct {
	api      API
	store    *session.Store
	notifier notice.Notifier
}

// New creates a Service. notifier defaults to notice.Discard.
func New(api API, store *session.Store, notifier notice.Notifier) *Service {
	if notifier == nil {
		notifier = notice.Discard
	}
	return &Service{api: api, store: store, notifier: notifier}
}

// Login authenticates with email and password and stores the session
func (s *Service) Login(ctx context.Context, email, password string) (session.Session, error) {
	in := client.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := requireField("email", in.Email); err != nil {
		return s.reject(err)
	}
	if err := requireField("password", in.Password); err != nil {
		return s.reject(err)
	}

	resp, err := s.api.Login(ctx, in)
	if err != nil {
		return session.Session{}, s.failed(err, failLogin)
	}
	if err := s.store.Login(ctx, resp.FullName, in.Email, resp.Token); err != nil {
		return session.Session{}, s.failed(err, failLogin)
	}
	s.notifier.Notify(notice.Success, MsgLoginOK)
	return s.store.Snapshot(), nil
}

// Signup creates an account and logs straight into it. The server does not
// echo the name back, so the one entered is stored.
func (s *Service) Signup(ctx context.Context, in client.SignupRequest) (session.Session, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	for _, f := range []struct{ name, value string }{
		{"full name", in.FullName},
		{"email", in.Email},
		{"password", in.Password},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return s.reject(err)
		}
	}

	resp, err := s.api.Signup(ctx, in)
	if err != nil {
		return session.Session{}, s.failed(err, failSignup)
	}
	if err := s.store.Login(ctx, in.FullName, in.Email, resp.Token); err != nil {
		return session.Session{}, s.failed(err, failSignup)
	}
	s.notifier.Notify(notice.Success, MsgSignupOK)
	return s.store.Snapshot(), nil
}

// Logout clears the stored session
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	s.notifier.Notify(notice.Info, MsgLoggedOut)
	return nil
}

func (s *Service) reject(err error) (session.Session, error) {
	s.notifier.Notify(notice.Error, err.Error())
	return session.Session{}, err
}

// failed shows the server's message when it sent one
func (s *Service) failed(err error, fallback string) error {
	var se *client.ServerError
	var ne *client.NetworkError
	switch {
	case errors.As(err, &se) && se.Message != "":
		s.notifier.Notify(notice.Error, se.Message)
	case errors.As(err, &ne):
		s.notifier.Notify(notice.Error, failUnreachable)
	default:
		s.notifier.Notify(notice.Error, fallback)
	}
	return err
}

func requireField(field, value string) error {
	if value == "" {
		return &client.ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
