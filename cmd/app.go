// ABOUTME: Shared wiring for storefront commands
// ABOUTME: Loads configuration, restores the session and maps errors to exit codes

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/markalston/storefront-cli/internal/cart"
	"github.com/markalston/storefront-cli/internal/checkout"
	"github.com/markalston/storefront-cli/internal/client"
	"github.com/markalston/storefront-cli/internal/config"
	"github.com/markalston/storefront-cli/internal/logger"
	"github.com/markalston/storefront-cli/internal/notice"
	"github.com/markalston/storefront-cli/internal/session"
)

const loginHint = "Run `storefront login` to sign in again."

// env is everything a command needs to talk to the storefront
type env struct {
	cfg      *config.Config
	store    *session.Store
	client   *client.Client
	notifier *trackingNotifier
	closers  []io.Closer
}

// setup loads configuration, restores the saved session and builds a client
// whose notices and login redirect go to w. opts are applied last and may
// replace either.
func setup(ctx context.Context, w io.Writer, opts ...client.Option) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.APIURL = GetAPIURL(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	e.store = session.NewStore(e.openSlot())
	if err := e.store.Rehydrate(ctx); err != nil {
		e.Close()
		return nil, err
	}

	var out notice.Notifier = notice.NewWriter(w)
	if IsJSONOutput() {
		out = notice.Discard
	}
	e.notifier = &trackingNotifier{next: out}

	base := []client.Option{
		client.WithCredentials(e.store),
		client.WithNotifier(e.notifier),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLoginRedirect(func() {
			if !IsJSONOutput() {
				fmt.Fprintln(w, loginHint)
			}
		}),
	}
	e.client = client.New(cfg.APIURL, append(base, opts...)...)
	return e, nil
}

func (e *env) openSlot() session.Slot {
	if e.cfg.SessionBackend == config.BackendRedis {
		slot := session.NewRedisSlot(session.NewRedisClient(session.RedisOptions{
			Addr:     e.cfg.RedisAddr,
			Password: e.cfg.RedisPassword,
			DB:       e.cfg.RedisDB,
		}))
		e.closers = append(e.closers, slot)
		return slot
	}
	return session.NewFileSlot(e.cfg.ConfigDir)
}

// Close releases connections opened by setup
func (e *env) Close() {
	for _, c := range e.closers {
		c.Close()
	}
}

// cartController builds a controller that confirms destructive changes with
// the user unless --yes was given
func (e *env) cartController() *cart.Controller {
	return cart.New(e.client, e.store, cart.Options{
		Confirmer: confirmer(),
		Notifier:  e.notifier,
	})
}

// handoff builds a checkout handoff for ctrl's cart
func (e *env) handoff(ctrl *cart.Controller, nav checkout.Navigator) *checkout.Handoff {
	return checkout.New(e.client, e.store, ctrl, nav, e.notifier)
}

// fail reports err on w unless a notice already described it, and returns
// the exit code for it.
func (e *env) fail(w io.Writer, err error) int {
	return report(w, err, e.notifier.errored())
}

// report writes err in the selected output format and returns its exit code
func report(w io.Writer, err error, alreadyShown bool) int {
	if IsJSONOutput() {
		fmt.Fprintln(w, toJSON(map[string]string{"error": errorText(err)}))
	} else if !alreadyShown {
		fmt.Fprintf(w, "Error: %s\n", errorText(err))
	}
	return exitCode(err)
}

// exitCode maps an error to the CLI's exit status: 0 ok, 1 the operation was
// refused or declined, 2 connectivity, auth or input problems.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *client.ServerError
	switch {
	case errors.Is(err, client.ErrAuthExpired), errors.Is(err, client.ErrNotAuthenticated):
		return 2
	case errors.Is(err, cart.ErrNotConfirmed),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNoCart),
		errors.Is(err, checkout.ErrInvalidSession),
		errors.As(err, &se):
		return 1
	default:
		return 2
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, client.ErrNotAuthenticated):
		return "not logged in. Run `storefront login` first."
	case errors.Is(err, client.ErrAuthExpired):
		return client.MsgSessionExpired
	case errors.Is(err, cart.ErrNotConfirmed):
		return "cancelled"
	default:
		return err.Error()
	}
}

// toJSON renders v the way every --json command prints its result
func toJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// trackingNotifier forwards notices and remembers whether an error was shown
type trackingNotifier struct {
	next   notice.Notifier
	errors atomic.Int32
}

func (n *trackingNotifier) Notify(level notice.Level, msg string) {
	if level == notice.Error {
		n.errors.Add(1)
	}
	n.next.Notify(level, msg)
}

func (n *trackingNotifier) errored() bool {
	return n.errors.Load() > 0
}
