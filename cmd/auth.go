package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mysubs/internal/server"
	"github.com/desertthunder/mysubs/internal/shared"
)

const defaultLoginTimeout = 5 * time.Minute

// AuthLogin runs the authorization code flow with a loopback receiver, then fetches the account.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}

	redirect, err := url.Parse(r.config.Google.RedirectURI)
	if err != nil {
		return fmt.Errorf("%w: google.redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(r.manager, state, redirect.Path)
	addr := redirect.Host
	if r.config.Server.Port > 0 {
		addr = r.config.ServerAddr()
	}
	receiver := server.NewReceiver(addr, handler, shared.WithLogger(r.logger, "component", "server"))
	if err := receiver.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := receiver.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("failed to stop redirect receiver", "error", err)
		}
	}()

	consentURL := r.manager.AuthCodeURL(state)
	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL to sign in:\n\n%s\n\n", consentURL)
	} else if err := r.openBrowser(consentURL); err != nil {
		r.logger.Warn("could not open browser", "error", err)
		r.writePlain("Open this URL to sign in:\n\n%s\n\n", consentURL)
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := receiver.Wait(waitCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timed out waiting for sign-in after %s", timeout)
		}
		return err
	}
	return r.greet(ctx)
}

// AuthExchange finishes sign-in from a redirect URL copied out of the browser.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	redirectURL := cmd.StringArg("redirect-url")
	if redirectURL == "" {
		return fmt.Errorf("%w: redirect-url", shared.ErrMissingArgument)
	}
	if err := r.session(ctx); err != nil {
		return err
	}

	if _, err := r.manager.Exchange(ctx, redirectURL); err != nil {
		return err
	}
	return r.greet(ctx)
}

// AuthURL prints the consent URL for manual sign-in.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}
	state := cmd.String("state")
	if state == "" {
		state = shared.GenerateID()
	}
	return r.writePlain("%s\n", r.manager.AuthCodeURL(state))
}

// AuthStatus reports whether a refresh token is stored and, if so, the account it signs in as.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}

	if !r.manager.IsAuthenticated(ctx) {
		return r.writePlain("✗ Not signed in\nRun 'mysubs auth login' to sign in.\n")
	}

	r.writePlain("✓ Signed in\n")
	account, err := r.youtube.Account(ctx)
	if err != nil {
		r.logger.Warn("could not fetch account", "error", err)
		return r.writePlain("Account: unavailable (%v)\n", err)
	}
	return r.writePlain("Account: %s\n", account.Name)
}

// AuthLogout forgets the stored refresh token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session(ctx); err != nil {
		return err
	}
	r.manager.Logout(ctx)
	return r.writePlain("✓ Signed out\n")
}

func (r *Runner) greet(ctx context.Context) error {
	account, err := r.youtube.Account(ctx)
	if err != nil {
		return fmt.Errorf("signed in, but fetching the account failed: %w", err)
	}
	return r.writePlain("✓ Signed in as %s\n", account.Name)
}
