package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mysubs/internal/models"
)

// Receiver serves an [OAuthHandler] on a loopback address until one callback arrives.
type Receiver struct {
	addr     string
	handler  *OAuthHandler
	srv      *http.Server
	listener net.Listener
	errs     chan error
	logger   *log.Logger
}

// NewReceiver wires handler into a [BasicRouter] with logging and panic recovery.
func NewReceiver(addr string, handler *OAuthHandler, logger *log.Logger) *Receiver {
	router := NewBasicRouter()
	router.Use(RecoverMiddleware(logger), LoggingMiddleware(logger))
	router.Handler(handler)

	return &Receiver{
		addr:    addr,
		handler: handler,
		srv:     &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		errs:    make(chan error, 1),
		logger:  logger,
	}
}

// Start binds the listener and serves in the background. Bind failures are returned immediately.
func (rc *Receiver) Start() error {
	ln, err := net.Listen("tcp", rc.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", rc.addr, err)
	}
	rc.listener = ln

	go func() {
		rc.logger.Info("waiting for OAuth redirect", "addr", ln.Addr().String())
		if err := rc.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rc.errs <- err
		}
	}()
	return nil
}

// Addr is the bound address, useful when started on port 0.
func (rc *Receiver) Addr() string {
	if rc.listener == nil {
		return rc.addr
	}
	return rc.listener.Addr().String()
}

// Wait blocks until the callback was handled, the server failed, or ctx ended.
func (rc *Receiver) Wait(ctx context.Context) (*models.Credential, error) {
	select {
	case result := <-rc.handler.Result():
		if err := result.Error(); err != nil {
			return nil, fmt.Errorf("authorization failed: %w", err)
		}
		if result.Credential == nil {
			return nil, fmt.Errorf("no credential received")
		}
		return result.Credential, nil
	case err := <-rc.errs:
		return nil, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops the server, waiting for the in-flight callback response to finish.
func (rc *Receiver) Shutdown(ctx context.Context) error {
	return rc.srv.Shutdown(ctx)
}
