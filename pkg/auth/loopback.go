package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/logger"
)

var (
	// ErrCanceled means the user declined or abandoned the authorization.
	ErrCanceled      = errors.New("authorization canceled")
	ErrStateMismatch = errors.New("authorization state mismatch")
)

// CodeSource obtains an authorization code from the user for authURL.
type CodeSource interface {
	AuthCode(ctx context.Context, authURL, state string) (string, error)
}

// Loopback captures the provider redirect on a local HTTP listener.
type Loopback struct {
	Port    string
	Timeout time.Duration
	// Open shows authURL to the user. Defaults to printing it.
	Open func(authURL string)
	l    logger.Logger
}

func NewLoopback(port string, l logger.Logger) *Loopback {
	if port == "" {
		port = LocalhostAuthPort
	}
	return &Loopback{
		Port:    port,
		Timeout: 5 * time.Minute,
		Open: func(authURL string) {
			fmt.Printf("Please open the following URL in your browser to authorize dayplan:\n%s\n", authURL)
		},
		l: l,
	}
}

func (lb *Loopback) AuthCode(ctx context.Context, authURL, state string) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", "localhost:"+lb.Port)
	if err != nil {
		return "", fmt.Errorf("failed to start listener on port %s: %w", lb.Port, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler:      callbackHandler(state, codeCh, errCh),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	defer server.Close()

	go func() {
		lb.l.Debug("waiting for oauth redirect", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()

	lb.Open(authURL)

	timeout := time.NewTimer(lb.Timeout)
	defer timeout.Stop()
	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-timeout.C:
		return "", fmt.Errorf("authorization timed out: %w", ErrCanceled)
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
	}
}

func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	report := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("error") != "" {
			fmt.Fprintf(w, "Authorization was not granted. You can close this window.")
			report(fmt.Errorf("%w: %s", ErrCanceled, q.Get("error")))
			return
		}
		if q.Get("state") != state {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			report(ErrStateMismatch)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Authorization code not found", http.StatusBadRequest)
			report(fmt.Errorf("authorization code not found in redirect URL"))
			return
		}
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		select {
		case codeCh <- code:
		default:
		}
	})
}
