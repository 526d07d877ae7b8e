package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	startupAttempts = 3
	startupBaseWait = time.Second
)

// startupBackoff returns the pause after failed attempt n (0-based):
// 1s, 2s, 4s, each moved by up to a quarter in either direction.
func startupBackoff(n int) time.Duration {
	base := startupBaseWait << max(n, 0)
	spread := float64(base) / 4
	return base + time.Duration((2*rand.Float64()-1)*spread) // #nosec G404 -- jitter only
}

func alwaysRetry(error) bool { return true }

// isConnectionError reports whether err came from reaching the server rather
// than from the SQL it was asked to run.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var (
		connectErr *pgconn.ConnectError
		netErr     net.Error
	)
	return errors.As(err, &connectErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err)
}

// withRetry runs op up to startupAttempts times. Errors rejected by retryable
// are returned as they are.
func withRetry(ctx context.Context, what string, logger *slog.Logger, retryable func(error) bool, op func() error) error {
	var err error
	for n := 0; n < startupAttempts; n++ {
		if err = op(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if n == startupAttempts-1 {
			break
		}

		wait := startupBackoff(n)
		if logger != nil {
			logger.Warn(what+" failed, retrying",
				slog.Int("attempt", n+1),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%s: %w", what, ctx.Err())
		case <-t.C:
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", what, startupAttempts, err)
}
