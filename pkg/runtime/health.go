package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// pinnedCheckTimeout bounds checks on single-connection engines when no
// timeout is configured; an open session transaction holds the connection
// until it ends.
const pinnedCheckTimeout = time.Second

// Connectivity is the outcome of a connectivity check.
type Connectivity struct {
	URL     string
	OK      bool
	Err     *ConnectivityError
	Elapsed time.Duration
}

// Message is the human-readable line reported for the check.
func (c Connectivity) Message() string {
	if c.OK {
		return fmt.Sprintf("Connection to database '%s' succeeded.", c.URL)
	}
	if c.Err == nil {
		return "Error connecting to database: no check was run"
	}
	return fmt.Sprintf("Error connecting to database: %v", c.Err.Err)
}

// Check borrows one connection from the engine, runs SELECT 1 and releases
// it. Failures are reported in the result and logged, never returned.
// A positive timeout bounds the whole round trip. Without one, checks on an
// in-memory engine still give up after pinnedCheckTimeout.
func Check(ctx context.Context, e *Engine, timeout time.Duration, logger *slog.Logger) (res Connectivity) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	if e != nil {
		res.URL = e.url
	}
	defer func() {
		// Driver panics are reported as failures.
		if r := recover(); r != nil {
			res.OK = false
			res.Err = &ConnectivityError{URL: res.URL, Err: fmt.Errorf("panic: %v", r)}
		}
		res.Elapsed = time.Since(start)
		if res.OK {
			logger.Info("database reachable", "url", res.URL, "elapsed", res.Elapsed)
		} else {
			logger.Error("database unreachable", "url", res.URL, "error", res.Err.Err)
		}
	}()

	if err := ping(ctx, e, timeout); err != nil {
		res.Err = &ConnectivityError{URL: res.URL, Err: err}
		return res
	}
	res.OK = true
	return res
}

func ping(ctx context.Context, e *Engine, timeout time.Duration) error {
	if !e.valid() {
		return ErrInvalidHandle
	}
	if timeout <= 0 && e.pinned {
		timeout = pinnedCheckTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	conn, err := e.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var one int
	if err := conn.QueryRowxContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return err
	}
	return nil
}
