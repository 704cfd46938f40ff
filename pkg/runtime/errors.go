package runtime

import (
	"errors"
	"fmt"

	"github.com/TechXTT/dbload/pkg/config"
)

var (
	// ErrInvalidHandle is returned when a nil or unconfigured engine is used.
	ErrInvalidHandle = errors.New("runtime: invalid engine handle")
	// ErrSessionClosed is returned by every session call after Close.
	ErrSessionClosed = errors.New("runtime: session is closed")
	// ErrUnsupportedURL is returned when no linked driver serves the URL scheme.
	ErrUnsupportedURL = config.ErrUnsupportedURL
)

// ConnectivityError describes a failed connectivity check. It is reported in
// Connectivity.Err and never returned from Check.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }
