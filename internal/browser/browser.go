// Package browser acquires headless browser handles and exposes the small page
// surface the fulfillment workflow drives.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrNoCandidate     = errors.New("no selector candidate matched")
)

// AcquisitionError reports that no usable browser could be started.
type AcquisitionError struct {
	Op  string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("browser %s: %v", e.Op, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

type Acquirer interface {
	Acquire(ctx context.Context) (Handle, error)
}

// Handle owns one browser process. Callers must Close it on every path.
type Handle interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

type Page interface {
	SetExtraHeaders(headers map[string]string) error
	// Navigate loads url and waits until the network has been idle for idle.
	Navigate(ctx context.Context, url string, idle time.Duration) error
	Content(ctx context.Context) (string, error)
	// Find waits up to wait for sel to appear. A zero wait is a single lookup.
	// A miss returns ErrElementNotFound.
	Find(ctx context.Context, sel Selector, wait time.Duration) (Element, error)
}

type Element interface {
	Type(ctx context.Context, text string) error
	Click(ctx context.Context) error
}
