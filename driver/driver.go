// Package driver owns the browser session lifecycle. A Session moves
// through inactive, starting, active and closing states; pages are only
// handed out while it is active. The concrete implementation drives a
// Chromium instance over CDP; the interfaces exist so the layers above
// can be exercised without a real browser.
package driver

import "context"

// State is the lifecycle state of a Session.
type State int32

const (
	StateInactive State = iota
	StateStarting
	StateActive
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	}
	return "unknown"
}

// Session is a running browser engine that can open pages.
//
// Start is idempotent: calling it on an active session is a no-op.
// After Close the session cannot be restarted.
type Session interface {
	Start(ctx context.Context) error
	NewPage(ctx context.Context) (Page, error)
	Active() bool
	Close() error
}

// Page is one rendered browser tab.
type Page interface {
	// Navigate loads the URL. It does not wait for readiness; call
	// WaitReady after a successful Navigate.
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until the configured load state is reached.
	WaitReady(ctx context.Context) error
	// Eval runs a JS function in the page and decodes its JSON result
	// into out. Pass nil to discard the result.
	Eval(ctx context.Context, js string, out any) error
	// HTML returns the current rendered document markup.
	HTML(ctx context.Context) (string, error)
	// URL returns the page's current location.
	URL() string
	Close() error
}
