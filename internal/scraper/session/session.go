package session

import (
	"context"
	"time"
)

// PageSession abstracts the fetch layer a run drives: navigate, read the
// rendered document, and interact with anti-bot widgets. Implementations
// exist for a local stealth browser and for the remote rendering API.
type PageSession interface {
	// Navigate loads url. With waitFullLoad false the call returns once
	// the document is parsed; with true it waits for the load event and
	// network settle, which defeats lazy-rendered listings.
	Navigate(ctx context.Context, url string, waitFullLoad bool, timeout time.Duration) error

	// HTML returns the current document's serialized markup.
	HTML() (string, error)

	// Title returns the current document title.
	Title() (string, error)

	// CookieHeader renders the session's cookie jar as a Cookie header
	// value, empty when the session carries no cookies.
	CookieHeader() string

	// UserAgent returns the user agent the session presents.
	UserAgent() string

	// DismissChallenge attempts to interact with a verification widget
	// on the current page. Callers re-check the page afterwards; a nil
	// error does not mean the challenge cleared.
	DismissChallenge(ctx context.Context) error

	Close()
}
