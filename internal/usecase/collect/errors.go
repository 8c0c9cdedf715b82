// Package collect implements the collection run use case: fetching site
// listing endpoints, normalizing raw records into articles and recording a
// snapshot plus field-level change history for every run.
package collect

import "errors"

// Sentinel errors shared by the fetch transports and the collection service.
var (
	// ErrInvalidURL flags a malformed endpoint or article URL, or one using
	// a scheme other than http/https.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP flags a URL resolving to a private, loopback or
	// link-local address.
	ErrPrivateIP = errors.New("private address access denied")

	// ErrTooManyRedirects flags a redirect chain longer than the configured
	// maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge flags a response body larger than the configured
	// maximum.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout flags a request that exceeded its deadline.
	ErrTimeout = errors.New("request timeout")

	// ErrInvalidFeed flags feed content that could not be parsed as RSS or
	// Atom.
	ErrInvalidFeed = errors.New("invalid feed format")

	// ErrInvalidPayload flags an endpoint response that is not valid JSON.
	ErrInvalidPayload = errors.New("payload is not valid JSON")

	// ErrExtractionFailed flags an article page with no extractable content.
	ErrExtractionFailed = errors.New("content extraction failed")
)
