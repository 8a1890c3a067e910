// Package render turns HTML documents into fixed-size PDF pages.
package render

import (
	"context"
	"errors"
)

// ErrClosed is returned by Render after the browser has been closed.
var ErrClosed = errors.New("render: browser closed")

// Engine starts browsers. Starting one is expensive; a Browser is meant to
// be reused for every document of a run and closed when the run ends.
type Engine interface {
	Acquire(ctx context.Context) (Browser, error)
}

// Browser renders documents. Render is safe for concurrent use; each call
// gets its own page so concurrent documents cannot see each other.
type Browser interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Close() error
}
