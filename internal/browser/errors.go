package browser

import "errors"

// ErrFrameLoadTimeout is returned when a session document never reaches a
// ready state within the configured bound.
var ErrFrameLoadTimeout = errors.New("browser: frame load timeout")

// ErrFrameLoadFailed is returned when navigation itself fails.
var ErrFrameLoadFailed = errors.New("browser: frame load failed")

// ErrFrameInaccessible is returned when the page loads but its document
// cannot be evaluated (framing blocked, crashed renderer, opaque origin).
var ErrFrameInaccessible = errors.New("browser: frame document inaccessible")
