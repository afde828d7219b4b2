package a11ycheck

import (
	"github.com/webyes/a11ycheck/internal/browser"
	"github.com/webyes/a11ycheck/internal/engine"
	"github.com/webyes/a11ycheck/internal/guideline"
)

// Re-exported sentinels so callers can classify failures with errors.Is
// without importing internal packages.
var (
	// ErrFrameLoadTimeout: the session document never reached a ready state
	// within the frame-load bound.
	ErrFrameLoadTimeout = browser.ErrFrameLoadTimeout

	// ErrFrameLoadFailed: navigation to the target URL failed outright.
	ErrFrameLoadFailed = browser.ErrFrameLoadFailed

	// ErrFrameInaccessible: the session document exists but cannot be
	// reached, typically because the site blocks framing or scripting.
	ErrFrameInaccessible = browser.ErrFrameInaccessible

	// ErrEngineLoadTimeout: the rule engine script did not become ready in
	// time.
	ErrEngineLoadTimeout = engine.ErrEngineLoadTimeout

	// ErrEngineLoadFailed: the rule engine script failed to load or parse.
	ErrEngineLoadFailed = engine.ErrEngineLoadFailed

	// ErrGuidelineFetch: the guideline taxonomy could not be fetched. Soft:
	// audits proceed with tag-derived metadata only.
	ErrGuidelineFetch = guideline.ErrGuidelineFetch
)

// DeviceError attributes an audit failure to the device profile being
// scanned. Unwrap reaches the underlying sentinel.
type DeviceError = engine.DeviceError
