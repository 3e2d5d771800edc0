// File: internal/interact/errors.go
package interact

import "errors"

// Job-scoped failure taxonomy. Each sentinel is caught at the runner
// boundary, logged against the job, and never aborts the batch. Empty answer
// extraction is deliberately not in this list: it is a soft outcome encoded
// as an empty answer field.
var (
	// ErrNavigationFailed means the page stayed unreachable or blank after
	// the single full retry.
	ErrNavigationFailed = errors.New("navigation failed")
	// ErrComposerNotFound means no interactive input surfaced within the
	// composer deadline, recovery nudges included.
	ErrComposerNotFound = errors.New("composer not found")
	// ErrSendFailed means every keyboard shortcut and send-button candidate
	// was exhausted.
	ErrSendFailed = errors.New("send failed")
)
