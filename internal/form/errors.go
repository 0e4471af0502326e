// File: internal/form/errors.go
package form

import "errors"

// Error kinds surfaced by a submission attempt. All of them are terminal for
// the attempt that raised them and none of them escape the session boundary;
// Submitter.Run folds every failure into its Result.
var (
	// ErrNavigation indicates the target URL could not be loaded.
	ErrNavigation = errors.New("navigation failed")
	// ErrMissingSubmitControl indicates the page has no submit control.
	ErrMissingSubmitControl = errors.New("submit control not found")
	// ErrConfirmationTimeout indicates the submit was activated but the page
	// never reached the confirmation URL within the bounded wait.
	ErrConfirmationTimeout = errors.New("submission confirmation timed out")
)
