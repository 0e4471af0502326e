// File: internal/browser/context.go
package browser

import "context"

// combineContext derives a context from primary that is additionally
// cancelled when secondary is cancelled. Browser operations must respect
// both the session lifecycle and the caller's deadline.
func combineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)

	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}
