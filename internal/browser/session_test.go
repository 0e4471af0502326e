// File: internal/browser/session_test.go
package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraFlags(t *testing.T) {
	t.Run("empty input yields no options", func(t *testing.T) {
		assert.Empty(t, extraFlags(nil))
		assert.Empty(t, extraFlags([]string{}))
	})

	t.Run("skips bare dashes", func(t *testing.T) {
		assert.Empty(t, extraFlags([]string{"--", ""}))
	})

	t.Run("parses boolean and valued flags", func(t *testing.T) {
		opts := extraFlags([]string{
			"--disable-extensions",
			"--window-size=1280,720",
			"proxy-server=localhost:8080",
		})
		// One allocator option per usable argument.
		assert.Len(t, opts, 3)
	})
}

func TestCombineContext_SecondaryCancelPropagates(t *testing.T) {
	secondary, cancelSecondary := context.WithCancel(context.Background())

	combined, cancel := combineContext(context.Background(), secondary)
	defer cancel()

	cancelSecondary()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context not cancelled after secondary cancel")
	}
	assert.True(t, errors.Is(combined.Err(), context.Canceled))
}

func TestCombineContext_PrimaryCancelPropagates(t *testing.T) {
	primary, cancelPrimary := context.WithCancel(context.Background())

	combined, cancel := combineContext(primary, context.Background())
	defer cancel()

	cancelPrimary()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context not cancelled after primary cancel")
	}
}

func TestCombineContext_CancelFuncReleases(t *testing.T) {
	combined, cancel := combineContext(context.Background(), context.Background())

	cancel()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context not cancelled by its own cancel func")
	}
	require.Error(t, combined.Err())
}
