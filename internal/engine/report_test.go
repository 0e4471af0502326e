// File: internal/engine/report_test.go
package engine_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/formflood/internal/engine"
)

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")

	summary := engine.Summary{
		TargetURL: "https://example.com/form",
		Requested: 10,
		Attempted: 10,
		Succeeded: 8,
		Failed:    2,
		Elapsed:   2 * time.Second,
		Rate:      4.0,
	}
	require.NoError(t, engine.WriteSummary(path, summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		GeneratedAt    time.Time      `json:"generated_at"`
		Summary        engine.Summary `json:"summary"`
		ElapsedSeconds float64        `json:"elapsed_seconds"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, summary, decoded.Summary)
	assert.InDelta(t, 2.0, decoded.ElapsedSeconds, 0.001)
	assert.False(t, decoded.GeneratedAt.IsZero())
}

func TestWriteSummary_BadPath(t *testing.T) {
	err := engine.WriteSummary(filepath.Join(t.TempDir(), "missing", "summary.json"), engine.Summary{})
	assert.Error(t, err)
}
