// File: internal/engine/report.go
package engine

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// report is the on-disk shape of a batch summary.
type report struct {
	GeneratedAt    time.Time `json:"generated_at"`
	Summary        Summary   `json:"summary"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
}

// WriteSummary serializes the batch summary as JSON to path.
func WriteSummary(path string, s Summary) error {
	data, err := json.MarshalIndent(report{
		GeneratedAt:    time.Now().UTC(),
		Summary:        s,
		ElapsedSeconds: s.Elapsed.Seconds(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary report: %w", err)
	}
	return nil
}
