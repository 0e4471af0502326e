// File: cmd/prompt_test.go
package cmd

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/formflood/internal/engine"
)

func TestPromptNonEmpty(t *testing.T) {
	t.Run("returns first non-blank line", func(t *testing.T) {
		var out bytes.Buffer
		value, err := promptNonEmpty(strings.NewReader("https://example.com/form\n"), &out, "Enter the survey URL")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/form", value)
		assert.Contains(t, out.String(), "Enter the survey URL: ")
	})

	t.Run("reprompts on blank input", func(t *testing.T) {
		var out bytes.Buffer
		value, err := promptNonEmpty(strings.NewReader("\n   \nfinally\n"), &out, "URL")
		require.NoError(t, err)
		assert.Equal(t, "finally", value)
		assert.Equal(t, 2, strings.Count(out.String(), "Value cannot be empty."))
	})

	t.Run("EOF without input", func(t *testing.T) {
		var out bytes.Buffer
		_, err := promptNonEmpty(strings.NewReader(""), &out, "URL")
		require.ErrorIs(t, err, io.EOF)
	})
}

func TestPromptPositiveInt(t *testing.T) {
	t.Run("accepts a positive integer", func(t *testing.T) {
		var out bytes.Buffer
		n, err := promptPositiveInt(strings.NewReader("25\n"), &out, "Number of submissions")
		require.NoError(t, err)
		assert.Equal(t, 25, n)
	})

	t.Run("reprompts on garbage then zero then negative", func(t *testing.T) {
		var out bytes.Buffer
		n, err := promptPositiveInt(strings.NewReader("lots\n0\n-3\n7\n"), &out, "Count")
		require.NoError(t, err)
		assert.Equal(t, 7, n)
		assert.Contains(t, out.String(), "Invalid number entered.")
		assert.Equal(t, 2, strings.Count(out.String(), "Please enter a positive number."))
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		var out bytes.Buffer
		n, err := promptPositiveInt(strings.NewReader("  12  \n"), &out, "Count")
		require.NoError(t, err)
		assert.Equal(t, 12, n)
	})

	t.Run("EOF without input", func(t *testing.T) {
		var out bytes.Buffer
		_, err := promptPositiveInt(strings.NewReader(""), &out, "Count")
		require.ErrorIs(t, err, io.EOF)
	})
}

func TestPrintSummary(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	printSummary(cmd, engine.Summary{
		TargetURL: "https://docs.google.com/forms/d/e/abc/viewform",
		Requested: 10,
		Attempted: 10,
		Succeeded: 8,
		Failed:    2,
		Elapsed:   4 * time.Second,
		Rate:      2.5,
	})

	text := out.String()
	assert.Contains(t, text, "Submission Summary for: https://docs.google.com/forms/d/e/abc/viewform")
	assert.Contains(t, text, "Total Attempted:  10")
	assert.Contains(t, text, "Successful:       8")
	assert.Contains(t, text, "Failed:           2")
	assert.Contains(t, text, "Total Time:       4.00 seconds")
	assert.Contains(t, text, "Average Rate:     2.50 submissions/second")
}
