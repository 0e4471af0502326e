// File: cmd/submit.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formflood/internal/browser"
	"github.com/xkilldash9x/formflood/internal/engine"
	"github.com/xkilldash9x/formflood/internal/form"
	"github.com/xkilldash9x/formflood/internal/observability"
)

// newSubmitCmd creates and configures the `submit` command.
func newSubmitCmd() *cobra.Command {
	submitCmd := &cobra.Command{
		Use:   "submit [url]",
		Short: "Runs a batch of randomized form submissions against the target URL",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind pool flags to their viper keys so CLI values override the
			// config file and environment with the right precedence.
			if err := viper.BindPFlag("engine.workers", cmd.Flags().Lookup("workers")); err != nil {
				return err
			}
			return viper.BindPFlag("engine.rate_per_second", cmd.Flags().Lookup("rate"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Flag overrides land in viper during PreRunE; re-resolve.
			cfg.Engine.Workers = viper.GetInt("engine.workers")
			cfg.Engine.RatePerSecond = viper.GetFloat64("engine.rate_per_second")

			targetURL, count, err := resolveInputs(cmd, args)
			if err != nil {
				return err
			}

			attempt := func(ctx context.Context) engine.Result {
				session, err := browser.NewSession(ctx, cfg, logger)
				if err != nil {
					logger.Error("Failed to start browser session", zap.Error(err))
					return engine.Result{Err: err}
				}
				submitter := form.NewSubmitter(cfg, logger, session, form.NewGenerator(nil, logger))
				res := submitter.Run(ctx, targetURL)
				return engine.Result{Succeeded: res.Succeeded, Err: res.Err}
			}

			pool := engine.New(cfg, logger, attempt)
			summary, runErr := pool.Run(ctx, targetURL, count)

			printSummary(cmd, summary)

			if output, _ := cmd.Flags().GetString("output"); output != "" {
				if err := engine.WriteSummary(output, summary); err != nil {
					logger.Error("Failed to write summary report", zap.Error(err))
					return err
				}
				logger.Info("Summary report written", zap.String("path", output))
			}

			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					logger.Warn("Operation interrupted by user")
					return fmt.Errorf("batch aborted by user signal: %w", runErr)
				}
				return runErr
			}
			return nil
		},
	}

	submitCmd.Flags().IntP("count", "n", 0, "Number of submissions to make. Prompted for when unset.")
	submitCmd.Flags().IntP("workers", "w", 0, "Concurrent browser sessions. Defaults to half the logical CPUs.")
	submitCmd.Flags().Float64("rate", 0, "Maximum attempt starts per second. 0 disables the limiter.")
	submitCmd.Flags().StringP("output", "o", "", "Path for a JSON summary report. If unset, no report is written.")

	return submitCmd
}

// resolveInputs yields the target URL and submission count, prompting
// interactively for anything missing or invalid.
func resolveInputs(cmd *cobra.Command, args []string) (string, int, error) {
	targetURL := ""
	if len(args) > 0 {
		targetURL = strings.TrimSpace(args[0])
	}
	if targetURL == "" {
		var err error
		targetURL, err = promptNonEmpty(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter the form URL")
		if err != nil {
			return "", 0, fmt.Errorf("failed to read form URL: %w", err)
		}
	}

	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		return "", 0, err
	}
	if count <= 0 {
		count, err = promptPositiveInt(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter the number of submissions to make")
		if err != nil {
			return "", 0, fmt.Errorf("failed to read submission count: %w", err)
		}
	}

	return targetURL, count, nil
}

// printSummary writes the human-readable batch summary block.
func printSummary(cmd *cobra.Command, s engine.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "----------------------------------------")
	fmt.Fprintf(out, "Submission Summary for: %s\n", s.TargetURL)
	fmt.Fprintln(out, "----------------------------------------")
	fmt.Fprintf(out, "Total Attempted:  %d\n", s.Attempted)
	fmt.Fprintf(out, "Successful:       %d\n", s.Succeeded)
	fmt.Fprintf(out, "Failed:           %d\n", s.Failed)
	fmt.Fprintf(out, "Total Time:       %.2f seconds\n", s.Elapsed.Seconds())
	fmt.Fprintf(out, "Average Rate:     %.2f submissions/second\n", s.Rate)
	fmt.Fprintln(out, "----------------------------------------")
}
