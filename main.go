// ./main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/formflood/cmd"
	"github.com/xkilldash9x/formflood/internal/observability"
)

// main is the entry point for the formflood CLI.
func main() {
	// A signal-aware context drives graceful shutdown: an interrupt stops
	// dispatch of further attempts and lets in-flight sessions wind down.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
