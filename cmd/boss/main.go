package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/boss/internal/cmd"
	"github.com/felixgeelhaar/boss/internal/exitcode"
	"github.com/felixgeelhaar/boss/internal/ux"
)

func main() {
	// Create a context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
			exitcode.Exit(exitcode.Interrupted)
		}

		fmt.Fprintln(os.Stderr, ux.RenderError(ux.EnhanceError(err)))
		exitcode.ExitWithError(err)
	}
	exitcode.Exit(exitcode.Success)
}
