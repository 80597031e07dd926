// Command soundwave keeps perf dashboard records in a local SQLite file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/soundwave/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		// Commands that report through the formatter already printed the error.
		if _, ok := err.(*cli.ExitError); !ok {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
