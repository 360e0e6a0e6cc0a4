// Command turnkit runs, inspects and tests turn-based games.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/turnkit/internal/cli"
	"github.com/roach88/turnkit/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "turnkit: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := cli.NewRootCommand(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "turnkit: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
