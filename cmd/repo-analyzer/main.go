// Package main provides the entry point for the repo-analyzer CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/Sumatoshi-tech/repo-analyzer/cmd/repo-analyzer/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := fang.Execute(ctx, commands.NewRootCommand())

	stop()

	os.Exit(commands.ExitCode(err))
}
