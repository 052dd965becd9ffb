package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/doeshing/gitbrew/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCmd(cli.Options{
		Verbose: isVerbose(),
		In:      os.Stdin,
		Out:     os.Stdout,
		Getenv:  os.Getenv,
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("GITBREW_DEBUG"), "1") || strings.EqualFold(os.Getenv("GITBREW_DEBUG"), "true")
}
