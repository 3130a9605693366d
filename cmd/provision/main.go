package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bianoble/provision/cmd/provision/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
