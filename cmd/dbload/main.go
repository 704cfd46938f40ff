package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TechXTT/dbload/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		cli.Exitf("dbload: %v", err)
	}
}
