// dredis - a stub server that acknowledges every read with +OK.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dredis/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "dredis: %v\n", err)
		os.Exit(1)
	}
}
