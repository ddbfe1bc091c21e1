// Package main runs the typeshelf operator CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	admincmd "github.com/louisbranch/typeshelf/internal/cmd/admin"
	"github.com/louisbranch/typeshelf/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := admincmd.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		config.Exitf("typeshelf: %v", err)
	}
}
