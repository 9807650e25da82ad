package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/betoojeda/tienda-facil/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		a.Log.Error("Background workers failed to start", "error", err)
		return
	}
	if err := a.Run(ctx); err != nil {
		a.Log.Error("Server stopped", "error", err)
		return
	}
	a.Log.Info("Server stopped")
}
