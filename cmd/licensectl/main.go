package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"github.com/fatflowers/licensing/internal/app"
	"github.com/fatflowers/licensing/internal/app/cli"
)

// load starts the service graph without the HTTP server or workers.
func load(ctx context.Context) (*cli.Deps, func(), error) {
	var d cli.Deps
	a := fx.New(
		app.Services,
		fx.NopLogger,
		fx.Populate(&d.Keys, &d.Activations, &d.Releases, &d.Payments, &d.Products),
	)
	startCtx, cancel := context.WithTimeout(ctx, app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return nil, nil, fmt.Errorf("failed to start: %w", err)
	}
	stop := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
		defer cancel()
		_ = a.Stop(stopCtx)
	}
	return &d, stop, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(load).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
