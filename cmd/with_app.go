/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"voltway/internal/bootstrap"
	"voltway/internal/bootstrap/logging"
	"voltway/internal/errs"
	"voltway/internal/ports"
	"voltway/internal/usecase/assistant"
	"voltway/internal/usecase/ingest"
	"voltway/internal/usecase/issues"
)

// appDeps carries everything a command may need out of the container.
type appDeps struct {
	App       *bootstrap.App
	Issues    *issues.Service
	Ingest    *ingest.Service
	Assistant *assistant.Service
	Stock     ports.StockRepository
}

func withApp(run func(cmd *cobra.Command, deps appDeps) error) func(cmd *cobra.Command, args []string) error {
	return withAppArgs(func(cmd *cobra.Command, _ []string, deps appDeps) error {
		return run(cmd, deps)
	})
}

func withAppArgs(run func(cmd *cobra.Command, args []string, deps appDeps) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var deps appDeps
		fxApp := fx.New(
			bootstrap.Module,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&deps.App, &deps.Issues, &deps.Ingest, &deps.Assistant, &deps.Stock),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		if err := run(cmd, args, deps); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
