/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	httpapi "voltway/internal/api/http"
	"voltway/internal/bootstrap/logging"
	"voltway/internal/errs"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant and store read API over HTTP",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr := serveAddr
		if addr == "" {
			addr = deps.App.Config.HTTP.Addr
		}

		server := httpapi.NewServer(deps.Assistant, deps.Issues, deps.Stock, deps.App.Config.Planning.LowStockThreshold)
		if err := server.Run(ctx, addr); err != nil {
			return errs.Wrap(err, "run http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to http.addr from config)")
}
