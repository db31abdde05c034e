package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/lgrosz/climb-catalog/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the schema, then serve the HTTP API",
	RunE:  runServe,
}

// serveAddr is set by the --addr flag.
var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}
	application, err := app.New(cmd.Context(), log, cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		application.Close(ctx)
	}()
	return application.Run(cmd.Context())
}
