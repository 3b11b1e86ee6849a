package main

import (
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtg-price-finder/internal/api"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			server := api.NewServer(&api.Config{
				Addr:           cfg.Addr(),
				AllowedOrigins: cfg.Server.AllowedOrigins,
			}, &api.Services{
				Catalog:      a.catalog,
				Aggregator:   a.aggregator,
				Orchestrator: a.orchestrator,
				Currency:     a.converter,
				Metrics:      a.metrics,
			})
			return server.ListenAndServe(ctx)
		},
	}
}
