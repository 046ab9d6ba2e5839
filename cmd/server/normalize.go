package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terrpan/acceptjson/internal/acceptjson"
	"github.com/terrpan/acceptjson/internal/config"
)

func newNormalizeCmd() *cobra.Command {
	var (
		quality float64
		force   string
	)

	cmd := &cobra.Command{
		Use:   "normalize [accept-header]",
		Short: "Print an Accept header as the middleware would rewrite it",
		Long: `Print an Accept header as the middleware would rewrite it.

Quality and force default to the accept_json configuration section.`,
		Example: `  acceptjson normalize "text/html,application/xml;q=0.9"
  acceptjson normalize "application/json;q=0.1" --force --quality 0.8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetAcceptJSONConfig()

			opts := acceptjson.Options{
				Quality: cfg.Quality,
				Force:   cfg.Force,
			}

			if cmd.Flags().Changed("quality") {
				opts.Quality = quality
			}

			if cmd.Flags().Changed("force") {
				opts.Force = acceptjson.ParseForce(force)
			}

			var raw string
			if len(args) == 1 {
				raw = args[0]
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), acceptjson.Normalize(raw, opts))
			return err
		},
	}

	cmd.Flags().Float64VarP(&quality, "quality", "q", 1, "q value of the injected application/json entry")
	cmd.Flags().StringVar(&force, "force", "", `inject even when application/json is present (enabled by "force")`)
	cmd.Flags().Lookup("force").NoOptDefVal = "force"

	return cmd
}
