package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/rendium/pkg/app"
)

func newExtractCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "print the title, description and preview image of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app.App) error {
				m, err := a.Extractor.Extract(ctx, args[0])
				if err != nil {
					return err
				}
				return encode(cmd.OutOrStdout(), format, m)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json|yaml")
	return cmd
}
