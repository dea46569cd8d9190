package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/rendium/pkg/app"
	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "write active bookmarks to stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(flags); err != nil {
				return err
			}
			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if format == "html" {
					return a.Transfer.Export(ctx, flags.user, out)
				}
				bs, err := a.Bookmarks.List(ctx, flags.user, domain.BookmarkFilter{})
				if err != nil {
					return err
				}
				return encode(out, format, bs)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "html", "output format: html|json|yaml")
	return cmd
}
