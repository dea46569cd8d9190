package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/rendium/pkg/app"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "import a Netscape bookmark file (browser export)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(flags); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			return withApp(cmd.Context(), flags, func(ctx context.Context, a *app.App) error {
				summary, err := a.Transfer.Import(ctx, flags.user, string(data))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, folders created %d\n",
					summary.Imported, summary.Skipped, summary.FoldersCreated)
				if !summary.Succeeded() {
					return fmt.Errorf("nothing imported from %s", file)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "bookmark file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
