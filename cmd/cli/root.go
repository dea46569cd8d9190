package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wadjakorntonsri/rendium/pkg/app"
	"github.com/wadjakorntonsri/rendium/pkg/config"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
)

type rootFlags struct {
	user    string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:          "rendium-cli",
		Short:        "manage rendium bookmarks from the terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.user, "user", "u", "", "owner email the command acts on")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newImportCmd(flags),
		newExportCmd(flags),
		newExtractCmd(flags),
	)
	return root
}

// withApp opens the app without background enrichment; a CLI run is too
// short-lived for the queue to finish.
func withApp(ctx context.Context, flags *rootFlags, fn func(context.Context, *app.App) error) error {
	cfg := config.Load()
	level := "warn"
	if flags.verbose {
		level = "debug"
	}
	log := logger.New(level, true)
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log, app.Options{DisableEnrichment: true})
	if err != nil {
		return fmt.Errorf("open app: %w", err)
	}
	defer a.Close()

	return fn(ctx, a)
}

func requireUser(flags *rootFlags) error {
	if flags.user == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}

// encode writes v as json or yaml
func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
