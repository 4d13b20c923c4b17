package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhg-platform/taxon/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "taxon",
		Short:   "Taxon - document classification pipeline",
		Version: version,
		Long: `Taxon classifies source and expert documents against a registered
document type vocabulary using an AI model. Commands share the server's
configuration: config.toml plus TAXON_* environment overrides.`,
	}

	rootCmd.AddCommand(cli.ClassifySourceCmd())
	rootCmd.AddCommand(cli.ClassifySourcesCmd())
	rootCmd.AddCommand(cli.ClassifySubjectsCmd())
	rootCmd.AddCommand(cli.ReconcileCmd())
	rootCmd.AddCommand(cli.DocTypesCmd())
	rootCmd.AddCommand(cli.PromptsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
