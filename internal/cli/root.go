// Package cli implements itemfilterctl, an offline runner for filter views.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/itemfilter/internal/version"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config string
	Format string // "text" | "json"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the itemfilterctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "itemfilterctl",
		Short:   "Run item filter views against a catalog file",
		Version: version.String(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "config/local.yaml", "file with a views section")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewViewsCommand(opts))

	return cmd
}
