// Command catalog inspects the opportunity data file from the terminal: it
// runs queries, prints facet counts, validates records and renders the
// ambient effect headlessly.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/david/sochx/internal/catalog"
	"github.com/david/sochx/internal/config"
)

type rootOptions struct {
	configPath string
	dataPath   string
	output     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "catalog",
		Short:        "Inspect the SochX opportunity catalog",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "sochx.yaml", "optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.dataPath, "data", "", "opportunities JSON file (default from config)")
	rootCmd.PersistentFlags().StringVar(&opts.output, "output", "text", "output format: text|json")

	rootCmd.AddCommand(newQueryCmd(opts))
	rootCmd.AddCommand(newFacetsCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newCometsCmd(opts))
	rootCmd.AddCommand(newHashCmd())
	return rootCmd
}

func (o *rootOptions) config() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.dataPath != "" {
		cfg.OpportunitiesPath = o.dataPath
	}
	return cfg, nil
}

func (o *rootOptions) snapshot() (*catalog.Snapshot, config.Config, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, cfg, err
	}
	snap, err := catalog.LoadFile(cfg.OpportunitiesPath)
	return snap, cfg, err
}

func (o *rootOptions) asJSON() bool {
	return o.output == "json"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(header)
	return t
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
