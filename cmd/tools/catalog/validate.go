package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the data file and report skipped or suspicious records",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, _, err := opts.snapshot()
			if err != nil {
				return err
			}
			issues := snap.Issues()

			out := cmd.OutOrStdout()
			if opts.asJSON() {
				if err := writeJSON(out, issues); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "%s: %s loaded, %s\n", snap.Source(), plural(snap.Len(), "record"), plural(len(issues), "issue"))
				if len(issues) > 0 {
					t := newTable(out, table.Row{"Record", "ID", "Issue"})
					for _, is := range issues {
						t.AppendRow(table.Row{is.Index, orDash(is.ID), is.Msg})
					}
					t.Render()
				}
			}

			if strict && len(issues) > 0 {
				return fmt.Errorf("%s found", plural(len(issues), "issue"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any issue is found")
	return cmd
}
