package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/david/sochx/internal/query"
)

type filterFlags struct {
	grades     []string
	categories []string
	formats    []string
	seasons    []string
	paid       []string
	types      []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.grades, "grade", nil, "grade filter (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "category filter")
	cmd.Flags().StringSliceVar(&f.formats, "format", nil, "format filter")
	cmd.Flags().StringSliceVar(&f.seasons, "season", nil, "season filter")
	cmd.Flags().StringSliceVar(&f.paid, "paid", nil, "paid status filter")
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "type filter (Others selects every other type)")
}

func (f *filterFlags) filters() query.Filters {
	return query.Filters{
		Grades:     f.grades,
		Categories: f.categories,
		Formats:    f.formats,
		Seasons:    f.seasons,
		PaidStatus: f.paid,
		Types:      f.types,
	}
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var (
		flags filterFlags
		at    string
	)
	cmd := &cobra.Command{
		Use:   "query [search terms...]",
		Short: "Search and filter opportunities in deadline order",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, cfg, err := opts.snapshot()
			if err != nil {
				return err
			}
			now := time.Now()
			if at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("--now: %w", err)
				}
			}

			engine := query.Engine{UrgentWindow: cfg.UrgentWindow()}
			result := engine.RunAt(snap.All(), query.Request{
				Query:   strings.Join(args, " "),
				Filters: flags.filters(),
			}, now)

			out := cmd.OutOrStdout()
			if opts.asJSON() {
				return writeJSON(out, result)
			}

			t := newTable(out, table.Row{"#", "Title", "Type", "Season", "Next deadline", "Urgent"})
			for i, it := range result.Items {
				deadline := "-"
				if it.Deadline != nil {
					deadline = it.Deadline.Format(time.DateOnly)
				}
				urgent := ""
				if it.Urgent {
					urgent = "yes"
				}
				t.AppendRow(table.Row{i + 1, it.Opportunity.Title, orDash(it.Opportunity.Type), orDash(it.Opportunity.Season), deadline, urgent})
			}
			t.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d", result.Matched(), result.Total)})
			t.Render()
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&at, "now", "", "evaluate urgency at this RFC3339 time instead of the wall clock")
	return cmd
}

func newFacetsCmd(opts *rootOptions) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "facets [search terms...]",
		Short: "Show per-option counts over the current result",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, cfg, err := opts.snapshot()
			if err != nil {
				return err
			}
			req := query.Request{Query: strings.Join(args, " "), Filters: flags.filters()}
			result := query.Engine{UrgentWindow: cfg.UrgentWindow()}.Run(snap.All(), req)
			counts := query.CountOptions(result.Items, req.Filters)

			out := cmd.OutOrStdout()
			if opts.asJSON() {
				return writeJSON(out, counts)
			}

			t := newTable(out, table.Row{"Facet", "Option", "Count", "Selected"})
			for _, fc := range counts {
				for _, o := range fc.Options {
					selected := ""
					if o.Selected {
						selected = "*"
					}
					t.AppendRow(table.Row{fc.Facet, o.Value, o.Count, selected})
				}
				t.AppendSeparator()
			}
			t.AppendFooter(table.Row{"Active filters", req.Filters.ActiveCount(), plural(result.Matched(), "match"), ""})
			t.Render()
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
