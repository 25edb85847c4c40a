package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/david/sochx/internal/comets"
)

func newCometsCmd(opts *rootOptions) *cobra.Command {
	var (
		width, height, dpr float64
		frames             int
		duration           time.Duration
		seed               uint64
		svgPath            string
	)
	cmd := &cobra.Command{
		Use:   "comets",
		Short: "Render the ambient background headlessly and print its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var renderOpts []comets.Option
			if cmd.Flags().Changed("seed") {
				renderOpts = append(renderOpts, comets.WithRand(rand.New(rand.NewPCG(seed, seed))))
			}
			var (
				canvas *comets.Recorder
				snap   comets.Snapshot
			)
			if duration > 0 {
				ctx, cancel := context.WithTimeout(cmd.Context(), duration)
				canvas, snap = comets.Play(ctx, width, height, dpr, comets.DefaultFrameInterval, renderOpts...)
				cancel()
			} else {
				canvas, snap = comets.Render(width, height, dpr, frames, renderOpts...)
			}

			if svgPath != "" {
				f, err := os.Create(svgPath)
				if err != nil {
					return err
				}
				if err := canvas.WriteSVG(f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if opts.asJSON() {
				return writeJSON(out, snap)
			}

			fmt.Fprintf(out, "profile %s, %gx%g @%gx, %d frames, state %s\n",
				snap.Profile.Name, snap.Width, snap.Height, snap.DPR, snap.Frames, snap.State)
			t := newTable(out, table.Row{"#", "X", "Y", "Length", "Speed", "Opacity"})
			for i, c := range snap.Comets {
				t.AppendRow(table.Row{
					i + 1,
					fmt.Sprintf("%.1f", c.X),
					fmt.Sprintf("%.1f", c.Y),
					fmt.Sprintf("%.1f", c.Length),
					fmt.Sprintf("%.2f", c.Speed),
					fmt.Sprintf("%.2f", c.Opacity),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().Float64Var(&width, "width", 1280, "viewport width in CSS pixels")
	cmd.Flags().Float64Var(&height, "height", 720, "viewport height in CSS pixels")
	cmd.Flags().Float64Var(&dpr, "dpr", 1, "device pixel ratio")
	cmd.Flags().IntVar(&frames, "frames", 60, "frames to advance")
	cmd.Flags().DurationVar(&duration, "duration", 0, "run in real time for this long instead of stepping --frames")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "fix the random seed")
	cmd.Flags().StringVar(&svgPath, "svg", "", "write the last frame to this SVG file")
	return cmd
}
