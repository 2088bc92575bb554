package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracksync/internal/dupes"
)

func newDupesCommand(ctx *commandContext) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Report albums that appear to be stored more than once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Dupes.SimilarityThreshold
			}

			store, err := ctx.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			detector := dupes.New(store, logger, threshold)
			report, err := detector.Find(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Fuzzy) == 0 && len(report.Exact) == 0 {
				fmt.Fprintln(out, "No duplicate albums found")
				return nil
			}

			if len(report.Fuzzy) > 0 {
				rows := make([][]string, 0, len(report.Fuzzy))
				for _, pair := range report.Fuzzy {
					rows = append(rows, []string{
						pair.AlbumA,
						pair.DirectoryA,
						pair.FormatA,
						pair.AlbumB,
						pair.DirectoryB,
						pair.FormatB,
						scoreCell(pair.Score),
					})
				}
				fmt.Fprintln(out, "Similar album names:")
				fmt.Fprintln(out, renderTable(
					[]string{"Album", "Location", "Format", "Album", "Location", "Format", "Score"},
					rows,
					6,
				))
			}

			if len(report.Exact) > 0 {
				rows := make([][]string, 0, len(report.Exact))
				for _, group := range report.Exact {
					for _, loc := range group.Locations {
						rows = append(rows, []string{
							group.Artist,
							group.Title,
							loc.Extension,
							loc.Directory,
						})
					}
				}
				fmt.Fprintln(out, "Albums stored in multiple formats:")
				fmt.Fprintln(out, renderTable(
					[]string{"Artist", "Album", "Format", "Location"},
					rows,
				))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", dupes.DefaultThreshold, "Minimum similarity score for fuzzy matches")
	return cmd
}
