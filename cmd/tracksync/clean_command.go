package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracksync/internal/pipeline"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <destination>",
		Short: "Remove partially copied tracks left behind by an interrupted sync",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			dest, destRoot, err := ctx.openDestination(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer dest.Close()

			pipe := pipeline.New(logger, nil)
			removed, err := pipe.Recover(cmd.Context(), dest, destRoot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d partial copies\n", removed)
			return nil
		},
	}
}
