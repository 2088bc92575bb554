package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tracksync/internal/catalog"
	"tracksync/internal/filterscript"
	"tracksync/internal/pipeline"
	"tracksync/internal/reconcile"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var noDelete bool
	var dryRun bool
	var hardlink bool

	cmd := &cobra.Command{
		Use:   "sync <destination>",
		Short: "Reconcile a destination tree with the local catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			source, err := ctx.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer source.Close()

			dest, destRoot, err := ctx.openDestination(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer dest.Close()

			log := logger.With("run_id", uuid.NewString(), "destination", destRoot)
			pipe := pipeline.New(log, newConsoleProgress(cmd.OutOrStdout()))

			// Clear partial copies from an interrupted run before planning,
			// so their track ids are missing from the destination set and
			// get retransferred.
			removed, err := pipe.Recover(cmd.Context(), dest, destRoot)
			if err != nil {
				return err
			}
			if removed > 0 {
				log.Info("removed partial copies from previous run", "count", removed)
			}

			script, err := loadFilter(cmd.Context(), source)
			if err != nil {
				return err
			}
			if script != nil {
				defer script.Close()
			}

			plan, err := reconcile.Compute(cmd.Context(), source, dest, script)
			if err != nil {
				return err
			}

			copies, err := plan.ResolveCopies(cmd.Context(), source, script)
			if err != nil {
				return err
			}
			var deletes []catalog.Track
			if !noDelete {
				deletes, err = plan.ResolveDeletes(cmd.Context(), dest)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, track := range copies {
					fmt.Fprintf(out, "would copy: %s\n", track.String())
				}
				for _, track := range deletes {
					fmt.Fprintf(out, "would delete: %s\n", track.String())
				}
				fmt.Fprintf(out, "Dry run: %d to copy, %d to delete\n", len(copies), len(deletes))
				return nil
			}

			log.Info("reconciliation planned", "copies", len(copies), "deletes", len(deletes))
			for _, track := range copies {
				if err := pipe.ExecuteCopy(cmd.Context(), dest, track, destRoot, hardlink); err != nil {
					return err
				}
			}
			for _, track := range deletes {
				if err := pipe.ExecuteDelete(cmd.Context(), dest, track, destRoot); err != nil {
					return err
				}
			}

			fmt.Fprintf(out, "Synced: copied %d, deleted %d\n", len(copies), len(deletes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDelete, "no-delete", false, "Copy missing tracks but never delete from the destination")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without touching any file")
	cmd.Flags().BoolVar(&hardlink, "link", false, "Hardlink files instead of copying (same filesystem only)")
	return cmd
}

// loadFilter compiles the catalog's stored filter predicate, if any.
func loadFilter(ctx context.Context, source *catalog.Store) (*filterscript.Script, error) {
	text, ok, err := source.GetFilter(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	script, err := filterscript.Compile(text)
	if err != nil {
		return nil, fmt.Errorf("stored filter no longer compiles, fix it with `tracksync filter`: %w", err)
	}
	return script, nil
}
