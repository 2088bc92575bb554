package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <directory>...",
		Short: "Scan directories and add their tracks to the local catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := make([]string, 0, len(args))
			for _, arg := range args {
				root, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve path: %w", err)
				}
				info, err := os.Stat(root)
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("directory does not exist: %s", root)
					}
					return fmt.Errorf("inspect path: %w", err)
				}
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", root)
				}
				roots = append(roots, root)
			}

			sc, store, err := ctx.newScanner(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := sc.Scan(cmd.Context(), roots)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d tracks (%d already cataloged)\n", stats.Added, stats.Duplicates)
			return nil
		},
	}
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Rescan previously added directories and prune missing files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, store, err := ctx.newScanner(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := sc.Update(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d tracks, pruned %d missing entries\n", stats.Added, stats.Pruned)
			return nil
		},
	}
}
