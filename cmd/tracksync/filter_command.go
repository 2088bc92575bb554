package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tracksync/internal/catalog"
	"tracksync/internal/filterscript"
)

//go:embed default_filter.lua
var defaultFilterScript string

func newFilterCommand(ctx *commandContext) *cobra.Command {
	var readOnly bool
	var fromFile string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Edit the predicate that excludes tracks from sync",
		Long: "Opens the stored filter script in $EDITOR. The script must define\n" +
			"a function filter(track) returning true for tracks to exclude.\n" +
			"Scripts that fail to compile are rejected and never stored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			current, exists, err := store.GetFilter(cmd.Context())
			if err != nil {
				return err
			}

			if readOnly {
				// With nothing stored the default script is the effective
				// filter, so that is what gets echoed.
				if !exists {
					current = defaultFilterScript
				}
				fmt.Fprint(cmd.OutOrStdout(), current)
				return nil
			}

			var next string
			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read filter script: %w", err)
				}
				next = string(data)
			} else {
				seed := current
				if !exists {
					seed = defaultFilterScript
				}
				next, err = editInEditor(seed)
				if err != nil {
					return err
				}
			}

			if err := filterscript.Validate(next); err != nil {
				return err
			}
			if err := store.SetFilter(cmd.Context(), next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Filter saved")
			return warnOnEmptyResult(cmd, store, next)
		},
	}

	cmd.Flags().BoolVar(&readOnly, "read", false, "Print the stored filter script and exit")
	cmd.Flags().StringVar(&fromFile, "file", "", "Load the filter script from a file instead of $EDITOR")
	return cmd
}

// editInEditor round-trips the script text through the user's editor.
func editInEditor(seed string) (string, error) {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}

	dir, err := os.MkdirTemp("", "tracksync-filter-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "filter.lua")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		return "", err
	}

	parts := strings.Fields(editor)
	parts = append(parts, path)
	editCmd := exec.Command(parts[0], parts[1:]...)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s: %w", editor, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(edited), nil
}

// warnOnEmptyResult flags filters that would exclude the whole catalog,
// which usually means an inverted predicate.
func warnOnEmptyResult(cmd *cobra.Command, store *catalog.Store, source string) error {
	script, err := filterscript.Compile(source)
	if err != nil {
		return err
	}
	defer script.Close()

	tracks, err := store.TracksByState(cmd.Context(), catalog.StateCopied)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return nil
	}
	for _, track := range tracks {
		excluded, err := script.Evaluate(filterscript.TrackAttributes{
			Title:      track.Title,
			Artist:     track.Artist,
			Album:      track.Album,
			Number:     track.Number,
			FilePath:   track.FilePath,
			DiscNumber: track.DiscNumber,
			DiscTotal:  track.DiscTotal,
			Extension:  track.Extension,
		})
		if err != nil {
			return err
		}
		if !excluded {
			return nil
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Warning: the filter excludes every track in the catalog")
	return nil
}
