// Package cli defines the cobra command tree for qbzrun.
//
// Every supported qbzr command is a subcommand of the root; all of them
// accept zero or more paths and hand off to the same RunFunc.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryanmoran/qbzrun/internal"
)

// Version, Commit and Date are set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RunFunc launches subcommand against paths.
type RunFunc func(ctx context.Context, subcommand string, paths []string) error

var descriptions = map[string]string{
	"qlog":       "Show the revision history",
	"qcommit":    "Commit changes in the working tree",
	"qshelve":    "Shelve selected changes away",
	"qannotate":  "Show who last changed each line of a file",
	"qdiff":      "Show differences in the working tree",
	"qadd":       "Add unversioned files",
	"qconflicts": "Show and resolve conflicts",
}

// NewRootCommand creates the root command with one subcommand per entry in
// internal.Commands.
func NewRootCommand(run RunFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "qbzrun <command> [path ...]",
		Short: "Run qbzr using a docker container",
		Long: `qbzrun launches qbzr inside a docker container against the bzr branch that
contains the given paths (or the current directory). The branch, or the shared
repository holding it, is mounted into the container and the GUI is shown on
the host X display. The container is removed when qbzr exits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("missing qbzr command\nChoose one of %s", strings.Join(internal.Commands, ", "))
		},
	}

	for _, name := range internal.Commands {
		root.AddCommand(newQCommand(name, run))
	}

	return root
}

func newQCommand(name string, run RunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [path ...]",
		Short: descriptions[name],
		Long: fmt.Sprintf(`%s.

Each path must be a file or folder inside a bzr branch. Without paths the
current directory is used.`, descriptions[name]),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), name, args)
		},
	}
}
