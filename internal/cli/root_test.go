package cli_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/qbzrun/internal"
	"github.com/ryanmoran/qbzrun/internal/cli"
)

type call struct {
	subcommand string
	paths      []string
}

func execute(t *testing.T, args ...string) ([]call, string, error) {
	t.Helper()

	var calls []call
	root := cli.NewRootCommand(func(ctx context.Context, subcommand string, paths []string) error {
		calls = append(calls, call{subcommand: subcommand, paths: paths})
		return nil
	})

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	// A nil slice makes cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))

	err := root.Execute()
	return calls, out.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Run("registers every qbzr command", func(t *testing.T) {
		root := cli.NewRootCommand(func(ctx context.Context, subcommand string, paths []string) error { return nil })

		var names []string
		for _, cmd := range root.Commands() {
			if internal.IsCommand(cmd.Name()) {
				names = append(names, cmd.Name())
			}
		}
		assert.ElementsMatch(t, internal.Commands, names)
	})

	t.Run("passes the subcommand and paths through", func(t *testing.T) {
		calls, _, err := execute(t, "qdiff", "src/main.c", "README")
		require.NoError(t, err)
		require.Len(t, calls, 1)
		assert.Equal(t, "qdiff", calls[0].subcommand)
		assert.Equal(t, []string{"src/main.c", "README"}, calls[0].paths)
	})

	t.Run("accepts no paths", func(t *testing.T) {
		calls, _, err := execute(t, "qlog")
		require.NoError(t, err)
		require.Len(t, calls, 1)
		assert.Empty(t, calls[0].paths)
	})

	t.Run("rejects an unknown subcommand", func(t *testing.T) {
		calls, _, err := execute(t, "qbrowse", ".")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown command "qbrowse"`)
		assert.Empty(t, calls)
	})

	t.Run("fails without a subcommand", func(t *testing.T) {
		calls, _, err := execute(t)
		require.ErrorContains(t, err, "missing qbzr command")
		assert.Contains(t, err.Error(), "qlog, qcommit, qshelve")
		assert.Empty(t, calls)
	})

	t.Run("prints help without running anything", func(t *testing.T) {
		calls, out, err := execute(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "qbzrun launches qbzr inside a docker container")
		assert.Contains(t, out, "qannotate")
		assert.Empty(t, calls)
	})

	t.Run("prints the version", func(t *testing.T) {
		_, out, err := execute(t, "--version")
		require.NoError(t, err)
		assert.Contains(t, out, "dev (commit: none, built: unknown)")
	})
}
