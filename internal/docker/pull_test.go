package docker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/qbzrun/internal/docker"
)

func fakeDocker(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "docker")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestCLIPuller(t *testing.T) {
	t.Run("runs docker pull and streams its output", func(t *testing.T) {
		binary := fakeDocker(t, `echo "$1 $2"
echo "Status: Downloaded newer image" >&2
`)

		writer := newMockWriter()
		err := docker.CLIPuller{Binary: binary}.Pull(context.Background(), "akoshakji/qbzr:bionic", writer)
		require.NoError(t, err)
		assert.Contains(t, writer.String(), "pull akoshakji/qbzr:bionic")
		assert.Contains(t, writer.String(), "Downloaded newer image")
	})

	t.Run("fails when docker pull exits non-zero", func(t *testing.T) {
		binary := fakeDocker(t, "exit 1\n")

		err := docker.CLIPuller{Binary: binary}.Pull(context.Background(), "akoshakji/qbzr:bionic", newMockWriter())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pull akoshakji/qbzr:bionic")
	})
}
