package docker

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/ryanmoran/qbzrun/internal"
)

// Puller fetches an image into the local image store.
type Puller interface {
	Pull(ctx context.Context, name internal.ImageName, w internal.Writer) error
}

// CLIPuller pulls images with the docker CLI, so registry credentials stored
// by 'docker login' are used without this program reading them.
type CLIPuller struct {
	Binary string
}

// Pull runs "<binary> pull <name>" and streams its progress to w.
func (p CLIPuller) Pull(ctx context.Context, name internal.ImageName, w internal.Writer) error {
	binary := p.Binary
	if binary == "" {
		binary = "docker"
	}

	cmd := exec.CommandContext(ctx, binary, "pull", string(name))
	cmd.Stdout = w.GetWriter()
	cmd.Stderr = w.GetWriter()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s pull %s: %w", binary, name, err)
	}

	return nil
}
