package launch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ryanmoran/qbzrun/internal"
	"github.com/ryanmoran/qbzrun/internal/bzr"
	"github.com/ryanmoran/qbzrun/internal/docker"
)

// ErrUnknownCommand is returned for a subcommand that is not a qbzr command.
var ErrUnknownCommand = errors.New("unknown qbzr command")

// Runtime is the container engine a Launcher drives. docker.Client
// satisfies it.
type Runtime interface {
	EnsureImage(ctx context.Context, name internal.ImageName, w internal.Writer) (docker.Image, error)
	Run(ctx context.Context, sessionID internal.SessionID, image docker.Image, options docker.RunOptions, w internal.Writer) error
}

// IdentityFunc returns the committer identity to configure in the container.
type IdentityFunc func(ctx context.Context) (string, error)

// Request is one invocation: a qbzr subcommand, the user supplied paths and
// the directory they are relative to.
type Request struct {
	Subcommand string
	Paths      []string
	Cwd        string
}

type Launcher struct {
	Config   internal.Config
	Runtime  Runtime
	Identity IdentityFunc
	Session  internal.Session
	Writer   internal.Writer
}

// Launch runs the request to completion. Unknown subcommands, invalid paths,
// a missing repository and image failures are returned as errors before any
// container is created. A failed identity lookup only produces a warning, and
// a failed container run is reported as a warning and otherwise ignored.
func (l Launcher) Launch(ctx context.Context, req Request) error {
	if !internal.IsCommand(req.Subcommand) {
		return fmt.Errorf("%w: %q\nChoose one of %s", ErrUnknownCommand, req.Subcommand, strings.Join(internal.Commands, ", "))
	}

	layout, err := bzr.Discover(req.Paths, req.Cwd)
	if err != nil {
		return err
	}

	image, err := l.Runtime.EnsureImage(ctx, l.Config.ImageName, l.Writer)
	if err != nil {
		return err
	}

	identity, err := l.Identity(ctx)
	if err != nil {
		l.Writer.Warningf("bzr does not know who you are, continuing without an identity: %v", err)
		identity = ""
	}

	options := Plan(l.Config, layout, req.Subcommand, identity)
	if l.Config.Debug {
		l.Writer.Printf("Mount point: %s\n", layout.MountRoot)
		l.Writer.Printf("Running: %s\n", options.CommandLine(image))
	}

	err = l.Runtime.Run(ctx, l.Session.ID(), image, options, l.Writer)
	if err != nil {
		l.Writer.Warningf("failed to run qbzr %s: %v\nSomething went wrong. Check your docker installation.", req.Subcommand, err)
	}

	return nil
}
