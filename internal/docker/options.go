package docker

import (
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/ryanmoran/qbzrun/internal"
)

// RunOptions holds everything needed to run one container.
type RunOptions struct {
	Cmd        internal.Command
	Env        internal.Environment
	Binds      []string
	User       string
	WorkingDir string

	StopTimeout int
	TTYRetries  int
	RetryDelay  time.Duration
}

// CommandLine renders the docker CLI invocation equivalent to running image
// with these options, with every word shell-quoted.
func (o RunOptions) CommandLine(image Image) string {
	words := []string{"docker", "run", "--rm", "-it"}
	for _, env := range o.Env {
		words = append(words, "-e", env)
	}
	if o.User != "" {
		words = append(words, "--user", o.User)
	}
	for _, bind := range o.Binds {
		words = append(words, "-v", bind)
	}
	if o.WorkingDir != "" {
		words = append(words, "-w", o.WorkingDir)
	}
	words = append(words, image.Name)
	words = append(words, o.Cmd...)

	return shellquote.Join(words...)
}
