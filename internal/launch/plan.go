package launch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/ryanmoran/qbzrun/internal"
	"github.com/ryanmoran/qbzrun/internal/bzr"
	"github.com/ryanmoran/qbzrun/internal/docker"
)

// X11SocketDir holds the X server sockets shared with the container.
const X11SocketDir = "/tmp/.X11-unix"

// Plan builds the container run options that launch "bzr <subcommand>" on the
// layout's targets with the given committer identity.
func Plan(config internal.Config, layout bzr.Layout, subcommand, identity string) docker.RunOptions {
	inner := ShellCommand(identity, layout.ContainerDir(config.WorkingDir), subcommand, layout.Targets)

	return docker.RunOptions{
		Cmd:         internal.Command{"/bin/bash", "-c", inner},
		Env:         Environment(config),
		Binds:       Binds(config, layout),
		User:        config.User.String(),
		WorkingDir:  config.WorkingDir,
		StopTimeout: config.StopTimeout,
		TTYRetries:  config.TTYRetries,
		RetryDelay:  config.RetryDelay,
	}
}

// ShellCommand returns the command run by bash inside the container. The
// identity step is left out when identity is empty.
func ShellCommand(identity, dir, subcommand string, targets []string) string {
	var steps []string
	if identity != "" {
		steps = append(steps, shellquote.Join("bzr", "whoami", identity))
	}
	steps = append(steps, shellquote.Join("cd", dir))
	steps = append(steps, shellquote.Join(append([]string{"bzr", subcommand}, targets...)...))

	return strings.Join(steps, " && ")
}

// Environment returns the variables the GUI needs inside the container,
// followed by any configured extras.
func Environment(config internal.Config) internal.Environment {
	var env internal.Environment
	if config.Display != "" {
		env = append(env, "DISPLAY="+displayName(config.Display))
	}
	if config.Home != "" {
		env = append(env, "HOME="+config.Home)
	}
	return append(env, config.Env...)
}

// displayName rewrites a local display such as ":0" to "unix:0" so X clients
// in the container connect over the shared socket.
func displayName(display string) string {
	if strings.HasPrefix(display, ":") {
		return "unix" + display
	}
	return display
}

// Binds returns the bind mounts for the container: the X11 socket directory,
// the mount root, the host identity files that exist, and any configured
// extras.
func Binds(config internal.Config, layout bzr.Layout) []string {
	binds := []string{
		X11SocketDir + ":" + X11SocketDir,
		layout.MountRoot + ":" + config.WorkingDir,
	}

	for _, file := range identityFiles(config.Home) {
		if _, err := os.Stat(file.path); err == nil {
			bind := file.path + ":" + file.path
			if file.readOnly {
				bind += ":ro"
			}
			binds = append(binds, bind)
		}
	}

	return append(binds, config.Volumes...)
}

type hostFile struct {
	path     string
	readOnly bool
}

// identityFiles lists host files that let the container user resolve its own
// name and reuse the host's bzr and ssh configuration.
func identityFiles(home string) []hostFile {
	files := []hostFile{
		{path: "/etc/passwd", readOnly: true},
		{path: "/etc/group", readOnly: true},
	}
	if home != "" {
		files = append(files,
			hostFile{path: filepath.Join(home, ".bazaar")},
			hostFile{path: filepath.Join(home, ".ssh"), readOnly: true},
		)
	}
	return files
}
