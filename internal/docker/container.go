package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/docker/cli/cli/streams"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	"github.com/moby/term"
	"golang.org/x/sync/errgroup"

	"github.com/ryanmoran/qbzrun/internal"
)

type Container struct {
	client DockerClient

	ID          string
	Name        string
	StopTimeout int
	TTYRetries  int
	RetryDelay  time.Duration
}

// Start starts the container. Returns an error if the container fails to start,
// which may indicate a misconfiguration or an unhealthy Docker daemon.
func (c Container) Start(ctx context.Context) error {
	_, err := c.client.ContainerStart(ctx, c.ID, client.ContainerStartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start container %q: %w\nContainer may be misconfigured or Docker daemon may be unhealthy", c.Name, err)
	}

	return nil
}

// Attach connects the local terminal to the container's TTY. qbzr itself is a
// GUI, but bzr may still prompt on the terminal for passwords and passphrases,
// so stdin is forwarded too. The terminal is switched to raw mode only when
// stdin is a terminal. Forwarding runs in the background until the container
// closes the connection or ctx is cancelled.
func (c Container) Attach(ctx context.Context, w internal.Writer) error {
	stdin, stdout, _ := term.StdStreams()
	in := streams.NewIn(stdin)
	out := streams.NewOut(stdout)

	tty := NewTTY(c.client, out, c.ID, c.TTYRetries, c.RetryDelay, w)
	if err := tty.Monitor(ctx); err != nil {
		return fmt.Errorf("failed to monitor tty size: %w", err)
	}

	restore := sync.OnceFunc(func() {
		in.RestoreTerminal()
		out.RestoreTerminal()
	})

	response, err := c.client.ContainerAttach(ctx, c.ID, client.ContainerAttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return fmt.Errorf("failed to attach to container %q: %w\nContainer may have exited prematurely or Docker API is unreachable", c.Name, err)
	}

	if in.IsTerminal() {
		if err := in.SetRawTerminal(); err != nil {
			response.Conn.Close()
			return fmt.Errorf("failed to set stdin to raw terminal mode: %w\nYour terminal may not support TTY operations", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer restore()
		defer response.Conn.Close()

		_, err := io.Copy(response.Conn, in)
		if gctx.Err() != nil {
			return nil
		}
		if err != nil {
			w.Warningf("stdin forwarding error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		defer restore()

		_, err := io.Copy(out, response.Reader)
		if gctx.Err() != nil {
			return nil
		}
		if err != nil && err != io.EOF {
			w.Warningf("output forwarding error: %v", err)
		}
		return nil
	})

	go func() {
		_ = g.Wait()
	}()

	return nil
}

// Wait waits for the container to exit or for an interrupt signal (SIGINT, SIGTERM).
// If a signal is received, it attempts to gracefully stop the container with the configured
// timeout. Returns an error if waiting for the container fails.
func (c Container) Wait(ctx context.Context, w internal.Writer) error {
	wait := c.client.ContainerWait(ctx, c.ID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-wait.Error:
		if err != nil {
			return fmt.Errorf("failed to wait for container %q: %w\nDocker daemon may have encountered an error", c.Name, err)
		}
	case status := <-wait.Result:
		if status.StatusCode != 0 {
			w.Printf("\nqbzr exited with status: %d\n", status.StatusCode)
		}
	case <-sigChan:
		w.Println("\nReceived signal, stopping container...")
		timeout := c.StopTimeout
		_, err := c.client.ContainerStop(context.WithoutCancel(ctx), c.ID, client.ContainerStopOptions{Timeout: &timeout})
		if err != nil {
			w.Warningf("failed to stop container: %v", err)
		}
	}
	return nil
}

// ForceRemove forcibly removes the container from the Docker daemon, even if it is still running.
// Returns an error if the container cannot be removed, which may indicate an inconsistent state.
func (c Container) ForceRemove(ctx context.Context) error {
	_, err := c.client.ContainerRemove(ctx, c.ID, client.ContainerRemoveOptions{
		Force: true,
	})
	if err != nil {
		return fmt.Errorf("failed to force remove container %q: %w\nContainer may be in an inconsistent state", c.Name, err)
	}

	return nil
}
