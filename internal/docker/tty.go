package docker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moby/moby/client"

	"github.com/ryanmoran/qbzrun/internal"
)

// TerminalSize reports the host terminal's height and width. *streams.Out
// satisfies it; a zero size means there is no terminal.
type TerminalSize interface {
	GetTtySize() (uint, uint)
}

// TTY mirrors the host terminal size onto the TTY of a running qbzr
// container.
type TTY struct {
	client   DockerClient
	terminal TerminalSize
	id       string
	retries  int
	delay    time.Duration
	writer   internal.Writer
}

// NewTTY returns a TTY for container id. The first resize is attempted up to
// retries more times, waiting delay, 2*delay, ... in between, since the
// container may still be starting when it is attached.
func NewTTY(client DockerClient, terminal TerminalSize, id string, retries int, delay time.Duration, writer internal.Writer) TTY {
	return TTY{
		client:   client,
		terminal: terminal,
		id:       id,
		retries:  retries,
		delay:    delay,
		writer:   writer,
	}
}

// Monitor starts following the host terminal in the background and returns
// immediately. It stops when ctx is cancelled. If the first resize never
// succeeds a warning is written and qbzr keeps the default TTY size.
func (t TTY) Monitor(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	go t.follow(ctx, winch)

	return nil
}

func (t TTY) follow(ctx context.Context, winch chan os.Signal) {
	defer signal.Stop(winch)

	if err := t.firstResize(ctx); err != nil && ctx.Err() == nil {
		t.writer.Warningf("failed to resize tty: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-winch:
			_ = t.Resize(ctx)
		}
	}
}

func (t TTY) firstResize(ctx context.Context) error {
	err := t.Resize(ctx)
	for attempt := 1; err != nil && attempt <= t.retries; attempt++ {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(attempt) * t.delay):
		}
		err = t.Resize(ctx)
	}
	return err
}

// Resize sets the container TTY to the current terminal size. It does nothing
// when there is no terminal.
func (t TTY) Resize(ctx context.Context) error {
	height, width := t.terminal.GetTtySize()
	if height == 0 && width == 0 {
		return nil
	}

	_, err := t.client.ContainerResize(ctx, t.id, client.ContainerResizeOptions{
		Height: height,
		Width:  width,
	})
	return err
}
