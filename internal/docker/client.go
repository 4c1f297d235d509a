package docker

import (
	"context"
	"fmt"

	"github.com/distribution/reference"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"

	"github.com/ryanmoran/qbzrun/internal"
)

type Image struct {
	Name string
}

type Client struct {
	client DockerClient
	puller Puller
}

// NewClient creates a Client that wraps the provided Docker client interface.
// Missing images are pulled with the docker CLI.
func NewClient(dockerClient DockerClient) Client {
	return Client{
		client: dockerClient,
		puller: CLIPuller{Binary: "docker"},
	}
}

// NewDefaultClient creates a Client with a real Docker client from the environment.
func NewDefaultClient() (Client, error) {
	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return Client{}, fmt.Errorf("failed to create docker client: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}

	return NewClient(cli), nil
}

// WithPuller returns a copy of the client that pulls missing images with p.
func (c Client) WithPuller(p Puller) Client {
	c.puller = p
	return c
}

// Close closes the underlying Docker client connection.
func (c Client) Close() {
	c.client.Close()
}

// HasImage reports whether an image matching name exists locally. Tags and
// digests are compared after normalization, so "docker.io/akoshakji/qbzr"
// and "akoshakji/qbzr:latest" name the same image.
func (c Client) HasImage(ctx context.Context, name internal.ImageName) (bool, error) {
	want, err := reference.ParseNormalizedNamed(string(name))
	if err != nil {
		return false, fmt.Errorf("invalid image reference %q: %w", name, err)
	}
	want = reference.TagNameOnly(want)

	result, err := c.client.ImageList(ctx, client.ImageListOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to list docker images: %w\nCheck your docker installation", err)
	}

	for _, summary := range result.Items {
		refs := append(append([]string{}, summary.RepoTags...), summary.RepoDigests...)
		for _, ref := range refs {
			have, err := reference.ParseNormalizedNamed(ref)
			if err != nil {
				// Dangling images are listed as "<none>:<none>".
				continue
			}
			if reference.FamiliarString(have) == reference.FamiliarString(want) {
				return true, nil
			}
		}
	}

	return false, nil
}

// EnsureImage makes sure the image is available locally, pulling it when it
// is missing. Listing and pull failures are both fatal to the caller.
func (c Client) EnsureImage(ctx context.Context, name internal.ImageName, w internal.Writer) (Image, error) {
	found, err := c.HasImage(ctx, name)
	if err != nil {
		return Image{}, err
	}

	if !found {
		w.Printf("Pulling %s from docker...\n", name)
		if err := c.puller.Pull(ctx, name, w); err != nil {
			return Image{}, fmt.Errorf("failed to pull image %q: %w\nRun 'docker login' first", name, err)
		}
	}

	return Image{Name: string(name)}, nil
}

// CreateContainer creates a container from image with a TTY and stdin
// attached, running as options.User with options.Binds mounted. Returns a
// Container handle or an error if creation fails.
func (c Client) CreateContainer(ctx context.Context, sessionID internal.SessionID, image Image, options RunOptions) (Container, error) {
	response, err := c.client.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config: &container.Config{
			Image:        image.Name,
			Cmd:          []string(options.Cmd),
			Tty:          true,
			OpenStdin:    true,
			AttachStdin:  true,
			AttachStdout: true,
			AttachStderr: true,
			Env:          []string(options.Env),
			User:         options.User,
			WorkingDir:   options.WorkingDir,
		},
		HostConfig: &container.HostConfig{
			Binds: options.Binds,
		},
		Name: string(sessionID),
	})
	if err != nil {
		return Container{}, fmt.Errorf("failed to create container %q from image %q: %w\nEnsure image exists and container config is valid", sessionID, image.Name, err)
	}

	return Container{
		ID:          response.ID,
		Name:        string(sessionID),
		client:      c.client,
		StopTimeout: options.StopTimeout,
		TTYRetries:  options.TTYRetries,
		RetryDelay:  options.RetryDelay,
	}, nil
}

// Run creates the container, starts it, attaches the terminal and blocks
// until it exits. The container is always removed before Run returns.
func (c Client) Run(ctx context.Context, sessionID internal.SessionID, image Image, options RunOptions, w internal.Writer) error {
	ctr, err := c.CreateContainer(ctx, sessionID, image, options)
	if err != nil {
		return err
	}
	defer func() {
		if err := ctr.ForceRemove(context.WithoutCancel(ctx)); err != nil {
			w.Warningf("%v", err)
		}
	}()

	if err := ctr.Start(ctx); err != nil {
		return err
	}

	if err := ctr.Attach(ctx, w); err != nil {
		return err
	}

	return ctr.Wait(ctx, w)
}
