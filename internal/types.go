package internal

import (
	"fmt"

	"github.com/distribution/reference"
)

// SessionID represents a unique session identifier for a container.
type SessionID string

// ImageName is a docker image reference in its familiar form, as the daemon
// reports it in an image's RepoTags (e.g. "akoshakji/qbzr:bionic").
type ImageName string

// ParseImageName normalizes image and applies tag when image names neither a
// tag nor a digest. Fully qualified references such as
// "docker.io/akoshakji/qbzr" are shortened to their familiar form.
func ParseImageName(image, tag string) (ImageName, error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w\nUse the form repository[:tag] or repository@digest", image, err)
	}

	_, tagged := named.(reference.Tagged)
	_, digested := named.(reference.Digested)
	if !tagged && !digested {
		named, err = reference.WithTag(named, tag)
		if err != nil {
			return "", fmt.Errorf("invalid image tag %q: %w", tag, err)
		}
	}

	return ImageName(reference.FamiliarString(named)), nil
}

// Command represents the command and arguments to execute in the container.
type Command []string

// Environment represents environment variables to pass to the container.
type Environment []string
