package bzr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// WhoAmI asks the bzr client at binary for the configured committer identity,
// e.g. "Jane Doe <jane@example.com>". The output is trimmed of surrounding
// whitespace.
func WhoAmI(ctx context.Context, binary string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, "whoami")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %q: %w\nRun 'bzr whoami \"Your Name <you@example.com>\"' to configure an identity", binary+" whoami", err)
	}

	return strings.TrimSpace(string(output)), nil
}
