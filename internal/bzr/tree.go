package bzr

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MarkerDir is the directory whose presence identifies a Bazaar working tree
// or shared repository.
const MarkerDir = ".bzr"

var (
	ErrInvalidPath        = errors.New("invalid path")
	ErrRepositoryNotFound = errors.New("no bzr repository found")
	ErrOutsideTree        = errors.New("path is outside the bzr working tree")
)

// Layout describes where a set of targets lives and how it maps into the
// container.
type Layout struct {
	// TreeRoot is the innermost directory containing a .bzr marker.
	TreeRoot string

	// MountRoot is the host directory bound into the container. It equals
	// TreeRoot, or its parent when that parent is a shared repository.
	MountRoot string

	// Subpath is TreeRoot relative to MountRoot: "." or the tree's basename.
	Subpath string

	// WorkDir is where the command runs, relative to TreeRoot.
	WorkDir string

	// Targets are the paths handed to the qbzr command, relative to WorkDir.
	Targets []string

	// Shared reports whether TreeRoot sits inside a shared repository.
	Shared bool
}

// ContainerDir returns the slash-separated directory inside the container in
// which the command must run, given the path MountRoot is bound to.
func (l Layout) ContainerDir(base string) string {
	return path.Join(base, filepath.ToSlash(l.Subpath), filepath.ToSlash(l.WorkDir))
}

// ResolveTargets turns paths into cleaned absolute paths, resolving relative
// inputs against cwd. Every path must name an existing file or directory.
// With no paths, the result is cwd itself.
func ResolveTargets(paths []string, cwd string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{cwd}
	}

	targets := make([]string, 0, len(paths))
	for _, p := range paths {
		target := p
		if !filepath.IsAbs(target) {
			target = filepath.Join(cwd, target)
		}
		target = filepath.Clean(target)

		info, err := os.Stat(target)
		if err != nil || !(info.IsDir() || info.Mode().IsRegular()) {
			return nil, fmt.Errorf("%w: %q\nCheck that the file or folder exists", ErrInvalidPath, p)
		}

		targets = append(targets, target)
	}

	return targets, nil
}

// FindTreeRoot walks upward from dir until it finds a directory containing
// MarkerDir. It stops at the filesystem root.
func FindTreeRoot(dir string) (string, error) {
	current := filepath.Clean(dir)
	for {
		if hasMarker(current) {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%w above %q\nRun the command from inside a bzr branch or checkout", ErrRepositoryNotFound, dir)
		}
		current = parent
	}
}

// IsSharedRepository reports whether the parent of root also holds a .bzr
// marker, meaning root is a branch inside a shared repository.
func IsSharedRepository(root string) bool {
	parent := filepath.Dir(root)
	if parent == root {
		return false
	}
	return hasMarker(parent)
}

// Discover resolves paths against cwd and computes the container layout. The
// first target decides the tree root; the remaining targets must live in the
// same tree. When no paths are given, the command runs in cwd with "." as its
// only target.
func Discover(paths []string, cwd string) (Layout, error) {
	targets, err := ResolveTargets(paths, cwd)
	if err != nil {
		return Layout{}, err
	}

	reference := targets[0]
	if info, err := os.Stat(reference); err == nil && !info.IsDir() {
		reference = filepath.Dir(reference)
	}

	root, err := FindTreeRoot(reference)
	if err != nil {
		return Layout{}, err
	}

	layout := Layout{
		TreeRoot:  root,
		MountRoot: root,
		Subpath:   ".",
		WorkDir:   ".",
	}

	if IsSharedRepository(root) {
		layout.MountRoot = filepath.Dir(root)
		layout.Subpath = filepath.Base(root)
		layout.Shared = true
	}

	if len(paths) == 0 {
		workDir, err := Relative(root, targets[0])
		if err != nil {
			return Layout{}, err
		}
		layout.WorkDir = workDir
		layout.Targets = []string{"."}
		return layout, nil
	}

	for _, target := range targets {
		relative, err := Relative(root, target)
		if err != nil {
			return Layout{}, err
		}
		layout.Targets = append(layout.Targets, relative)
	}

	return layout, nil
}

// Relative returns target relative to root in slash form, as it is used on
// the container's command line. It fails when target is not inside root or
// lies in root's control directory.
func Relative(root, target string) (string, error) {
	relative, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not under %q", ErrOutsideTree, target, root)
	}
	if relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is not under %q\nAll paths must belong to the same branch", ErrOutsideTree, target, root)
	}
	if first, _, _ := strings.Cut(relative, string(filepath.Separator)); first == MarkerDir {
		return "", fmt.Errorf("%w: %q is inside the %s control directory of %q", ErrOutsideTree, target, MarkerDir, root)
	}
	return filepath.ToSlash(relative), nil
}

func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerDir))
	return err == nil && info.IsDir()
}
