package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultImage is the repository of the published qbzr image.
	DefaultImage = "akoshakji/qbzr"

	// DefaultTag is the tag of DefaultImage that ships a working qbzr.
	DefaultTag = "bionic"

	// DefaultWorkDir is where the mount root is bound inside the container.
	DefaultWorkDir = "/workdir"

	// DefaultStopTimeout is the timeout in seconds for gracefully stopping a container
	// before forcefully killing it.
	DefaultStopTimeout = 10

	// DefaultTTYRetries is the number of retry attempts for initial TTY resize operations.
	// The container may not be fully ready when we first try to resize, so we retry
	// multiple times with increasing delays.
	DefaultTTYRetries = 10

	// DefaultRetryDelay is the base delay between TTY resize retry attempts.
	// Each retry multiplies this by (retry+1): 10ms, 20ms, 30ms, etc.
	DefaultRetryDelay = 10 * time.Millisecond
)

// Commands lists the qbzr commands that can be launched.
var Commands = []string{"qlog", "qcommit", "qshelve", "qannotate", "qdiff", "qadd", "qconflicts"}

// IsCommand reports whether name is one of Commands.
func IsCommand(name string) bool {
	for _, command := range Commands {
		if command == name {
			return true
		}
	}
	return false
}

type Config struct {
	ImageName   ImageName
	WorkingDir  string
	StopTimeout int
	TTYRetries  int
	RetryDelay  time.Duration
	Debug       bool

	Display string
	Home    string
	User    HostUser

	Env     Environment
	Volumes []string
}

// HostUser is the numeric identity the container process runs as, so files
// written into the mounted repository stay owned by the caller.
type HostUser struct {
	UID int
	GID int
}

// CurrentUser returns the uid and gid of the running process.
func CurrentUser() HostUser {
	return HostUser{UID: os.Getuid(), GID: os.Getgid()}
}

// String formats the user the way docker expects it in --user.
func (u HostUser) String() string {
	return fmt.Sprintf("%d:%d", u.UID, u.GID)
}

// FileConfig mirrors the optional YAML configuration file.
type FileConfig struct {
	Image   string   `yaml:"image"`
	Tag     string   `yaml:"tag"`
	Volumes []string `yaml:"volumes"`
	Env     []string `yaml:"env"`
}

// LoadFileConfig reads the YAML configuration at path. A missing file is not
// an error and yields an empty FileConfig.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("failed to read config file %q: %w\nCheck that the file is readable", path, err)
	}

	if err := yaml.Unmarshal(content, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file %q: %w\nThe file must be valid YAML with image, tag, volumes and env keys", path, err)
	}

	return fc, nil
}

// ConfigPath returns the location of the configuration file: $QBZRUN_CONFIG,
// then $XDG_CONFIG_HOME/qbzrun/config.yaml, then $HOME/.config/qbzrun/config.yaml.
// It returns an empty string when none of those variables are set.
func ConfigPath(lookup map[string]string) string {
	if path := lookup["QBZRUN_CONFIG"]; path != "" {
		return path
	}
	if dir := lookup["XDG_CONFIG_HOME"]; dir != "" {
		return filepath.Join(dir, "qbzrun", "config.yaml")
	}
	if home := lookup["HOME"]; home != "" {
		return filepath.Join(home, ".config", "qbzrun", "config.yaml")
	}
	return ""
}

// ParseConfig builds the run configuration from built-in defaults, the
// optional YAML file and environment variables, in increasing precedence.
// QBZRUN_IMAGE and QBZRUN_TAG override the image, QBZRUN_DEBUG enables
// printing of the equivalent docker command line.
func ParseConfig(environment []string, user HostUser) (Config, error) {
	lookup := make(map[string]string)
	for _, variable := range environment {
		key, value, ok := strings.Cut(variable, "=")
		if ok {
			lookup[key] = value
		}
	}

	var fc FileConfig
	if path := ConfigPath(lookup); path != "" {
		var err error
		fc, err = LoadFileConfig(path)
		if err != nil {
			return Config{}, err
		}
	}

	image := DefaultImage
	if fc.Image != "" {
		image = fc.Image
	}
	if value, ok := lookup["QBZRUN_IMAGE"]; ok && value != "" {
		image = value
	}

	tag := DefaultTag
	if fc.Tag != "" {
		tag = fc.Tag
	}
	if value, ok := lookup["QBZRUN_TAG"]; ok && value != "" {
		tag = value
	}

	var debug bool
	if value, ok := lookup["QBZRUN_DEBUG"]; ok && value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid QBZRUN_DEBUG value %q: %w\nUse 1, true, 0 or false", value, err)
		}
		debug = parsed
	}

	// An image that already carries a tag or digest wins over the separate
	// tag setting.
	name, err := ParseImageName(image, tag)
	if err != nil {
		return Config{}, err
	}

	return Config{
		ImageName:   name,
		WorkingDir:  DefaultWorkDir,
		StopTimeout: DefaultStopTimeout,
		TTYRetries:  DefaultTTYRetries,
		RetryDelay:  DefaultRetryDelay,
		Debug:       debug,
		Display:     lookup["DISPLAY"],
		Home:        lookup["HOME"],
		User:        user,
		Env:         Environment(fc.Env),
		Volumes:     fc.Volumes,
	}, nil
}
