// Package rootfs drives buildah, the external tool that turns OCI images into
// containers and mounts their root filesystems.
package rootfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultTool is the rootfs manager binary.
const DefaultTool = "buildah"

// Verb is a buildah subcommand.
type Verb string

const (
	VerbFrom    Verb = "from"
	VerbInspect Verb = "inspect"
	VerbMount   Verb = "mount"
	VerbUnmount Verb = "umount"
	VerbRemove  Verb = "rm"
)

// ErrToolNotFound is returned when buildah is not installed.
var ErrToolNotFound = errors.New("krunvm requires buildah to manage the OCI images, and it wasn't found on this system")

// ToolError is a non-zero exit of the rootfs manager. Output holds its
// standard output, which buildah uses for diagnostics too.
type ToolError struct {
	Tool     string
	Verb     Verb
	ExitCode int
	Output   string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s returned an error: %s", e.Tool, strings.TrimSpace(e.Output))
}

// Runner executes the rootfs manager and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host. Standard error is passed through to
// the user.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Output()
}

// FromOptions tunes container creation.
type FromOptions struct {
	// Arch forces the image architecture, e.g. "x86_64". Empty uses the host's.
	Arch string
}

// Client wraps the four rootfs lifecycle operations plus container creation.
type Client struct {
	tool    string
	runner  Runner
	storage string
	log     *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(c *Client) { c.runner = r }
}

// WithTool replaces the rootfs manager binary.
func WithTool(tool string) Option {
	return func(c *Client) { c.tool = tool }
}

// WithStorageVolume points buildah at a dedicated storage volume. Only used
// where the platform needs one.
func WithStorageVolume(volume string) Option {
	return func(c *Client) { c.storage = volume }
}

// WithLogger sets the logger used for command tracing.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a buildah client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		tool:   DefaultTool,
		runner: ExecRunner{},
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// From creates a working container from image and returns its id.
func (c *Client) From(ctx context.Context, image string, opts FromOptions) (string, error) {
	extra := []string{}
	if opts.Arch != "" {
		extra = append(extra, "--arch", opts.Arch)
	}
	extra = append(extra, image)

	out, err := c.run(ctx, VerbFrom, extra...)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", pkgerrors.Errorf("%s %s %s returned no container id", c.tool, VerbFrom, image)
	}
	return id, nil
}

// Mount mounts the container's root filesystem and returns its path.
func (c *Client) Mount(ctx context.Context, id string) (string, error) {
	out, err := c.run(ctx, VerbMount, id)
	if err != nil {
		return "", err
	}
	rootfs := strings.TrimSpace(string(out))
	if rootfs == "" {
		return "", pkgerrors.Errorf("%s %s %s returned no mount point", c.tool, VerbMount, id)
	}
	if err := fixupRootfs(ctx, rootfs); err != nil {
		return "", pkgerrors.Wrapf(err, "prepare rootfs %s", rootfs)
	}
	return rootfs, nil
}

// Unmount unmounts the container's root filesystem. buildah treats an
// unmounted container as success.
func (c *Client) Unmount(ctx context.Context, id string) error {
	_, err := c.run(ctx, VerbUnmount, id)
	return err
}

// Remove deletes the container. It must be unmounted first.
func (c *Client) Remove(ctx context.Context, id string) error {
	_, err := c.run(ctx, VerbRemove, id)
	return err
}

// Inspect returns buildah's JSON description of a container or image.
func (c *Client) Inspect(ctx context.Context, id string) (string, error) {
	out, err := c.run(ctx, VerbInspect, id)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ContainerInfo is the subset of `buildah inspect` output krunvm uses.
type ContainerInfo struct {
	Type        string   `json:"Type"`
	FromImage   string   `json:"FromImage"`
	FromImageID string   `json:"FromImageID"`
	Container   string   `json:"Container"`
	ContainerID string   `json:"ContainerID"`
	MountPoint  string   `json:"MountPoint"`
	OCIv1       v1.Image `json:"OCIv1"`
}

// InspectContainer decodes the inspection of a working container.
func (c *Client) InspectContainer(ctx context.Context, id string) (*ContainerInfo, error) {
	out, err := c.Inspect(ctx, id)
	if err != nil {
		return nil, err
	}
	return ParseContainerInfo([]byte(out))
}

// ParseContainerInfo decodes `buildah inspect` output.
func ParseContainerInfo(data []byte) (*ContainerInfo, error) {
	var info ContainerInfo
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&info); err != nil {
		return nil, pkgerrors.Wrap(err, "parse buildah inspect output")
	}
	return &info, nil
}

func (c *Client) run(ctx context.Context, verb Verb, extra ...string) ([]byte, error) {
	args := append(c.globalArgs(verb), extra...)
	c.log.WithField("args", args).Debugf("running %s", c.tool)

	out, err := c.runner.Run(ctx, c.tool, args...)
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return nil, ErrToolNotFound
	case errors.As(err, &exitErr):
		return nil, &ToolError{Tool: c.tool, Verb: verb, ExitCode: exitErr.ExitCode(), Output: string(out)}
	default:
		return nil, pkgerrors.Wrapf(err, "error executing %s", c.tool)
	}
}
