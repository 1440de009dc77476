package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/javanstorm/krunvm/internal/rootfs"
)

// FakeContainer is a working container held by FakeRootfs.
type FakeContainer struct {
	Image   string
	Mounted bool
}

// FakeRootfs stands in for buildah. Mounted containers get a real directory
// under Dir so that files can be written into their rootfs.
type FakeRootfs struct {
	mu sync.Mutex

	Dir        string
	Containers map[string]*FakeContainer
	Recorder   *Recorder

	// Fail makes a verb return the error.
	Fail map[rootfs.Verb]error

	// Calls counts invocations per verb.
	Calls map[rootfs.Verb]int
}

// NewFakeRootfs returns an empty fake with its storage in a temp dir.
func NewFakeRootfs(t interface{ TempDir() string }) *FakeRootfs {
	return &FakeRootfs{
		Dir:        t.TempDir(),
		Containers: map[string]*FakeContainer{},
		Fail:       map[rootfs.Verb]error{},
		Calls:      map[rootfs.Verb]int{},
	}
}

// AddContainer registers an existing container.
func (f *FakeRootfs) AddContainer(id, image string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Containers[id] = &FakeContainer{Image: image}
}

// MountPoint returns where the container is mounted when mounted.
func (f *FakeRootfs) MountPoint(id string) string {
	return filepath.Join(f.Dir, id, "merged")
}

// IsMounted reports the mount state of a container.
func (f *FakeRootfs) IsMounted(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Containers[id]
	return ok && c.Mounted
}

func (f *FakeRootfs) begin(verb rootfs.Verb, id string) (*FakeContainer, error) {
	f.Calls[verb]++
	if err := f.Fail[verb]; err != nil {
		return nil, err
	}
	if verb == rootfs.VerbFrom {
		return nil, nil
	}
	c, ok := f.Containers[id]
	if !ok {
		return nil, &rootfs.ToolError{
			Tool:     rootfs.DefaultTool,
			Verb:     verb,
			ExitCode: 125,
			Output:   fmt.Sprintf("container %q not found\n", id),
		}
	}
	return c, nil
}

func (f *FakeRootfs) From(_ context.Context, image string, _ rootfs.FromOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.begin(rootfs.VerbFrom, ""); err != nil {
		return "", err
	}

	id := image + "-working-container"
	for n := 1; f.Containers[id] != nil; n++ {
		id = fmt.Sprintf("%s-working-container-%d", image, n)
	}
	f.Containers[id] = &FakeContainer{Image: image}
	f.Recorder.Record("from %s", image)
	return id, nil
}

func (f *FakeRootfs) Mount(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.begin(rootfs.VerbMount, id)
	if err != nil {
		return "", err
	}

	dir := f.MountPoint(id)
	if err := os.MkdirAll(filepath.Join(dir, "etc"), 0755); err != nil {
		return "", err
	}
	c.Mounted = true
	f.Recorder.Record("mount %s", id)
	return dir, nil
}

func (f *FakeRootfs) Unmount(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.begin(rootfs.VerbUnmount, id)
	if err != nil {
		return err
	}
	c.Mounted = false
	f.Recorder.Record("unmount %s", id)
	return nil
}

func (f *FakeRootfs) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.begin(rootfs.VerbRemove, id)
	if err != nil {
		return err
	}
	if c.Mounted {
		return &rootfs.ToolError{Tool: rootfs.DefaultTool, Verb: rootfs.VerbRemove, ExitCode: 125, Output: "container is mounted\n"}
	}
	delete(f.Containers, id)
	f.Recorder.Record("rm %s", id)
	return nil
}

func (f *FakeRootfs) Inspect(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	if _, ok := f.Containers[id]; !ok && f.Fail[rootfs.VerbInspect] == nil {
		// Images inspect fine too.
		f.Calls[rootfs.VerbInspect]++
		f.mu.Unlock()
		return fmt.Sprintf(`{"Type":"buildah 0.0.1","FromImage":%q}`, id), nil
	}
	f.mu.Unlock()

	info, err := f.InspectContainer(ctx, id)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *FakeRootfs) InspectContainer(_ context.Context, id string) (*rootfs.ContainerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.begin(rootfs.VerbInspect, id)
	if err != nil {
		return nil, err
	}
	info := &rootfs.ContainerInfo{
		Type:        "buildah 0.0.1",
		FromImage:   c.Image,
		Container:   id,
		ContainerID: id,
	}
	if c.Mounted {
		info.MountPoint = f.MountPoint(id)
	}
	return info, nil
}
