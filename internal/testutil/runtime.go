package testutil

import "sync"

// RuntimeCall is one call made on a FakeRuntime.
type RuntimeCall struct {
	Method string
	Args   []any
}

// FakeRuntime records libkrun calls. Methods listed in Fail return the
// given status instead of 0.
type FakeRuntime struct {
	mu sync.Mutex

	// Context is the id returned by CreateContext.
	Context int32
	Fail    map[string]int32

	// Recorder, when set, receives a "start-enter" event.
	Recorder *Recorder

	Calls []RuntimeCall
	Freed []uint32
}

// NewFakeRuntime returns a runtime where every call succeeds.
func NewFakeRuntime() *FakeRuntime {
	return &FakeRuntime{Context: 3, Fail: map[string]int32{}}
}

func (f *FakeRuntime) call(method string, args ...any) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, RuntimeCall{Method: method, Args: args})
	return f.Fail[method]
}

// Methods returns the called method names in order.
func (f *FakeRuntime) Methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	methods := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		methods = append(methods, c.Method)
	}
	return methods
}

// Find returns the first call to method.
func (f *FakeRuntime) Find(method string) (RuntimeCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c.Method == method {
			return c, true
		}
	}
	return RuntimeCall{}, false
}

func (f *FakeRuntime) SetLogLevel(level uint32) int32 {
	return f.call("SetLogLevel", level)
}

func (f *FakeRuntime) CreateContext() int32 {
	if status := f.call("CreateContext"); status < 0 {
		return status
	}
	return f.Context
}

func (f *FakeRuntime) FreeContext(id uint32) int32 {
	f.mu.Lock()
	f.Freed = append(f.Freed, id)
	f.mu.Unlock()
	return f.call("FreeContext", id)
}

func (f *FakeRuntime) SetVMConfig(id uint32, vcpus uint8, ramMiB uint32) int32 {
	return f.call("SetVMConfig", id, vcpus, ramMiB)
}

func (f *FakeRuntime) SetRoot(id uint32, rootPath string) int32 {
	return f.call("SetRoot", id, rootPath)
}

func (f *FakeRuntime) AddVirtiofs(id uint32, tag, hostPath string) int32 {
	return f.call("AddVirtiofs", id, tag, hostPath)
}

func (f *FakeRuntime) SetPortMap(id uint32, portMap []string) int32 {
	return f.call("SetPortMap", id, portMap)
}

func (f *FakeRuntime) SetPasstFD(id uint32, fd int) int32 {
	return f.call("SetPasstFD", id, fd)
}

func (f *FakeRuntime) SetWorkdir(id uint32, workdir string) int32 {
	return f.call("SetWorkdir", id, workdir)
}

func (f *FakeRuntime) SetExec(id uint32, execPath string, argv, envp []string) int32 {
	return f.call("SetExec", id, execPath, argv, envp)
}

func (f *FakeRuntime) SetEnv(id uint32, envp []string) int32 {
	return f.call("SetEnv", id, envp)
}

func (f *FakeRuntime) StartEnter(id uint32) int32 {
	status := f.call("StartEnter", id)
	if status >= 0 {
		f.Recorder.Record("start-enter")
	}
	return status
}
