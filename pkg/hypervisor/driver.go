// Package hypervisor configures and starts a libkrun microVM. The foreign
// call-sequence API is hidden behind Runtime, and Builder owns the lifetime
// of the context handle it creates.
package hypervisor

// Runtime is the libkrun API. Every call returns a status where a negative
// value is a failure, usually a negated errno.
type Runtime interface {
	SetLogLevel(level uint32) int32

	// CreateContext returns a new context id, or a negative status.
	CreateContext() int32
	FreeContext(id uint32) int32

	SetVMConfig(id uint32, vcpus uint8, ramMiB uint32) int32
	SetRoot(id uint32, rootPath string) int32
	AddVirtiofs(id uint32, tag, hostPath string) int32
	SetPortMap(id uint32, portMap []string) int32
	SetPasstFD(id uint32, fd int) int32
	SetWorkdir(id uint32, workdir string) int32
	SetExec(id uint32, execPath string, argv, envp []string) int32
	SetEnv(id uint32, envp []string) int32

	// StartEnter hands the process over to the guest. It only returns on
	// failure or at guest shutdown.
	StartEnter(id uint32) int32
}

// Log levels accepted by SetLogLevel.
const (
	LogLevelOff uint32 = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)
