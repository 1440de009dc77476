package hypervisor

import (
	"errors"
	"fmt"
	"syscall"
)

// Configuration errors
var (
	ErrMissingName    = errors.New("hypervisor: VM name is required")
	ErrMissingRootfs  = errors.New("hypervisor: rootfs path is required")
	ErrMissingCPUs    = errors.New("hypervisor: CPU count is required")
	ErrMissingMemory  = errors.New("hypervisor: memory size is required")
	ErrMissingRuntime = errors.New("hypervisor: runtime is required")
)

// ErrConfigure is wrapped by every failure of the launch sequence.
var ErrConfigure = errors.New("hypervisor: error configuring the VM")

// Platform errors
var (
	ErrUnsupportedPlatform = errors.New("hypervisor: platform not supported")
)

// Step names one call of the launch sequence.
type Step string

const (
	StepLogLevel      Step = "set log level"
	StepCreateContext Step = "create context"
	StepVMConfig      Step = "set VM config"
	StepRoot          Step = "set VM rootfs"
	StepVolumes       Step = "set VM mapped volumes"
	StepPortMap       Step = "set VM port map"
	StepPasstFD       Step = "set VM passt fd"
	StepWorkdir       Step = "set VM workdir"
	StepEnv           Step = "set VM environment variables"
	StepExec          Step = "set VM exec"
	StepStart         Step = "start VM"
)

// StepError reports the launch step that failed. Status is the runtime's
// return value; Err is set when the step failed on the host side instead.
type StepError struct {
	Step   Step
	Status int32
	Err    error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error at %s: %v", e.Step, e.Err)
	}
	if e.Status < 0 {
		return fmt.Sprintf("error at %s: %v", e.Step, syscall.Errno(-e.Status))
	}
	return fmt.Sprintf("error at %s: status %d", e.Step, e.Status)
}

func (e *StepError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfigure, e.Err}
	}
	return []error{ErrConfigure}
}

func statusError(step Step, status int32) error {
	return &StepError{Step: step, Status: status}
}
