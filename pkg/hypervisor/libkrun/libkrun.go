//go:build cgo && (linux || darwin)

// Package libkrun binds the libkrun C library.
package libkrun

/*
#cgo LDFLAGS: -lkrun
#cgo darwin CFLAGS: -I/opt/homebrew/include
#cgo darwin LDFLAGS: -L/opt/homebrew/lib

#include <stdint.h>
#include <stdlib.h>

int32_t krun_set_log_level(uint32_t level);
int32_t krun_create_ctx(void);
int32_t krun_free_ctx(uint32_t ctx_id);
int32_t krun_set_vm_config(uint32_t ctx_id, uint8_t num_vcpus, uint32_t ram_mib);
int32_t krun_set_root(uint32_t ctx_id, const char *root_path);
int32_t krun_add_virtiofs(uint32_t ctx_id, const char *c_tag, const char *c_path);
int32_t krun_set_port_map(uint32_t ctx_id, const char *const port_map[]);
int32_t krun_set_passt_fd(uint32_t ctx_id, int fd);
int32_t krun_set_workdir(uint32_t ctx_id, const char *workdir_path);
int32_t krun_set_exec(uint32_t ctx_id, const char *exec_path, const char *const argv[], const char *const envp[]);
int32_t krun_set_env(uint32_t ctx_id, const char *const envp[]);
int32_t krun_start_enter(uint32_t ctx_id);
*/
import "C"

import (
	"unsafe"

	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

var _ hypervisor.Runtime = (*Runtime)(nil)

// Runtime calls into libkrun. libkrun copies every string it is given, so
// the C copies are freed as soon as a call returns.
type Runtime struct{}

// New returns the libkrun runtime.
func New() (*Runtime, error) {
	return &Runtime{}, nil
}

// cStrings is a NULL-terminated array of C strings. The array itself lives
// in Go memory, which cgo allows since it only holds C pointers.
type cStrings []*C.char

func newCStrings(values []string) cStrings {
	a := make(cStrings, 0, len(values)+1)
	for _, v := range values {
		a = append(a, C.CString(v))
	}
	return append(a, nil)
}

func (a cStrings) ptr() **C.char {
	return &a[0]
}

func (a cStrings) free() {
	for _, p := range a {
		if p != nil {
			C.free(unsafe.Pointer(p))
		}
	}
}

func (*Runtime) SetLogLevel(level uint32) int32 {
	return int32(C.krun_set_log_level(C.uint32_t(level)))
}

func (*Runtime) CreateContext() int32 {
	return int32(C.krun_create_ctx())
}

func (*Runtime) FreeContext(id uint32) int32 {
	return int32(C.krun_free_ctx(C.uint32_t(id)))
}

func (*Runtime) SetVMConfig(id uint32, vcpus uint8, ramMiB uint32) int32 {
	return int32(C.krun_set_vm_config(C.uint32_t(id), C.uint8_t(vcpus), C.uint32_t(ramMiB)))
}

func (*Runtime) SetRoot(id uint32, rootPath string) int32 {
	cPath := C.CString(rootPath)
	defer C.free(unsafe.Pointer(cPath))
	return int32(C.krun_set_root(C.uint32_t(id), cPath))
}

func (*Runtime) AddVirtiofs(id uint32, tag, hostPath string) int32 {
	cTag := C.CString(tag)
	defer C.free(unsafe.Pointer(cTag))
	cPath := C.CString(hostPath)
	defer C.free(unsafe.Pointer(cPath))
	return int32(C.krun_add_virtiofs(C.uint32_t(id), cTag, cPath))
}

func (*Runtime) SetPortMap(id uint32, portMap []string) int32 {
	ports := newCStrings(portMap)
	defer ports.free()
	return int32(C.krun_set_port_map(C.uint32_t(id), ports.ptr()))
}

func (*Runtime) SetPasstFD(id uint32, fd int) int32 {
	return int32(C.krun_set_passt_fd(C.uint32_t(id), C.int(fd)))
}

func (*Runtime) SetWorkdir(id uint32, workdir string) int32 {
	cPath := C.CString(workdir)
	defer C.free(unsafe.Pointer(cPath))
	return int32(C.krun_set_workdir(C.uint32_t(id), cPath))
}

func (*Runtime) SetExec(id uint32, execPath string, argv, envp []string) int32 {
	cPath := C.CString(execPath)
	defer C.free(unsafe.Pointer(cPath))

	args := newCStrings(argv)
	defer args.free()
	env := newCStrings(envp)
	defer env.free()

	return int32(C.krun_set_exec(C.uint32_t(id), cPath, args.ptr(), env.ptr()))
}

func (*Runtime) SetEnv(id uint32, envp []string) int32 {
	env := newCStrings(envp)
	defer env.free()
	return int32(C.krun_set_env(C.uint32_t(id), env.ptr()))
}

func (*Runtime) StartEnter(id uint32) int32 {
	return int32(C.krun_start_enter(C.uint32_t(id)))
}
