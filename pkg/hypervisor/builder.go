package hypervisor

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// Builder runs the launch sequence against a Runtime.
type Builder struct {
	rt       Runtime
	volumes  VolumeMapper
	logLevel uint32
	log      *logrus.Entry
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithVolumeMapper replaces the platform volume strategy.
func WithVolumeMapper(m VolumeMapper) BuilderOption {
	return func(b *Builder) { b.volumes = m }
}

// WithLogLevel sets libkrun's own log level before the context is created.
func WithLogLevel(level uint32) BuilderOption {
	return func(b *Builder) { b.logLevel = level }
}

// WithLogger sets the logger used to trace the launch sequence.
func WithLogger(log *logrus.Entry) BuilderOption {
	return func(b *Builder) { b.log = log }
}

// NewBuilder returns a Builder using the platform volume strategy.
func NewBuilder(rt Runtime, opts ...BuilderOption) *Builder {
	b := &Builder{
		rt:      rt,
		volumes: DefaultVolumeMapper(),
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Launch configures a fresh context from cfg and hands off to the guest. It
// returns at the first failing step, after freeing the context. On success it
// returns only once the guest has shut down.
func (b *Builder) Launch(cfg *LaunchConfig) (err error) {
	if b.rt == nil {
		return ErrMissingRuntime
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if b.logLevel != LogLevelOff {
		if status := b.rt.SetLogLevel(b.logLevel); status < 0 {
			return statusError(StepLogLevel, status)
		}
	}

	status := b.rt.CreateContext()
	if status < 0 {
		return statusError(StepCreateContext, status)
	}
	id := uint32(status)
	log := b.log.WithField("ctx", id)
	defer func() {
		if err != nil {
			if status := b.rt.FreeContext(id); status < 0 {
				log.WithError(statusError("free context", status)).Warn("failed to free the VM context")
			}
		}
	}()

	log.WithFields(logrus.Fields{
		"cpus": cfg.CPUs,
		"mem":  cfg.MemoryMiB,
	}).Debug("setting VM config")
	if status := b.rt.SetVMConfig(id, uint8(cfg.CPUs), cfg.MemoryMiB); status < 0 {
		return statusError(StepVMConfig, status)
	}

	if status := b.rt.SetRoot(id, cfg.Rootfs); status < 0 {
		return statusError(StepRoot, status)
	}

	mounts, err := b.volumes.MapVolumes(b.rt, id, cfg.Rootfs, cfg.Volumes)
	if err != nil {
		return err
	}

	if cfg.Network.PasstFD != nil {
		if status := b.rt.SetPasstFD(id, int(cfg.Network.PasstFD.Fd())); status < 0 {
			return statusError(StepPasstFD, status)
		}
	} else {
		if status := b.rt.SetPortMap(id, cfg.Network.PortMap); status < 0 {
			return statusError(StepPortMap, status)
		}
	}

	if cfg.Workdir != "" {
		if status := b.rt.SetWorkdir(id, cfg.Workdir); status < 0 {
			return statusError(StepWorkdir, status)
		}
	}

	env := cfg.Environment()
	switch {
	case len(mounts) > 0:
		script, err := writeMountScript(cfg.Rootfs, mounts)
		if err != nil {
			return &StepError{Step: StepExec, Err: err}
		}
		argv := append([]string{cfg.Command}, cfg.Args...)
		if cfg.Command == "" {
			entry, err := imageEntry(cfg.Rootfs)
			if err != nil {
				return &StepError{Step: StepExec, Err: err}
			}
			if len(entry) == 0 {
				entry = []string{DefaultShell}
			}
			argv = entry
		}
		if status := b.rt.SetExec(id, script, argv, env); status < 0 {
			return statusError(StepExec, status)
		}
	case cfg.Command != "":
		if status := b.rt.SetExec(id, cfg.Command, cfg.Args, env); status < 0 {
			return statusError(StepExec, status)
		}
	default:
		if status := b.rt.SetEnv(id, env); status < 0 {
			return statusError(StepEnv, status)
		}
	}

	log.Debug("starting VM")
	status = b.rt.StartEnter(id)
	// The passt socket must stay open for as long as the guest runs.
	runtime.KeepAlive(cfg.Network.PasstFD)
	if status < 0 {
		return statusError(StepStart, status)
	}
	return nil
}
