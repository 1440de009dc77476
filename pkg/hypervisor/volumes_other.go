//go:build !linux && !darwin

package hypervisor

// DefaultVolumeMapper refuses volumes on platforms without a strategy.
func DefaultVolumeMapper() VolumeMapper {
	return unsupportedMapper{}
}

type unsupportedMapper struct{}

func (unsupportedMapper) MapVolumes(_ Runtime, _ uint32, _ string, volumes map[string]string) ([]GuestMount, error) {
	if len(volumes) == 0 {
		return nil, nil
	}
	return nil, &StepError{Step: StepVolumes, Err: ErrUnsupportedPlatform}
}
