package vm

import (
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/google/go-containerregistry/pkg/name"
)

// transports buildah accepts in front of an image reference.
var transports = []string{
	"containers-storage:",
	"dir:",
	"docker://",
	"docker-archive:",
	"docker-daemon:",
	"oci:",
	"oci-archive:",
}

// ValidateImage rejects malformed image references before buildah is run.
// References with an explicit transport are left to buildah.
func ValidateImage(image string) error {
	if image == "" {
		return fmt.Errorf("an image is required: %w", errdefs.ErrInvalidArgument)
	}
	for _, t := range transports {
		if strings.HasPrefix(image, t) {
			return nil
		}
	}
	if _, err := name.ParseReference(image); err != nil {
		return fmt.Errorf("invalid image reference %q: %v: %w", image, err, errdefs.ErrInvalidArgument)
	}
	return nil
}
