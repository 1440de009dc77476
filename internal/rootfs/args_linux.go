package rootfs

import "context"

// globalArgs returns the arguments for verb. On Linux buildah uses its own
// default storage.
func (c *Client) globalArgs(verb Verb) []string {
	return []string{string(verb)}
}

func fixupRootfs(ctx context.Context, rootfs string) error {
	return nil
}
