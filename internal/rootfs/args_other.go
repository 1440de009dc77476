//go:build !linux && !darwin

package rootfs

import "context"

func (c *Client) globalArgs(verb Verb) []string {
	return []string{string(verb)}
}

func fixupRootfs(ctx context.Context, rootfs string) error {
	return nil
}
