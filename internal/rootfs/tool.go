package rootfs

import "os/exec"

// Test dependencies.
var lookPath = exec.LookPath

// CheckTool reports ErrToolNotFound when the rootfs manager is not on PATH.
func (c *Client) CheckTool() error {
	if _, err := lookPath(c.tool); err != nil {
		return ErrToolNotFound
	}
	return nil
}
