//go:build tinygo && baremetal && !st7789

package hal

func newPanel() (Framebuffer, error) { return nil, ErrNotImplemented }
