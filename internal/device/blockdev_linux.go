//go:build linux

package device

import (
	"os"

	"golang.org/x/sys/unix"
)

// blockSectorSize returns the logical sector size of a block device.
func blockSectorSize(f *os.File) int {
	n, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil || n <= 0 {
		return defaultSectorSize
	}
	return n
}
