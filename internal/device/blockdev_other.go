//go:build !linux

package device

import "os"

func blockSectorSize(*os.File) int {
	return defaultSectorSize
}
