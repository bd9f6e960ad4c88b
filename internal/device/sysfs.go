package device

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Roots for sysfs and device nodes; tests point these at temp trees.
var (
	sysfsRoot = "/sys"
	devRoot   = "/dev"
)

// Kernel name prefixes that are never counted as BIOS-style hdN disks.
var nonDiskPrefixes = []string{"loop", "ram", "zram", "dm-", "md", "sr", "nbd", "fd"}

// wholeDisks lists /sys/block entries that firmware would number as hard
// disks, in name order.
func wholeDisks() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(sysfsRoot, "block"))
	if err != nil {
		return nil, err
	}

	var disks []string
	for _, entry := range entries {
		name := entry.Name()
		skip := false
		for _, p := range nonDiskPrefixes {
			if strings.HasPrefix(name, p) {
				skip = true
				break
			}
		}
		if !skip {
			disks = append(disks, name)
		}
	}
	sort.Strings(disks)
	return disks, nil
}

// sysfsDriver derives a boot driver name for a whole-disk kernel name.
func sysfsDriver(name string) string {
	switch {
	case strings.HasPrefix(name, "loop"):
		return "loopback"
	case strings.HasPrefix(name, "md"), strings.HasPrefix(name, "dm-"):
		return "diskfilter"
	case strings.HasPrefix(name, "nvme"):
		return "nvme"
	case strings.HasPrefix(name, "sr"):
		return "cd"
	case strings.HasPrefix(name, "sd"):
		// libata disks sit under an ataN host in the device path
		target, err := filepath.EvalSymlinks(filepath.Join(sysfsRoot, "class/block", name))
		if err == nil && strings.Contains(target, "/ata") {
			return "ata"
		}
		return "scsi"
	default:
		return "biosdisk"
	}
}

// hostPartition reports the parent disk and partition number of a kernel
// partition device such as sda1.
func hostPartition(name string) (parent string, index int, ok bool) {
	link := filepath.Join(sysfsRoot, "class/block", name)
	data, err := os.ReadFile(filepath.Join(link, "partition"))
	if err != nil {
		return "", 0, false
	}
	index, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || index < 1 {
		return "", 0, false
	}

	// .../block/sda/sda1 -> sda
	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		return "", 0, false
	}
	return filepath.Base(filepath.Dir(target)), index, true
}

// kernelName resolves /dev symlinks (by-uuid, mapper) to the kernel name.
func kernelName(path string) string {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	return filepath.Base(path)
}
