package device

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/sigreer/bootprobe/internal/cache"
	"github.com/sigreer/bootprobe/internal/config"
	"github.com/sigreer/bootprobe/internal/logger"
)

var firmwareName = regexp.MustCompile(`^(hd|cd|fd)([0-9]+)$`)

// Resolver opens devices by boot name. Partition tables and sysfs driver
// lookups are cached for the life of the resolver.
type Resolver struct {
	devices map[string]config.Device
	network map[string]config.Network
	log     zerolog.Logger

	tables  *cache.Cache[*Table]
	drivers *cache.Cache[string]
}

// NewResolver builds a resolver from the device and network maps in cfg.
// cfg may be nil.
func NewResolver(cfg *config.Config) *Resolver {
	r := &Resolver{
		log:     logger.WithComponent("device"),
		tables:  cache.New[*Table](),
		drivers: cache.New[string](),
	}
	if cfg != nil {
		r.devices = cfg.Devices
		r.network = cfg.Network
	}
	return r
}

func (r *Resolver) isNetwork(name string) bool {
	_, ok := r.network[name]
	return ok
}

// Open resolves name and opens it read-only.
func (r *Resolver) Open(name string) (*Device, error) {
	n, err := ParseName(name, r.isNetwork)
	if err != nil {
		return nil, err
	}

	if n.Network {
		driver := n.Proto
		if nc, ok := r.network[n.Proto]; ok {
			driver = nc.Driver
		}
		r.log.Debug().Str("device", name).Str("driver", driver).Msg("network device")
		return New(name, &Network{Driver: driver, Server: n.Server}, nil), nil
	}

	path, driver, err := r.hostPath(n.Disk)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	disk, err := r.openDisk(f, path, driver, n.Part)
	if err != nil {
		f.Close()
		return nil, err
	}

	ev := r.log.Debug().Str("device", name).Str("path", path).Str("driver", disk.Driver).
		Str("size", humanize.IBytes(uint64(disk.Size())))
	if disk.Partition != nil {
		ev = ev.Str("partmap", disk.Partition.Map).Int("partition", disk.Partition.Index)
	}
	ev.Msg("disk device")

	return New(name, disk, f), nil
}

func (r *Resolver) openDisk(f *os.File, path, driver string, spec *PartSpec) (*Disk, error) {
	size, sectorSize, block, err := geometry(f)
	if err != nil {
		return nil, err
	}

	kname := kernelName(path)
	parent, index, isPart := "", 0, false
	if block {
		parent, index, isPart = hostPartition(kname)
	}
	if driver == "" {
		switch {
		case isPart:
			driver = r.blockDriver(parent)
		case block:
			driver = r.blockDriver(kname)
		default:
			driver = "loopback"
		}
	}
	disk := NewDisk(driver, nil, f, size)
	disk.SectorSize = sectorSize

	switch {
	case spec != nil:
		table, err := r.table(path, f, size, sectorSize)
		if err != nil {
			return nil, err
		}
		part, err := table.Find(spec)
		if err != nil {
			return nil, err
		}
		if part.Start+part.Length > size {
			return nil, fmt.Errorf("partition %s%d extends past end of disk", part.Map, part.Index)
		}
		disk.Partition = part
		disk.r = io.NewSectionReader(f, part.Start, part.Length)
		disk.size = part.Length
	case isPart:
		part, err := r.parentPartition(parent, index)
		if err != nil {
			return nil, fmt.Errorf("partition %s of %s: %w", kname, parent, err)
		}
		disk.Partition = part
	}
	return disk, nil
}

// hostPath maps a disk name to a host file and an optional configured driver.
func (r *Resolver) hostPath(disk string) (path, driver string, err error) {
	if filepath.IsAbs(disk) {
		return disk, "", nil
	}
	if d, ok := r.devices[disk]; ok {
		return d.Path, d.Driver, nil
	}

	m := firmwareName.FindStringSubmatch(disk)
	if m == nil {
		return "", "", fmt.Errorf("unknown device %q", disk)
	}
	num, _ := strconv.Atoi(m[2])
	switch m[1] {
	case "hd":
		disks, err := wholeDisks()
		if err != nil {
			return "", "", fmt.Errorf("list disks: %w", err)
		}
		if num >= len(disks) {
			return "", "", fmt.Errorf("no disk %s", disk)
		}
		return filepath.Join(devRoot, disks[num]), "", nil
	case "cd":
		return filepath.Join(devRoot, "sr"+m[2]), "", nil
	default:
		return filepath.Join(devRoot, "fd"+m[2]), "", nil
	}
}

func (r *Resolver) blockDriver(kname string) string {
	if d, ok := r.drivers.Get(kname); ok {
		return d
	}
	d := sysfsDriver(kname)
	r.drivers.SetSlow(kname, d)
	return d
}

func (r *Resolver) table(path string, rd io.ReaderAt, size int64, sectorSize int) (*Table, error) {
	t, err := r.tables.GetOrLoad(path, cache.TTLStatic, func() (*Table, error) {
		return ReadTable(rd, size, sectorSize)
	})
	if errors.Is(err, ErrNoPartitionMap) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, err
}

func (r *Resolver) parentPartition(parent string, index int) (*Partition, error) {
	path := filepath.Join(devRoot, parent)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size, sectorSize, _, err := geometry(f)
	if err != nil {
		return nil, err
	}
	t, err := r.table(path, f, size, sectorSize)
	if err != nil {
		return nil, err
	}
	return t.Find(&PartSpec{Index: index})
}

// geometry returns size, logical sector size and whether f is a block device.
func geometry(f *os.File) (size int64, sectorSize int, block bool, err error) {
	st, err := f.Stat()
	if err != nil {
		return 0, 0, false, fmt.Errorf("could not stat %s: %w", f.Name(), err)
	}
	mode := st.Mode()
	switch {
	case mode.IsRegular():
		return st.Size(), defaultSectorSize, false, nil
	case mode&os.ModeDevice != 0:
		size, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, 0, false, fmt.Errorf("could not size %s: %w", f.Name(), err)
		}
		return size, blockSectorSize(f), true, nil
	default:
		return 0, 0, false, fmt.Errorf("%s is neither a block device nor a regular file", f.Name())
	}
}
