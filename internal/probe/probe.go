// Package probe implements the probe command: it opens one device, picks
// the requested property by flag priority and emits the result.
package probe

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/sigreer/bootprobe/internal/device"
	"github.com/sigreer/bootprobe/internal/fs"
	"github.com/sigreer/bootprobe/internal/logger"
)

// "none" is reported for drivers and partition maps a device doesn't have.
const none = "none"

// DeviceOpener resolves a normalised device name.
type DeviceOpener interface {
	Open(name string) (*device.Device, error)
}

// FilesystemProber recognises the filesystem on a device, or returns nil.
type FilesystemProber interface {
	Probe(dev *device.Device) fs.Filesystem
}

// Command runs probes against its collaborators.
type Command struct {
	Devices     DeviceOpener
	Filesystems FilesystemProber
	Vars        Variables
	Stdout      io.Writer

	log zerolog.Logger
}

// New returns a command wired to the given collaborators.
func New(devices DeviceOpener, filesystems FilesystemProber, vars Variables, stdout io.Writer) *Command {
	return &Command{
		Devices:     devices,
		Filesystems: filesystems,
		Vars:        vars,
		Stdout:      stdout,
		log:         logger.WithComponent("probe"),
	}
}

// Run probes args[0] and emits the property selected by opts. Nothing is
// emitted on failure. Extra arguments are ignored.
func (c *Command) Run(opts Options, args []string) error {
	if len(args) < 1 || args[0] == "" {
		return newError(KindBadArgument, "device name required", nil)
	}
	out, err := opts.Output()
	if err != nil {
		return err
	}

	value, err := c.Query(args[0], opts.Target())
	if err != nil {
		return err
	}
	return Emit(out, c.Vars, c.Stdout, value)
}

// Query opens the device named by raw, resolves target and releases the
// device before returning.
func (c *Command) Query(raw string, target Target) (string, error) {
	dev, err := c.Open(raw)
	if err != nil {
		return "", err
	}
	defer dev.Close()

	value, err := c.Resolve(dev, target)
	if err != nil {
		c.log.Debug().Err(err).Str("device", dev.Name).Stringer("target", target).Msg("probe failed")
		return "", err
	}
	c.log.Debug().Str("device", dev.Name).Stringer("target", target).Str("value", value).Msg("probe resolved")
	return value, nil
}

// Open normalises raw and opens the device. The caller must close it.
func (c *Command) Open(raw string) (*device.Device, error) {
	dev, err := c.Devices.Open(Normalize(raw))
	if err != nil {
		return nil, newError(KindBadDevice, "couldn't open device", err)
	}
	return dev, nil
}

// Resolve computes target on an open device. The filesystem probe runs
// only for the filesystem targets.
func (c *Command) Resolve(dev *device.Device, target Target) (string, error) {
	switch target {
	case TargetDriver:
		return driverName(dev), nil
	case TargetPartmap:
		return partmapName(dev), nil
	}

	if !target.needsFilesystem() {
		return "", newError(KindBadArgument, "unrecognised target", nil)
	}
	f := c.Filesystems.Probe(dev)
	if f == nil {
		return "", newError(KindUnknownFilesystem, "unrecognised fs", nil)
	}

	switch target {
	case TargetFSUUID:
		uuid, err := fs.UUID(f)
		return capability(uuid, err, "uuid")
	case TargetLabel:
		label, err := fs.Label(f)
		return capability(label, err, "label")
	default:
		return f.Name(), nil
	}
}

func driverName(dev *device.Device) string {
	switch ep := dev.Endpoint.(type) {
	case *device.Network:
		return ep.Driver
	case *device.Disk:
		return ep.Driver
	default:
		return none
	}
}

func partmapName(dev *device.Device) string {
	switch ep := dev.Endpoint.(type) {
	case *device.Disk:
		if ep.Partition != nil {
			return ep.Partition.Map
		}
		return none
	default:
		return none
	}
}

// capability maps an absent or empty UUID/label to NotImplemented. Other
// errors from the filesystem are returned as they are.
func capability(value string, err error, what string) (string, error) {
	if errors.Is(err, fs.ErrUnsupported) || (err == nil && value == "") {
		return "", newError(KindNotImplemented, what+" for this FS isn't supported yet", nil)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
