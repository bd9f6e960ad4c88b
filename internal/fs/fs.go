// Package fs recognises filesystems on a device and exposes their optional
// UUID and label capabilities.
package fs

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/sigreer/bootprobe/internal/device"
	"github.com/sigreer/bootprobe/internal/logger"
)

// ErrUnsupported is returned by UUID and Label when the filesystem lacks
// the capability.
var ErrUnsupported = errors.New("capability not supported by filesystem")

// Reader is the readable region a filesystem lives in.
type Reader interface {
	io.ReaderAt
	Size() int64
}

// Filesystem is a recognised filesystem.
type Filesystem interface {
	Name() string
}

// UUIDResolver is implemented by filesystems that carry a UUID.
type UUIDResolver interface {
	UUID() (string, error)
}

// LabelResolver is implemented by filesystems that carry a volume label.
type LabelResolver interface {
	Label() (string, error)
}

// UUID returns the filesystem UUID, or ErrUnsupported.
func UUID(f Filesystem) (string, error) {
	u, ok := f.(UUIDResolver)
	if !ok {
		return "", ErrUnsupported
	}
	return u.UUID()
}

// Label returns the filesystem label, or ErrUnsupported.
func Label(f Filesystem) (string, error) {
	l, ok := f.(LabelResolver)
	if !ok {
		return "", ErrUnsupported
	}
	return l.Label()
}

// Detector recognises one filesystem type. Detect returns nil, nil when
// the contents are not its format.
type Detector interface {
	Name() string
	Detect(r Reader) (Filesystem, error)
}

// Prober tries detectors in order.
type Prober struct {
	detectors []Detector
	log       zerolog.Logger
}

// NewProber returns a prober over detectors, tried in the given order.
func NewProber(detectors ...Detector) *Prober {
	return &Prober{detectors: detectors, log: logger.WithComponent("fs")}
}

// DefaultProber knows every filesystem in this package. FAT goes last as
// its boot sector check is the weakest.
func DefaultProber() *Prober {
	return NewProber(
		Btrfs{},
		XFS{},
		Ext2{},
		ISO9660{},
		Squash4{},
		FAT{},
	)
}

// Probe returns the filesystem on dev, or nil if none is recognised.
// Network devices have no contents and never match.
func (p *Prober) Probe(dev *device.Device) Filesystem {
	disk, ok := dev.Disk()
	if !ok {
		return nil
	}
	return p.ProbeReader(disk)
}

// ProbeReader runs the detectors over r. A detector error counts as no
// match and the next detector is tried.
func (p *Prober) ProbeReader(r Reader) Filesystem {
	for _, d := range p.detectors {
		f, err := d.Detect(r)
		if err != nil {
			p.log.Debug().Err(err).Str("fs", d.Name()).Msg("detector failed")
			continue
		}
		if f != nil {
			p.log.Debug().Str("fs", f.Name()).Msg("filesystem recognised")
			return f
		}
	}
	return nil
}

// readBlock reads n bytes at off. It returns nil, nil when the region lies
// beyond the end of r, since a short device simply isn't that filesystem.
func readBlock(r Reader, off int64, n int) ([]byte, error) {
	if off+int64(n) > r.Size() {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// cString returns b up to the first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
