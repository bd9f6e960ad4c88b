// Package device resolves boot device names to readable handles.
//
// A Device carries an Endpoint which is either a *Disk, a *Network, or nil
// when the name resolved to something that is neither. Callers switch on
// the endpoint type:
//
//	switch ep := dev.Endpoint.(type) {
//	case *device.Network:
//	case *device.Disk:
//	default:
//	}
package device

import (
	"io"
	"sync"
)

// Endpoint is implemented by *Disk and *Network only.
type Endpoint interface {
	endpoint()
}

// Device is an opened device. It must be closed on every path.
type Device struct {
	Name     string
	Endpoint Endpoint

	closer    io.Closer
	closeOnce sync.Once
	closeErr  error
}

// New wraps an endpoint. closer may be nil.
func New(name string, ep Endpoint, closer io.Closer) *Device {
	return &Device{Name: name, Endpoint: ep, closer: closer}
}

// Close releases the underlying handle. Repeated calls return the first result.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		if d.closer != nil {
			d.closeErr = d.closer.Close()
		}
	})
	return d.closeErr
}

// Disk returns the disk endpoint if the device is a disk.
func (d *Device) Disk() (*Disk, bool) {
	disk, ok := d.Endpoint.(*Disk)
	return disk, ok && disk != nil
}

// Disk is a readable disk, or a partition of one.
type Disk struct {
	Driver     string
	Partition  *Partition
	SectorSize int

	r    io.ReaderAt
	size int64
}

// NewDisk builds a disk endpoint reading from r. When part is set, r must
// already be scoped to the partition.
func NewDisk(driver string, part *Partition, r io.ReaderAt, size int64) *Disk {
	return &Disk{Driver: driver, Partition: part, SectorSize: defaultSectorSize, r: r, size: size}
}

func (*Disk) endpoint() {}

// ReadAt reads from the disk, or from the partition if one was selected.
func (d *Disk) ReadAt(p []byte, off int64) (int, error) {
	return d.r.ReadAt(p, off)
}

// Size is the readable length in bytes.
func (d *Disk) Size() int64 {
	return d.size
}

// Network is a network boot endpoint. It has no readable contents.
type Network struct {
	Driver string
	Server string
}

func (*Network) endpoint() {}

// Partition describes the partition a disk device was opened on.
type Partition struct {
	Map    string // "msdos" or "gpt"
	Index  int    // 1-based
	Start  int64  // bytes from the start of the disk
	Length int64  // bytes
	Type   string // MBR type byte ("0x83") or GPT type GUID
	UUID   string // GPT unique partition GUID
	Label  string // GPT partition name
}
