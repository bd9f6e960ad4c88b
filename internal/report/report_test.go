package report

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sigreer/bootprobe/internal/device"
	"github.com/sigreer/bootprobe/internal/fs"
	"github.com/sigreer/bootprobe/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDevices map[string]device.Endpoint

func (s staticDevices) Open(name string) (*device.Device, error) {
	ep, ok := s[name]
	if !ok {
		return nil, assert.AnError
	}
	return device.New(name, ep, nil), nil
}

func ext2Disk(t *testing.T) *device.Disk {
	t.Helper()
	img := make([]byte, 64*1024)
	binary.LittleEndian.PutUint16(img[1024+0x38:], 0xEF53)
	u := uuid.MustParse("0b5e3f61-9d1c-4b8e-a3c0-7e5f2d1a9b44")
	copy(img[1024+0x68:], u[:])
	part := &device.Partition{Map: device.MapMSDOS, Index: 1, Start: 1 << 20, Length: int64(len(img)), Type: "0x83"}
	return device.NewDisk("ata", part, bytes.NewReader(img), int64(len(img)))
}

func newCommand(t *testing.T) *probe.Command {
	devices := staticDevices{
		"hd0,msdos1": ext2Disk(t),
		"tftp":       &device.Network{Driver: "tftp", Server: "10.0.0.1"},
	}
	return probe.New(devices, fs.DefaultProber(), nil, &bytes.Buffer{})
}

func TestCollectDisk(t *testing.T) {
	r, err := Collect(newCommand(t), "(hd0,msdos1)")
	require.NoError(t, err)

	assert.Equal(t, "hd0,msdos1", r.Device)
	assert.Equal(t, "disk", r.Kind)
	assert.Equal(t, "64 KiB", r.Size)
	require.NotNil(t, r.Partition)
	assert.Equal(t, "msdos", r.Partition.Map)

	require.Len(t, r.Properties, 5)
	assert.Equal(t, Property{Target: "driver", Value: "ata"}, r.Properties[0])
	assert.Equal(t, Property{Target: "partmap", Value: "msdos"}, r.Properties[1])
	assert.Equal(t, Property{Target: "fs", Value: "ext2"}, r.Properties[2])
	assert.Equal(t, Property{Target: "fs-uuid", Value: "0b5e3f61-9d1c-4b8e-a3c0-7e5f2d1a9b44"}, r.Properties[3])
	assert.Equal(t, "label", r.Properties[4].Target)
	assert.Equal(t, "not implemented", r.Properties[4].Kind)
}

func TestCollectNetwork(t *testing.T) {
	r, err := Collect(newCommand(t), "tftp")
	require.NoError(t, err)

	assert.Equal(t, "network", r.Kind)
	assert.Equal(t, "10.0.0.1", r.Server)
	assert.Equal(t, "tftp", r.Properties[0].Value)
	assert.Equal(t, "none", r.Properties[1].Value)
	for _, p := range r.Properties[2:] {
		assert.Equal(t, "unknown filesystem", p.Kind, p.Target)
	}
}

func TestCollectBadDevice(t *testing.T) {
	_, err := Collect(newCommand(t), "hd7")
	assert.ErrorIs(t, err, probe.ErrBadDevice)
}

func TestPrintTable(t *testing.T) {
	r, err := Collect(newCommand(t), "hd0,msdos1")
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintTable(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Device:     hd0,msdos1")
	assert.Contains(t, out, "Partition:  msdos1 at 1.0 MiB")
	assert.Contains(t, out, "Part Type:  0x83")
	assert.Contains(t, out, "fs         ext2")
	assert.Contains(t, out, "label      (label for this FS isn't supported yet)")
}

func TestPrintJSON(t *testing.T) {
	r, err := Collect(newCommand(t), "hd0,msdos1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, r))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hd0,msdos1", decoded["device"])
	assert.Len(t, decoded["properties"], 5)
}
