package device

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testDiskSectors = 8192

type imageBuilder struct {
	t   *testing.T
	buf []byte
}

func newImage(t *testing.T) *imageBuilder {
	return &imageBuilder{t: t, buf: make([]byte, testDiskSectors*512)}
}

func (b *imageBuilder) signature(lba int) {
	off := lba*512 + 510
	b.buf[off] = 0x55
	b.buf[off+1] = 0xAA
}

func (b *imageBuilder) mbrEntry(lba, slot int, status, typ byte, first, sectors uint32) {
	off := lba*512 + mbrTableOffset + slot*mbrEntrySize
	b.buf[off] = status
	b.buf[off+4] = typ
	binary.LittleEndian.PutUint32(b.buf[off+8:], first)
	binary.LittleEndian.PutUint32(b.buf[off+12:], sectors)
}

func (b *imageBuilder) write(off int64, data []byte) {
	copy(b.buf[off:], data)
}

func (b *imageBuilder) save(dir, name string) string {
	path := filepath.Join(dir, name)
	require.NoError(b.t, os.WriteFile(path, b.buf, 0644))
	return path
}

// msdosImage has a primary at sector 2048 and two logical partitions
// behind an extended partition at 4096.
func msdosImage(t *testing.T) *imageBuilder {
	b := newImage(t)
	b.mbrEntry(0, 0, 0x80, 0x83, 2048, 2048)
	b.mbrEntry(0, 1, 0x00, 0x05, 4096, 4096)
	b.signature(0)

	b.mbrEntry(4096, 0, 0, 0x83, 1, 1024)
	b.mbrEntry(4096, 1, 0, 0x05, 2048, 1024)
	b.signature(4096)

	b.mbrEntry(6144, 0, 0, 0x0b, 1, 512)
	b.signature(6144)
	return b
}

func putGUID(dst []byte, s string) {
	u := uuid.MustParse(s)
	binary.LittleEndian.PutUint32(dst[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(dst[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(dst[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(dst[8:16], u[8:16])
}

const (
	linuxFSType = "0fc63daf-8483-4772-8e79-3d69d8477de4"
	rootPartID  = "6a1e2b3c-4d5e-4f60-8172-8394a5b6c7d8"
)

// gptImage has one Linux filesystem partition named "root" at 2048-4095,
// in the second entry slot.
func gptImage(t *testing.T) *imageBuilder {
	b := newImage(t)
	b.mbrEntry(0, 0, 0x00, typeGPTProtective, 1, testDiskSectors-1)
	b.signature(0)

	const count, size = 128, 128
	entries := make([]byte, count*size)
	e := entries[size : 2*size]
	putGUID(e[0:16], linuxFSType)
	putGUID(e[16:32], rootPartID)
	binary.LittleEndian.PutUint64(e[32:40], 2048)
	binary.LittleEndian.PutUint64(e[40:48], 4095)
	for i, c := range utf16.Encode([]rune("root")) {
		binary.LittleEndian.PutUint16(e[56+2*i:], c)
	}
	b.write(2*512, entries)

	hdr := make([]byte, 92)
	copy(hdr[0:8], gptSignature)
	binary.LittleEndian.PutUint32(hdr[8:12], 0x00010000)
	binary.LittleEndian.PutUint32(hdr[12:16], 92)
	binary.LittleEndian.PutUint64(hdr[24:32], 1)
	binary.LittleEndian.PutUint64(hdr[72:80], 2)
	binary.LittleEndian.PutUint32(hdr[80:84], count)
	binary.LittleEndian.PutUint32(hdr[84:88], size)
	b.write(512, hdr)
	b.sealGPT()
	return b
}

// gptEntry returns the 128-byte entry in the given 1-based slot.
func (b *imageBuilder) gptEntry(slot int) []byte {
	off := 2*512 + (slot-1)*128
	return b.buf[off : off+128]
}

// sealGPT recomputes the entry array and header CRCs after an edit. The
// entry CRC is left alone when the array does not fit the image.
func (b *imageBuilder) sealGPT() {
	hdr := b.buf[512 : 512+92]
	count := binary.LittleEndian.Uint32(hdr[80:84])
	size := binary.LittleEndian.Uint32(hdr[84:88])
	if n := uint64(count) * uint64(size); 2*512+n <= uint64(len(b.buf)) {
		binary.LittleEndian.PutUint32(hdr[88:92], crc32.ChecksumIEEE(b.buf[2*512:2*512+n]))
	}
	binary.LittleEndian.PutUint32(hdr[16:20], 0)
	binary.LittleEndian.PutUint32(hdr[16:20], crc32.ChecksumIEEE(hdr))
}
