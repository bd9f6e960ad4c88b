package device

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTableMSDOS(t *testing.T) {
	b := msdosImage(t)

	table, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
	require.NoError(t, err)

	assert.Equal(t, MapMSDOS, table.Map)
	require.Len(t, table.Entries, 3)

	assert.Equal(t, Partition{Map: MapMSDOS, Index: 1, Start: 2048 * 512, Length: 2048 * 512, Type: "0x83"}, table.Entries[0])
	assert.Equal(t, 5, table.Entries[1].Index)
	assert.Equal(t, int64(4097*512), table.Entries[1].Start)
	assert.Equal(t, 6, table.Entries[2].Index)
	assert.Equal(t, int64(6145*512), table.Entries[2].Start)
	assert.Equal(t, "0x0b", table.Entries[2].Type)
}

func TestReadTableGPT(t *testing.T) {
	b := gptImage(t)

	table, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
	require.NoError(t, err)

	assert.Equal(t, MapGPT, table.Map)
	require.Len(t, table.Entries, 1)

	p := table.Entries[0]
	assert.Equal(t, 2, p.Index)
	assert.Equal(t, int64(2048*512), p.Start)
	assert.Equal(t, int64(2048*512), p.Length)
	assert.Equal(t, linuxFSType, p.Type)
	assert.Equal(t, rootPartID, p.UUID)
	assert.Equal(t, "root", p.Label)
}

func TestReadTableGPTBadCRC(t *testing.T) {
	b := gptImage(t)
	b.buf[2*512+200] ^= 0xff

	_, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
	assert.ErrorContains(t, err, "CRC mismatch")
}

func TestReadTableGPTRejectsEntryLayout(t *testing.T) {
	tests := []struct {
		name      string
		count     uint32
		entrySize uint32
		want      string
	}{
		{"oversized entries", 1024, 1 << 20, "invalid GPT entry layout"},
		{"unaligned entries", 128, 130, "invalid GPT entry layout"},
		{"array past end of disk", 1024, 4096, "extends past end of disk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := gptImage(t)
			binary.LittleEndian.PutUint32(b.buf[512+80:], tt.count)
			binary.LittleEndian.PutUint32(b.buf[512+84:], tt.entrySize)
			b.sealGPT()

			_, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestReadTableGPTEntryArrayLBAPastDisk(t *testing.T) {
	b := gptImage(t)
	binary.LittleEndian.PutUint64(b.buf[512+72:], 1<<60)
	b.sealGPT()

	_, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
	assert.ErrorContains(t, err, "extends past end of disk")
}

func TestReadTableGPTSkipsEntriesOutsideDisk(t *testing.T) {
	tests := []struct {
		name        string
		first, last uint64
	}{
		{"wraps when scaled", 1 << 55, 1<<55 + 2047},
		{"ends past disk", 2048, testDiskSectors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := gptImage(t)
			e := b.gptEntry(2)
			binary.LittleEndian.PutUint64(e[32:40], tt.first)
			binary.LittleEndian.PutUint64(e[40:48], tt.last)
			b.sealGPT()

			table, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
			require.NoError(t, err)
			assert.Empty(t, table.Entries)

			_, err = table.Find(&PartSpec{Map: MapGPT, Index: 2})
			assert.Error(t, err)
		})
	}
}

func TestReadTableGPTLastSectorIsInside(t *testing.T) {
	b := gptImage(t)
	binary.LittleEndian.PutUint64(b.gptEntry(2)[40:48], testDiskSectors-1)
	b.sealGPT()

	table, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
	require.NoError(t, err)
	require.Len(t, table.Entries, 1)
	assert.Equal(t, int64(2048*512), table.Entries[0].Start)
	assert.Equal(t, int64((testDiskSectors-2048)*512), table.Entries[0].Length)
}

func TestReadTableNoSignature(t *testing.T) {
	b := newImage(t)

	_, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
	assert.ErrorIs(t, err, ErrNoPartitionMap)
}

func TestReadTableBootSectorIsNotAMap(t *testing.T) {
	b := newImage(t)
	b.signature(0)
	b.buf[mbrTableOffset] = 0x4e // boot code spilling into the table area

	_, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
	assert.ErrorIs(t, err, ErrNoPartitionMap)
}

func TestReadTableEmptyMBR(t *testing.T) {
	b := newImage(t)
	b.signature(0)

	_, err := ReadTable(bytes.NewReader(b.buf), int64(len(b.buf)), 512)
	assert.ErrorIs(t, err, ErrNoPartitionMap)
}

func TestTableFind(t *testing.T) {
	table := &Table{Map: MapMSDOS, Entries: []Partition{{Map: MapMSDOS, Index: 1}, {Map: MapMSDOS, Index: 5}}}

	p, err := table.Find(&PartSpec{Index: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Index)

	p, err = table.Find(&PartSpec{Map: MapMSDOS, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Index)

	_, err = table.Find(&PartSpec{Map: MapGPT, Index: 1})
	assert.ErrorContains(t, err, "not gpt")

	_, err = table.Find(&PartSpec{Index: 2})
	assert.ErrorContains(t, err, "no partition msdos2")
}
