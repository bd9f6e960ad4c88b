package device

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"unicode/utf16"

	"github.com/google/uuid"
)

// Partition map names as reported by --partmap.
const (
	MapMSDOS = "msdos"
	MapGPT   = "gpt"
)

const (
	defaultSectorSize = 512
	mbrTableOffset    = 446
	mbrEntrySize      = 16
	gptSignature      = "EFI PART"
	typeGPTProtective = 0xEE
	maxEBRHops        = 128
	maxGPTEntries     = 1024
	maxGPTEntrySize   = 4096
)

// ErrNoPartitionMap is returned when the disk has no recognisable table.
var ErrNoPartitionMap = errors.New("no partition map")

// Table is a parsed partition table.
type Table struct {
	Map     string
	Entries []Partition
}

// Find returns the selected partition. A selector naming a map must
// match the table's map.
func (t *Table) Find(spec *PartSpec) (*Partition, error) {
	if spec.Map != "" && spec.Map != t.Map {
		return nil, fmt.Errorf("disk has a %s partition map, not %s", t.Map, spec.Map)
	}
	for i := range t.Entries {
		if t.Entries[i].Index == spec.Index {
			p := t.Entries[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("no partition %s%d", t.Map, spec.Index)
}

// mbrPartition is a raw 16-byte MBR/EBR entry.
type mbrPartition struct {
	Status      byte
	Type        byte
	FirstSector uint32
	Sectors     uint32
}

func parseMBREntry(b []byte) mbrPartition {
	return mbrPartition{
		Status:      b[0],
		Type:        b[4],
		FirstSector: binary.LittleEndian.Uint32(b[8:12]),
		Sectors:     binary.LittleEndian.Uint32(b[12:16]),
	}
}

func isExtendedType(t byte) bool {
	switch t {
	case 0x05, 0x0F, 0x85:
		return true
	default:
		return false
	}
}

// ReadTable parses the MBR, and the GPT behind a protective MBR.
func ReadTable(r io.ReaderAt, size int64, sectorSize int) (*Table, error) {
	if sectorSize <= 0 {
		sectorSize = defaultSectorSize
	}
	mbr := make([]byte, defaultSectorSize)
	if _, err := r.ReadAt(mbr, 0); err != nil {
		return nil, fmt.Errorf("read MBR: %w", err)
	}
	if mbr[510] != 0x55 || mbr[511] != 0xAA {
		return nil, ErrNoPartitionMap
	}

	var entries [4]mbrPartition
	used := false
	for i := range entries {
		off := mbrTableOffset + i*mbrEntrySize
		e := parseMBREntry(mbr[off : off+mbrEntrySize])
		// A boot sector without a table has garbage here; real entries have
		// a status of 0x00 or 0x80.
		if e.Status != 0x00 && e.Status != 0x80 {
			return nil, ErrNoPartitionMap
		}
		if e.Type == typeGPTProtective {
			return readGPT(r, size, sectorSize)
		}
		if e.Type != 0 {
			used = true
		}
		entries[i] = e
	}
	if !used {
		return nil, ErrNoPartitionMap
	}

	t := &Table{Map: MapMSDOS}
	ss := int64(sectorSize)
	for i, e := range entries {
		if e.Type == 0 || e.Sectors == 0 {
			continue
		}
		if isExtendedType(e.Type) {
			logical, err := readEBRChain(r, size, ss, e.FirstSector)
			if err != nil {
				return nil, err
			}
			t.Entries = append(t.Entries, logical...)
			continue
		}
		t.Entries = append(t.Entries, Partition{
			Map:    MapMSDOS,
			Index:  i + 1,
			Start:  int64(e.FirstSector) * ss,
			Length: int64(e.Sectors) * ss,
			Type:   fmt.Sprintf("0x%02x", e.Type),
		})
	}
	return t, nil
}

// readEBRChain walks the extended boot records; logical partitions are
// numbered from 5.
func readEBRChain(r io.ReaderAt, size, sectorSize int64, baseLBA uint32) ([]Partition, error) {
	var logical []Partition
	next := uint64(baseLBA)
	index := 5

	for hops := 0; hops < maxEBRHops; hops++ {
		buf := make([]byte, defaultSectorSize)
		if _, err := r.ReadAt(buf, int64(next)*sectorSize); err != nil {
			return nil, fmt.Errorf("read EBR at LBA %d failed: %w", next, err)
		}
		if buf[510] != 0x55 || buf[511] != 0xAA {
			return nil, fmt.Errorf("EBR signature missing at LBA %d", next)
		}

		e1 := parseMBREntry(buf[mbrTableOffset : mbrTableOffset+mbrEntrySize])
		e2 := parseMBREntry(buf[mbrTableOffset+mbrEntrySize : mbrTableOffset+2*mbrEntrySize])

		if e1.Type != 0 && e1.Sectors != 0 {
			start := int64(next+uint64(e1.FirstSector)) * sectorSize
			length := int64(e1.Sectors) * sectorSize
			if size <= 0 || start+length <= size {
				logical = append(logical, Partition{
					Map:    MapMSDOS,
					Index:  index,
					Start:  start,
					Length: length,
					Type:   fmt.Sprintf("0x%02x", e1.Type),
				})
			}
			index++
		}

		if e2.Type == 0 || e2.Sectors == 0 || !isExtendedType(e2.Type) {
			break
		}
		next = uint64(baseLBA) + uint64(e2.FirstSector)
	}
	return logical, nil
}

// readGPT reads the GPT header at LBA 1 and its entry array. size bounds the
// entry array and every partition; a size of zero or less means unknown.
func readGPT(r io.ReaderAt, size int64, sectorSize int) (*Table, error) {
	ss := int64(sectorSize)
	lbas := uint64(math.MaxInt64 / ss)
	if size > 0 {
		lbas = uint64(size / ss)
	}
	hdr := make([]byte, sectorSize)
	if _, err := r.ReadAt(hdr, ss); err != nil {
		return nil, fmt.Errorf("read GPT header: %w", err)
	}
	if string(hdr[0:8]) != gptSignature {
		return nil, fmt.Errorf("protective MBR without GPT header")
	}

	headerSize := binary.LittleEndian.Uint32(hdr[12:16])
	if headerSize < 92 || int(headerSize) > len(hdr) {
		return nil, fmt.Errorf("invalid GPT header size %d", headerSize)
	}
	if err := validateGPTHeaderCRC(hdr, headerSize); err != nil {
		return nil, err
	}

	entriesLBA := binary.LittleEndian.Uint64(hdr[72:80])
	count := binary.LittleEndian.Uint32(hdr[80:84])
	entrySize := binary.LittleEndian.Uint32(hdr[84:88])
	entriesCRC := binary.LittleEndian.Uint32(hdr[88:92])
	if entrySize < 128 || entrySize > maxGPTEntrySize || entrySize%8 != 0 || count == 0 || count > maxGPTEntries {
		return nil, fmt.Errorf("invalid GPT entry layout: %d entries of %d bytes", count, entrySize)
	}
	arrayLen := uint64(count) * uint64(entrySize)
	if entriesLBA >= lbas || arrayLen > (lbas-entriesLBA)*uint64(ss) {
		return nil, fmt.Errorf("GPT entry array at LBA %d extends past end of disk", entriesLBA)
	}

	raw := make([]byte, arrayLen)
	if _, err := r.ReadAt(raw, int64(entriesLBA)*ss); err != nil {
		return nil, fmt.Errorf("read GPT entries: %w", err)
	}
	if crc := crc32.ChecksumIEEE(raw); crc != entriesCRC {
		return nil, fmt.Errorf("GPT entries CRC mismatch: calculated 0x%08X, expected 0x%08X", crc, entriesCRC)
	}

	t := &Table{Map: MapGPT}
	for i := 0; i < int(count); i++ {
		e := raw[i*int(entrySize) : (i+1)*int(entrySize)]
		if isAllZero(e[0:16]) {
			continue
		}
		first := binary.LittleEndian.Uint64(e[32:40])
		last := binary.LittleEndian.Uint64(e[40:48])
		// Entries outside the disk would wrap when scaled to bytes.
		if last < first || last >= lbas {
			continue
		}
		t.Entries = append(t.Entries, Partition{
			Map:    MapGPT,
			Index:  i + 1,
			Start:  int64(first) * ss,
			Length: int64(last-first+1) * ss,
			Type:   guidToString(e[0:16]),
			UUID:   guidToString(e[16:32]),
			Label:  decodeUTF16LE(e[56:128]),
		})
	}
	return t, nil
}

// guidToString formats a mixed-endian on-disk GUID.
func guidToString(b []byte) string {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(u[8:], b[8:16])
	return u.String()
}

// decodeUTF16LE decodes NUL-terminated UTF-16LE partition names
func decodeUTF16LE(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	u16 := make([]uint16, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		v := binary.LittleEndian.Uint16(b[i : i+2])
		if v == 0 {
			break
		}
		u16 = append(u16, v)
	}
	return string(utf16.Decode(u16))
}

func isAllZero(b []byte) bool {
	return len(bytes.Trim(b, "\x00")) == 0
}

// validateGPTHeaderCRC checks the header CRC with the CRC field zeroed
func validateGPTHeaderCRC(hdr []byte, headerSize uint32) error {
	orig := binary.LittleEndian.Uint32(hdr[16:20])

	tmp := make([]byte, headerSize)
	copy(tmp, hdr[:headerSize])
	for i := 16; i < 20; i++ {
		tmp[i] = 0
	}

	if crc := crc32.ChecksumIEEE(tmp); crc != orig {
		return fmt.Errorf("GPT header CRC mismatch: calculated 0x%08X, expected 0x%08X", crc, orig)
	}
	return nil
}
