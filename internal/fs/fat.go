package fs

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// FAT detects FAT12, FAT16 and FAT32 from the boot sector BPB.
type FAT struct{}

func (FAT) Name() string { return "fat" }

func (FAT) Detect(r Reader) (Filesystem, error) {
	bs, err := readBlock(r, 0, 512)
	if err != nil || bs == nil {
		return nil, err
	}
	if bs[510] != 0x55 || bs[511] != 0xAA {
		return nil, nil
	}

	bytesPerSector := binary.LittleEndian.Uint16(bs[11:13])
	sectorsPerCluster := bs[13]
	reserved := binary.LittleEndian.Uint16(bs[14:16])
	fats := bs[16]
	if !isPow2(uint32(bytesPerSector)) || bytesPerSector < 512 || bytesPerSector > 4096 {
		return nil, nil
	}
	if sectorsPerCluster == 0 || !isPow2(uint32(sectorsPerCluster)) || reserved == 0 || fats == 0 {
		return nil, nil
	}

	// FAT32 leaves the 16-bit sectors-per-FAT field zero and moves the
	// extended BPB to 0x40.
	ext := 0x24
	if binary.LittleEndian.Uint16(bs[22:24]) == 0 {
		ext = 0x40
	}
	if bs[ext+2] != 0x29 || !strings.HasPrefix(string(bs[ext+18:ext+26]), "FAT") {
		return nil, nil
	}

	f := &fatFS{
		r:         r,
		serial:    binary.LittleEndian.Uint32(bs[ext+3 : ext+7]),
		bpbLabel:  string(bs[ext+7 : ext+18]),
		sectorLen: int64(bytesPerSector),
		cluster:   int64(sectorsPerCluster) * int64(bytesPerSector),
		fatStart:  int64(reserved) * int64(bytesPerSector),
	}
	fatSize := int64(binary.LittleEndian.Uint16(bs[22:24]))
	if ext == 0x40 {
		fatSize = int64(binary.LittleEndian.Uint32(bs[36:40]))
		f.fat32 = true
		f.rootCluster = binary.LittleEndian.Uint32(bs[44:48])
	}
	f.rootStart = f.fatStart + int64(fats)*fatSize*f.sectorLen
	f.rootEntries = int64(binary.LittleEndian.Uint16(bs[17:19]))
	return f, nil
}

func isPow2(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

const (
	fatDirEntrySize  = 32
	fatAttrVolumeID  = 0x08
	fatAttrDirectory = 0x10
	fatAttrLongName  = 0x0F
	fat32EndOfChain  = 0x0FFFFFF8
	maxRootClusters  = 64
)

type fatFS struct {
	r        Reader
	serial   uint32
	bpbLabel string

	fat32     bool
	sectorLen int64
	cluster   int64
	fatStart  int64
	// rootStart is the root directory on FAT12/16 and the data region on FAT32.
	rootStart   int64
	rootEntries int64
	rootCluster uint32
}

func (*fatFS) Name() string { return "fat" }

// UUID formats the volume serial as XXXX-XXXX.
func (f *fatFS) UUID() (string, error) {
	return fmt.Sprintf("%04x-%04x", uint16(f.serial>>16), uint16(f.serial)), nil
}

// Label prefers the volume label entry in the root directory, which label
// tools keep current, over the copy in the boot sector.
func (f *fatFS) Label() (string, error) {
	label, found, err := f.rootLabel()
	if err != nil {
		return "", err
	}
	if !found {
		label = strings.TrimRight(cString([]byte(f.bpbLabel)), " ")
	}
	if label == "NO NAME" {
		return "", nil
	}
	return label, nil
}

func (f *fatFS) rootLabel() (string, bool, error) {
	if !f.fat32 {
		if f.rootEntries == 0 {
			return "", false, nil
		}
		dir, err := readBlock(f.r, f.rootStart, int(f.rootEntries*fatDirEntrySize))
		if err != nil || dir == nil {
			return "", false, err
		}
		label, found, _ := scanVolumeLabel(dir)
		return label, found, nil
	}

	c := f.rootCluster
	for hops := 0; hops < maxRootClusters && c >= 2 && c < fat32EndOfChain; hops++ {
		dir, err := readBlock(f.r, f.rootStart+int64(c-2)*f.cluster, int(f.cluster))
		if err != nil || dir == nil {
			return "", false, err
		}
		label, found, end := scanVolumeLabel(dir)
		if found || end {
			return label, found, nil
		}

		next, err := readBlock(f.r, f.fatStart+int64(c)*4, 4)
		if err != nil || next == nil {
			return "", false, err
		}
		c = binary.LittleEndian.Uint32(next) & 0x0FFFFFFF
	}
	return "", false, nil
}

// scanVolumeLabel looks for the volume label entry in a run of directory
// entries. end reports that the end-of-directory marker was reached.
func scanVolumeLabel(dir []byte) (label string, found, end bool) {
	for off := 0; off+fatDirEntrySize <= len(dir); off += fatDirEntrySize {
		e := dir[off : off+fatDirEntrySize]
		switch e[0] {
		case 0x00:
			return "", false, true
		case 0xE5:
			continue
		}
		attr := e[11]
		if attr&fatAttrLongName == fatAttrLongName || attr&(fatAttrVolumeID|fatAttrDirectory) != fatAttrVolumeID {
			continue
		}
		name := make([]byte, 11)
		copy(name, e[:11])
		if name[0] == 0x05 {
			name[0] = 0xE5
		}
		return strings.TrimRight(string(name), " "), true, false
	}
	return "", false, false
}
