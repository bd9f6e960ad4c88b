package fs

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

const (
	ext2SuperblockOffset = 1024
	ext2SuperblockSize   = 1024
	ext2Magic            = 0xEF53

	ext3FeatureIncompatJournalDev = 0x0008
)

// Ext2 detects ext2, ext3 and ext4, all reported as "ext2" as boot
// loaders read them with one driver.
type Ext2 struct{}

func (Ext2) Name() string { return "ext2" }

func (Ext2) Detect(r Reader) (Filesystem, error) {
	sb, err := readBlock(r, ext2SuperblockOffset, ext2SuperblockSize)
	if err != nil || sb == nil {
		return nil, err
	}
	if binary.LittleEndian.Uint16(sb[0x38:0x3a]) != ext2Magic {
		return nil, nil
	}
	// external journal devices carry the magic but hold no files
	if binary.LittleEndian.Uint32(sb[0x60:0x64])&ext3FeatureIncompatJournalDev != 0 {
		return nil, nil
	}
	return &ext2FS{sb: sb}, nil
}

type ext2FS struct {
	sb []byte
}

func (*ext2FS) Name() string { return "ext2" }

func (e *ext2FS) UUID() (string, error) {
	u, err := uuid.FromBytes(e.sb[0x68:0x78])
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (e *ext2FS) Label() (string, error) {
	return strings.TrimSpace(cString(e.sb[0x78:0x88])), nil
}
