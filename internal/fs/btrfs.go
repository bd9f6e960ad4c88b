package fs

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
)

const (
	btrfsSuperblockOffset = 0x10000
	btrfsSuperblockSize   = 0x1000
)

var btrfsMagic = []byte("_BHRfS_M")

type Btrfs struct{}

func (Btrfs) Name() string { return "btrfs" }

func (Btrfs) Detect(r Reader) (Filesystem, error) {
	sb, err := readBlock(r, btrfsSuperblockOffset, btrfsSuperblockSize)
	if err != nil || sb == nil {
		return nil, err
	}
	if !bytes.Equal(sb[0x40:0x48], btrfsMagic) {
		return nil, nil
	}
	return &btrfsFS{sb: sb}, nil
}

type btrfsFS struct {
	sb []byte
}

func (*btrfsFS) Name() string { return "btrfs" }

func (b *btrfsFS) UUID() (string, error) {
	u, err := uuid.FromBytes(b.sb[0x20:0x30])
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (b *btrfsFS) Label() (string, error) {
	return strings.TrimSpace(cString(b.sb[0x12b : 0x12b+0x100])), nil
}
