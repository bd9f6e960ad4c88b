package fs

import "encoding/binary"

const squash4Magic = 0x73717368

// Squash4 detects squashfs 4.x. It carries neither UUID nor label.
type Squash4 struct{}

func (Squash4) Name() string { return "squash4" }

func (Squash4) Detect(r Reader) (Filesystem, error) {
	sb, err := readBlock(r, 0, 96)
	if err != nil || sb == nil {
		return nil, err
	}
	if binary.LittleEndian.Uint32(sb[0:4]) != squash4Magic || binary.LittleEndian.Uint16(sb[28:30]) != 4 {
		return nil, nil
	}
	return squash4FS{}, nil
}

type squash4FS struct{}

func (squash4FS) Name() string { return "squash4" }
