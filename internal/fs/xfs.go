package fs

import (
	"strings"

	"github.com/google/uuid"
)

type XFS struct{}

func (XFS) Name() string { return "xfs" }

func (XFS) Detect(r Reader) (Filesystem, error) {
	sb, err := readBlock(r, 0, 512)
	if err != nil || sb == nil {
		return nil, err
	}
	if string(sb[0:4]) != "XFSB" {
		return nil, nil
	}
	return &xfsFS{sb: sb}, nil
}

type xfsFS struct {
	sb []byte
}

func (*xfsFS) Name() string { return "xfs" }

func (x *xfsFS) UUID() (string, error) {
	u, err := uuid.FromBytes(x.sb[32:48])
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (x *xfsFS) Label() (string, error) {
	return strings.TrimSpace(cString(x.sb[108:120])), nil
}
