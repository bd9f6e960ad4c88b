package fs

import (
	"fmt"
	"strings"
)

const (
	isoPVDOffset = 16 * 2048
	isoPVDSize   = 2048
)

type ISO9660 struct{}

func (ISO9660) Name() string { return "iso9660" }

func (ISO9660) Detect(r Reader) (Filesystem, error) {
	pvd, err := readBlock(r, isoPVDOffset, isoPVDSize)
	if err != nil || pvd == nil {
		return nil, err
	}
	if pvd[0] != 1 || string(pvd[1:6]) != "CD001" {
		return nil, nil
	}
	return &isoFS{pvd: pvd}, nil
}

type isoFS struct {
	pvd []byte
}

func (*isoFS) Name() string { return "iso9660" }

func (i *isoFS) Label() (string, error) {
	return strings.TrimRight(cString(i.pvd[40:72]), " "), nil
}

// UUID is derived from the volume modification date, YYYY-MM-DD-HH-MM-SS-CC.
// Images without a date have no UUID.
func (i *isoFS) UUID() (string, error) {
	d := i.pvd[830:846]
	zero := true
	for _, c := range d {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("malformed modification date %q", d)
		}
		if c != '0' {
			zero = false
		}
	}
	if zero {
		return "", nil
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s-%s-%s", d[0:4], d[4:6], d[6:8], d[8:10], d[10:12], d[12:14], d[14:16]), nil
}
