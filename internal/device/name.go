package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Built-in network protocols; the protocol is also the driver name.
var networkProtocols = map[string]bool{
	"tftp":  true,
	"http":  true,
	"https": true,
	"pxe":   true,
}

// Name is a parsed device name.
type Name struct {
	// Disk is the whole-disk name (hd0) or an absolute host path.
	Disk string
	Part *PartSpec

	Network bool
	Proto   string
	Server  string
}

// PartSpec selects a partition. Map is empty when only an index was given.
type PartSpec struct {
	Map   string
	Index int
}

func (p *PartSpec) String() string {
	return p.Map + strconv.Itoa(p.Index)
}

// ParseName splits a device name such as "hd0,msdos1" or "tftp,10.0.0.1".
// isNetwork reports extra network device names beyond the built-in protocols.
func ParseName(s string, isNetwork func(string) bool) (*Name, error) {
	if s == "" {
		return nil, fmt.Errorf("empty device name")
	}
	if strings.HasPrefix(s, "/") {
		return parseHostPath(s), nil
	}

	head, rest, hasRest := strings.Cut(s, ",")
	if networkProtocols[head] || (isNetwork != nil && isNetwork(head)) {
		return &Name{Network: true, Proto: head, Server: rest}, nil
	}
	if head == "" {
		return nil, fmt.Errorf("missing disk name in %q", s)
	}

	n := &Name{Disk: head}
	if !hasRest {
		return n, nil
	}
	if strings.Contains(rest, ",") {
		return nil, fmt.Errorf("nested partitions are not supported: %q", s)
	}
	part, err := parsePartSpec(rest)
	if err != nil {
		return nil, err
	}
	n.Part = part
	return n, nil
}

// parseHostPath splits a trailing ",PART" off an absolute path. A suffix
// that is not a partition is part of the file name.
func parseHostPath(s string) *Name {
	i := strings.LastIndex(s, ",")
	if i < 0 || strings.Contains(s[i+1:], "/") {
		return &Name{Disk: s}
	}
	part, err := parsePartSpec(s[i+1:])
	if err != nil {
		return &Name{Disk: s}
	}
	return &Name{Disk: s[:i], Part: part}
}

func parsePartSpec(s string) (*PartSpec, error) {
	i := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return nil, fmt.Errorf("partition %q has no number", s)
	}
	idx, err := strconv.Atoi(s[i:])
	if err != nil || idx < 1 {
		return nil, fmt.Errorf("invalid partition number in %q", s)
	}
	m := s[:i]
	switch m {
	case "", MapMSDOS, MapGPT:
	default:
		return nil, fmt.Errorf("unknown partition map %q", m)
	}
	return &PartSpec{Map: m, Index: idx}, nil
}
