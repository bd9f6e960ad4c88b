// Package report gathers every probe property of one device for the info
// command.
package report

import (
	"github.com/dustin/go-humanize"
	"github.com/sigreer/bootprobe/internal/device"
	"github.com/sigreer/bootprobe/internal/probe"
)

// Report describes one device
type Report struct {
	Device     string     `json:"device"`
	Kind       string     `json:"kind"`
	SizeBytes  int64      `json:"size_bytes,omitempty"`
	Size       string     `json:"size,omitempty"`
	Server     string     `json:"server,omitempty"`
	Partition  *Partition `json:"partition,omitempty"`
	Properties []Property `json:"properties"`
}

// Partition is the partition the device was opened on
type Partition struct {
	Map    string `json:"map"`
	Index  int    `json:"index"`
	Start  int64  `json:"start"`
	Length int64  `json:"length"`
	Type   string `json:"type,omitempty"`
	UUID   string `json:"uuid,omitempty"`
	Label  string `json:"label,omitempty"`
}

// Property is one probe target's value, or why it could not be resolved
type Property struct {
	Target string `json:"target"`
	Value  string `json:"value,omitempty"`
	Kind   string `json:"error_kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Collect opens raw once and resolves every target against it. Only a
// failure to open the device is returned as an error.
func Collect(cmd *probe.Command, raw string) (*Report, error) {
	dev, err := cmd.Open(raw)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	r := &Report{Device: dev.Name}
	switch ep := dev.Endpoint.(type) {
	case *device.Disk:
		r.Kind = "disk"
		r.SizeBytes = ep.Size()
		r.Size = humanize.IBytes(uint64(ep.Size()))
		if p := ep.Partition; p != nil {
			r.Partition = &Partition{
				Map:    p.Map,
				Index:  p.Index,
				Start:  p.Start,
				Length: p.Length,
				Type:   p.Type,
				UUID:   p.UUID,
				Label:  p.Label,
			}
		}
	case *device.Network:
		r.Kind = "network"
		r.Server = ep.Server
	default:
		r.Kind = "none"
	}

	for _, t := range probe.Targets {
		prop := Property{Target: t.String()}
		value, err := cmd.Resolve(dev, t)
		if err != nil {
			prop.Error = err.Error()
			if kind, ok := probe.KindOf(err); ok {
				prop.Kind = kind.String()
			}
		} else {
			prop.Value = value
		}
		r.Properties = append(r.Properties, prop)
	}
	return r, nil
}
