package probe

import "github.com/sigreer/bootprobe/internal/envstore"

// Target is the property a probe reports.
type Target int

const (
	TargetNone Target = iota
	TargetDriver
	TargetPartmap
	TargetFS
	TargetFSUUID
	TargetLabel
)

// Targets lists every real target in priority order.
var Targets = []Target{TargetDriver, TargetPartmap, TargetFS, TargetFSUUID, TargetLabel}

func (t Target) String() string {
	switch t {
	case TargetDriver:
		return "driver"
	case TargetPartmap:
		return "partmap"
	case TargetFS:
		return "fs"
	case TargetFSUUID:
		return "fs-uuid"
	case TargetLabel:
		return "label"
	default:
		return "none"
	}
}

// needsFilesystem reports whether resolving t requires a filesystem probe.
func (t Target) needsFilesystem() bool {
	return t == TargetFS || t == TargetFSUUID || t == TargetLabel
}

// Options are the parsed probe flags.
type Options struct {
	// Set is the variable to assign; only used when SetGiven.
	Set      string
	SetGiven bool

	Driver  bool
	Partmap bool
	FS      bool
	FSUUID  bool
	Label   bool
}

// Target picks the requested property. Several flags may be set; the first
// in priority order wins.
func (o Options) Target() Target {
	switch {
	case o.Driver:
		return TargetDriver
	case o.Partmap:
		return TargetPartmap
	case o.FS:
		return TargetFS
	case o.FSUUID:
		return TargetFSUUID
	case o.Label:
		return TargetLabel
	default:
		return TargetNone
	}
}

// Output derives where the result goes.
func (o Options) Output() (Output, error) {
	if !o.SetGiven {
		return Output{}, nil
	}
	if !envstore.ValidName(o.Set) {
		return Output{}, newError(KindBadArgument, "invalid variable name "+quote(o.Set), nil)
	}
	return Output{Variable: o.Set}, nil
}

func quote(s string) string {
	return "'" + s + "'"
}
