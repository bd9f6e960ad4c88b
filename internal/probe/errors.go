package probe

import "errors"

// Kind classifies a probe failure.
type Kind int

const (
	KindBadArgument Kind = iota + 1
	KindBadDevice
	KindUnknownFilesystem
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindBadArgument:
		return "bad argument"
	case KindBadDevice:
		return "bad device"
	case KindUnknownFilesystem:
		return "unknown filesystem"
	case KindNotImplemented:
		return "not implemented"
	default:
		return "unknown error"
	}
}

// Error is a classified probe failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrBadDevice)
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrBadArgument       = &Error{Kind: KindBadArgument, Message: "bad argument"}
	ErrBadDevice         = &Error{Kind: KindBadDevice, Message: "bad device"}
	ErrUnknownFilesystem = &Error{Kind: KindUnknownFilesystem, Message: "unknown filesystem"}
	ErrNotImplemented    = &Error{Kind: KindNotImplemented, Message: "not implemented"}
)

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of a classified error. Errors passed through
// from a filesystem capability are unclassified.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
