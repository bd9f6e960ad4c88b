package probe

import (
	"errors"
	"io"
)

// Variables is the store --set writes into.
type Variables interface {
	Set(name, value string) error
}

// Output is either the console (zero value) or a named variable.
type Output struct {
	Variable string
}

// Console reports whether the result is printed.
func (o Output) Console() bool {
	return o.Variable == ""
}

// Emit delivers value to the output. Console output is the bare value.
func Emit(out Output, vars Variables, w io.Writer, value string) error {
	if out.Console() {
		_, err := io.WriteString(w, value)
		return err
	}
	if vars == nil {
		return errors.New("no variable store configured")
	}
	return vars.Set(out.Variable, value)
}
