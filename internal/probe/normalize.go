package probe

import "strings"

// Normalize strips one layer of "(...)" from a device name. The input is
// returned unchanged otherwise.
func Normalize(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")") {
		return name[1 : len(name)-1]
	}
	return name
}
