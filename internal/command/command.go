// Package command keeps the set of subcommands a host exposes. Commands are
// registered at startup and can be withdrawn by name.
package command

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

// Table is a registry of named commands.
type Table interface {
	Register(cmd *cobra.Command) error
	Unregister(name string) bool
	Lookup(name string) (*cobra.Command, bool)
}

// Root is a Table backed by a cobra root command.
type Root struct {
	mu   sync.Mutex
	root *cobra.Command
}

// NewRoot wraps root. Commands already attached to root are visible
// through Lookup.
func NewRoot(root *cobra.Command) *Root {
	return &Root{root: root}
}

// Register attaches cmd to the root. A name or alias clash with a
// registered command is an error.
func (r *Root) Register(cmd *cobra.Command) error {
	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range append([]string{name}, cmd.Aliases...) {
		if existing, ok := r.lookup(n); ok {
			return fmt.Errorf("command %q already registered as %q", n, existing.Name())
		}
	}
	r.root.AddCommand(cmd)
	return nil
}

// Unregister detaches the command called name. It reports whether the
// command was registered.
func (r *Root) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd, ok := r.lookup(name)
	if !ok {
		return false
	}
	r.root.RemoveCommand(cmd)
	return true
}

// Lookup finds a registered command by name or alias.
func (r *Root) Lookup(name string) (*cobra.Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(name)
}

func (r *Root) lookup(name string) (*cobra.Command, bool) {
	name = strings.TrimSpace(name)
	for _, c := range r.root.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return c, true
		}
	}
	return nil, false
}
