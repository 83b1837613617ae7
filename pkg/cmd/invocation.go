// Package cmd is the transport-agnostic command core. A command has a name,
// a description and Run(ctx, invocation); adapters decide how it is exposed
// (Discord slash command, CLI) and what they put into the invocation.
package cmd

import "context"

// Invocation is what an adapter hands to a command: positional arguments and
// an opaque, adapter-specific payload.
type Invocation struct {
	Args []string
	Data any
}

// Arg returns the i-th argument or "" when there is none.
func (inv *Invocation) Arg(i int) string {
	if inv == nil || i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
