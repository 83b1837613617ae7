package cmd

import "context"

// RunFunc is the body a middleware puts in front of a command. It usually
// ends by calling the wrapped command's Run.
type RunFunc func(ctx context.Context, inv *Invocation) error

// Middleware decorates a command. Decorated commands keep the name and
// description of the command underneath.
type Middleware func(Command) Command

// Apply decorates c with mws in order, so the last one runs first. nil
// entries are skipped.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		if mw != nil {
			c = mw(c)
		}
	}
	return c
}

type wrapped struct {
	inner Command
	run   RunFunc
}

func (w *wrapped) Name() string        { return w.inner.Name() }
func (w *wrapped) Description() string { return w.inner.Description() }

func (w *wrapped) Run(ctx context.Context, inv *Invocation) error {
	return w.run(ctx, inv)
}

func (w *wrapped) unwrap() Command { return w.inner }

// Wrap returns c with run in place of c.Run. A nil run returns c unchanged.
func Wrap(c Command, run RunFunc) Command {
	if run == nil {
		return c
	}
	return &wrapped{inner: c, run: run}
}

// Root returns the undecorated command under any number of Wrap calls, which
// is where the metadata interfaces of a command live.
func Root(c Command) Command {
	for {
		w, ok := c.(*wrapped)
		if !ok {
			return c
		}
		c = w.unwrap()
	}
}
