package rfcgrid

import "context"

// Driver synthesizes a remote-call surface typed by Controller, the
// interface the caller asserts the remote peer implements. The
// assertion is purely structural — Go has no runtime means (short of
// reflect on Controller's method set, which buys nothing here) to
// verify the remote actually implements it.
//
// Driver has no dynamic member-access hook: Path and Caller.Path build
// the dotted name explicitly instead of synthesizing it from attribute
// access. There is also no Then method — awaiting a driver isn't
// something a Go program can do by mistake, so there's nothing to
// guard against.
type Driver[Controller any] struct {
	c *Communicator
}

// GetDriver returns a proxy driver typed by Controller. It never
// inspects Controller at runtime; the type parameter exists purely so
// call sites read as driver.Call(ctx, "a.b.c", x, y) against the
// interface they expect the peer to satisfy.
func GetDriver[Controller any](c *Communicator) *Driver[Controller] {
	return &Driver[Controller]{c: c}
}

// Call invokes the dotted path on the remote provider directly,
// equivalent to synthesizing a path-proxy and calling it in one step.
func (d *Driver[Controller]) Call(ctx context.Context, path string, params ...Value) (Value, error) {
	return d.c.Invoke(ctx, path, params...)
}

// Path returns a Caller bound to a single path segment, letting callers
// build up a dotted name the way repeated member access would in the
// source (driver.a.b.c becomes driver.Path("a").Path("b").Path("c")).
func (d *Driver[Controller]) Path(segment string) *Caller {
	return &Caller{c: d.c, path: segment}
}

// Caller is a callable path-proxy for one dotted name. Accessing a
// further member via Path extends the path; Call invokes it.
type Caller struct {
	c    *Communicator
	path string
}

// Path extends the bound dotted path by one more segment, mirroring
// "accessing a member n on a path-proxy for p produces a callable
// proxy for p.n".
func (p *Caller) Path(segment string) *Caller {
	return &Caller{c: p.c, path: p.path + "." + segment}
}

// Call invokes the bound path with positional arguments, mirroring
// "invoking a path-proxy for p with positional arguments calls
// invoke(p, [...])".
func (p *Caller) Call(ctx context.Context, params ...Value) (Value, error) {
	return p.c.Invoke(ctx, p.path, params...)
}

// Bind returns a function that rebinds the caller's invocation to a
// fixed context, a compatibility shim equivalent to the source's
// pseudo-member bind on a callable path-proxy.
func (p *Caller) Bind(ctx context.Context) func(params ...Value) (Value, error) {
	return func(params ...Value) (Value, error) {
		return p.Call(ctx, params...)
	}
}
