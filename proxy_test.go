package rfcgrid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type driverTarget struct{}

func (driverTarget) A(x, y int) int { return x * y }

func TestDriverCallInvokesDottedPathDirectly(t *testing.T) {
	a, _, stop := loopback(t, dottedProvider{})
	defer stop()

	d := GetDriver[dottedProvider](a)
	v, err := d.Call(context.Background(), "a.b.c", 4, 5)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestDriverPathBuildsDottedNameIncrementally(t *testing.T) {
	a, _, stop := loopback(t, dottedProvider{})
	defer stop()

	d := GetDriver[dottedProvider](a)
	caller := d.Path("a").Path("b").Path("c")

	v, err := caller.Call(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, v)
}

func TestCallerBindFixesContext(t *testing.T) {
	a, _, stop := loopback(t, echoProvider{})
	defer stop()

	d := GetDriver[echoProvider](a)
	call := d.Path("echo").Bind(context.Background())

	v, err := call("bound")
	require.NoError(t, err)
	assert.Equal(t, "bound", v)
}

func TestCallerPathIsImmutablePerSegment(t *testing.T) {
	a, _, stop := loopback(t, dottedProvider{})
	defer stop()

	d := GetDriver[dottedProvider](a)
	base := d.Path("a")
	left := base.Path("b")

	// Extending base a second time must not mutate the first Caller's
	// bound path.
	_ = base.Path("b2")

	v, err := left.Path("c").Call(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
