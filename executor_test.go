package rfcgrid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execGroup struct{}

func (execGroup) Add(x, y int) int { return x + y }

type execProvider struct {
	Group execGroup
}

func TestResolveListenerStructMethod(t *testing.T) {
	fn, err := resolveListener(execProvider{}, "group.add")
	require.NoError(t, err)

	v, err := callListener(context.Background(), fn, []Value{float64(2), float64(3)})
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestResolveListenerMapProvider(t *testing.T) {
	provider := map[string]any{
		"greet": func(name string) string { return "hello " + name },
	}

	fn, err := resolveListener(provider, "greet")
	require.NoError(t, err)

	v, err := callListener(context.Background(), fn, []Value{"grid"})
	require.NoError(t, err)
	assert.Equal(t, "hello grid", v)
}

func TestResolveListenerNestedMapAndStructMix(t *testing.T) {
	provider := map[string]any{
		"nested": execGroup{},
	}

	fn, err := resolveListener(provider, "nested.add")
	require.NoError(t, err)

	v, err := callListener(context.Background(), fn, []Value{float64(10), float64(4)})
	require.NoError(t, err)
	assert.Equal(t, 14, v)
}

func TestResolveListenerUnknownSegmentIsResolutionFailure(t *testing.T) {
	_, err := resolveListener(execProvider{}, "group.missing")
	assert.ErrorIs(t, err, ErrResolutionFailure)
}

func TestResolveListenerEmptyNameIsResolutionFailure(t *testing.T) {
	_, err := resolveListener(execProvider{}, "")
	assert.ErrorIs(t, err, ErrResolutionFailure)
}

type ctxHandler struct{}

func (ctxHandler) WithCtx(ctx context.Context, x string) string {
	if ctx == nil {
		return "no ctx"
	}
	return "ctx:" + x
}

func TestCallListenerInjectsContextAutomatically(t *testing.T) {
	fn, err := resolveListener(ctxHandler{}, "withCtx")
	require.NoError(t, err)

	v, err := callListener(context.Background(), fn, []Value{"a"})
	require.NoError(t, err)
	assert.Equal(t, "ctx:a", v)
}

type variadicHandler struct{}

func (variadicHandler) Sum(nums ...int) int {
	total := 0
	for _, n := range nums {
		total += n
	}
	return total
}

func TestCallListenerHandlesVariadicParameters(t *testing.T) {
	fn, err := resolveListener(variadicHandler{}, "sum")
	require.NoError(t, err)

	v, err := callListener(context.Background(), fn, []Value{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

type missingParamsHandler struct{}

func (missingParamsHandler) Greet(name string, loud bool) string {
	if loud {
		return name + "!"
	}
	return name
}

func TestCallListenerPadsMissingParamsWithZeroValue(t *testing.T) {
	fn, err := resolveListener(missingParamsHandler{}, "greet")
	require.NoError(t, err)

	v, err := callListener(context.Background(), fn, []Value{"hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", v)
}

type errorOnlyHandler struct{}

func (errorOnlyHandler) MustFail() error { return errors.New("nope") }
func (errorOnlyHandler) MustSucceed() error { return nil }

func TestCallListenerErrorOnlyReturnShape(t *testing.T) {
	fn, err := resolveListener(errorOnlyHandler{}, "mustFail")
	require.NoError(t, err)

	_, callErr := callListener(context.Background(), fn, nil)
	assert.EqualError(t, callErr, "nope")
}

func TestCallListenerErrorOnlyNilIsSuccess(t *testing.T) {
	fn, err := resolveListener(errorOnlyHandler{}, "mustSucceed")
	require.NoError(t, err)

	v, callErr := callListener(context.Background(), fn, nil)
	assert.NoError(t, callErr)
	assert.Nil(t, v)
}

type noReturnHandler struct{ calls int }

func (h *noReturnHandler) Ping() { h.calls++ }

func TestCallListenerNoReturnValues(t *testing.T) {
	h := &noReturnHandler{}
	fn, err := resolveListener(h, "ping")
	require.NoError(t, err)

	v, callErr := callListener(context.Background(), fn, nil)
	assert.NoError(t, callErr)
	assert.Nil(t, v)
	assert.Equal(t, 1, h.calls)
}
