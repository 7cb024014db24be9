package rfcgrid

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
var errType = reflect.TypeOf((*error)(nil)).Elem()

// resolveListener splits listener on "." and descends the provider,
// keeping the penultimate object as the receiver for the final
// segment, per the core's request-handling algorithm. Intermediate
// segments may be struct fields or map entries; the final segment must
// resolve to a callable (a method, or a field/map entry holding a
// func value).
func resolveListener(provider any, listener string) (reflect.Value, error) {
	if listener == "" {
		return reflect.Value{}, ErrResolutionFailure
	}
	segments := strings.Split(listener, ".")

	receiver := reflect.ValueOf(provider)
	for _, seg := range segments[:len(segments)-1] {
		next, err := descend(receiver, seg)
		if err != nil {
			return reflect.Value{}, err
		}
		receiver = next
	}

	return resolveCallable(receiver, segments[len(segments)-1])
}

// descend moves from receiver to the named member, supporting both
// struct fields and map[string]any entries so a provider can be built
// either way.
func descend(receiver reflect.Value, name string) (reflect.Value, error) {
	receiver = indirect(receiver)
	switch receiver.Kind() {
	case reflect.Struct:
		f := receiver.FieldByName(exportedName(name))
		if !f.IsValid() {
			return reflect.Value{}, fmt.Errorf("%w: field %q", ErrResolutionFailure, name)
		}
		return f, nil
	case reflect.Map:
		v := receiver.MapIndex(reflect.ValueOf(name))
		if !v.IsValid() {
			return reflect.Value{}, fmt.Errorf("%w: key %q", ErrResolutionFailure, name)
		}
		return v, nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: cannot descend into %s", ErrResolutionFailure, receiver.Kind())
	}
}

// resolveCallable resolves the final path segment against receiver. It
// prefers a method (so provider structs expose their surface the
// idiomatic Go way) and falls back to a field or map entry holding a
// func value (so a provider built as map[string]any of closures also
// works, mirroring the source's plain-object providers).
func resolveCallable(receiver reflect.Value, name string) (reflect.Value, error) {
	raw := receiver
	if raw.IsValid() && raw.Kind() != reflect.Invalid {
		if m := raw.MethodByName(exportedName(name)); m.IsValid() {
			return m, nil
		}
	}

	indirected := indirect(receiver)
	if indirected.IsValid() {
		if m := indirected.MethodByName(exportedName(name)); m.IsValid() {
			return m, nil
		}
		if indirected.CanAddr() {
			if m := indirected.Addr().MethodByName(exportedName(name)); m.IsValid() {
				return m, nil
			}
		}
		member, err := descend(indirected, name)
		if err == nil {
			member = indirect(member)
		}
		if err == nil && member.Kind() == reflect.Func {
			return member, nil
		}
	}

	return reflect.Value{}, fmt.Errorf("%w: %s", ErrResolutionFailure, name)
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

// exportedName upper-cases the first rune of a listener segment, since
// reflect can only see exported struct members. Providers built as
// map[string]any are unaffected — descend keys a map by the literal
// segment first.
func exportedName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// callListener invokes fn with params, awaiting its result. If fn's
// first parameter is a context.Context, ctx is supplied automatically
// so handlers can observe the dispatch timeout; "await its completion
// if asynchronous" then corresponds to callListener blocking on the
// plain synchronous Go call, since Go has no implicit async/await to
// preserve.
func callListener(ctx context.Context, fn reflect.Value, params []Value) (Value, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, ErrResolutionFailure
	}
	ft := fn.Type()

	args := make([]reflect.Value, 0, ft.NumIn())
	paramIdx := 0
	for i := 0; i < ft.NumIn(); i++ {
		in := ft.In(i)
		if i == 0 && in == ctxType {
			args = append(args, reflect.ValueOf(ctx))
			continue
		}
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			elem := in.Elem()
			for ; paramIdx < len(params); paramIdx++ {
				args = append(args, coerce(params[paramIdx], elem))
			}
			break
		}
		if paramIdx >= len(params) {
			args = append(args, reflect.Zero(in))
			continue
		}
		args = append(args, coerce(params[paramIdx], in))
		paramIdx++
	}

	out := fn.Call(args)
	return splitResults(out)
}

// coerce adapts an opaque decoded parameter to the handler's declared
// type. Directly assignable values pass through; values convertible
// under Go's conversion rules are converted (so a JSON-decoded float64
// reaches an int parameter, with any fractional part dropped);
// everything else is handed over as-is, letting the call panic with a
// clear reflect message.
func coerce(v Value, want reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(want)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(want) {
		return rv
	}
	if rv.Type().ConvertibleTo(want) {
		return rv.Convert(want)
	}
	return rv
}

func isErrorValue(v reflect.Value) bool { return v.Type().Implements(errType) }

func errIsNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// splitResults interprets a handler's return values per Go convention:
// (Value, error), (error) alone, or a single Value with no error.
func splitResults(out []reflect.Value) (Value, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if isErrorValue(out[0]) {
			if errIsNil(out[0]) {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		last := out[len(out)-1]
		var err error
		if isErrorValue(last) && !errIsNil(last) {
			err = last.Interface().(error)
		}
		return out[0].Interface(), err
	}
}
