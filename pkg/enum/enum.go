package enum

import (
	"fmt"
	"reflect"
)

var enumManager = map[string]any{}

type enum[T ~string] struct {
	toEnum map[string]T
	values []T
}

func typeKey(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}

// New registers value as a member of its enum type and returns it.
func New[T ~string](value T) T {
	key := typeKey(reflect.TypeOf(value))
	e, ok := enumManager[key].(*enum[T])
	if !ok {
		e = &enum[T]{toEnum: make(map[string]T)}
		enumManager[key] = e
	}

	if _, ok := e.toEnum[string(value)]; !ok {
		e.values = append(e.values, value)
	}
	e.toEnum[string(value)] = value
	return value
}

func ToEnum[T ~string](s string) (T, error) {
	var defaultT T
	e, ok := enumManager[typeKey(reflect.TypeOf(defaultT))].(*enum[T])
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

// Values returns every registered member of T in registration order.
func Values[T ~string]() []T {
	var defaultT T
	e, ok := enumManager[typeKey(reflect.TypeOf(defaultT))].(*enum[T])
	if !ok {
		return nil
	}

	return append([]T(nil), e.values...)
}
