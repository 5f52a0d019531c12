package utils

import "fmt"

var ErrNilParam = fmt.Errorf("cast error: got nil param")

func SafeCast[T any](param any) (T, error) {
	var zero T

	if param == nil {
		return zero, ErrNilParam
	}

	v, ok := param.(T)
	if !ok {
		return v, fmt.Errorf("cast error: got type %T, want type %T", param, zero)
	}

	return v, nil
}
