package utils

import "encoding/json"

func Unmarshal[T any](data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// MustMarshal drops the error. Only for values known to marshal.
func MustMarshal(v any) []byte {
	m, _ := json.Marshal(v)
	return m
}
