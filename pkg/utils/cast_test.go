package utils

import (
	"errors"
	"testing"
)

func TestSafeCast(t *testing.T) {
	got, err := SafeCast[int](12334)
	if err != nil {
		t.Fatal(err)
	}
	if got != 12334 {
		t.Fatalf("got %d", got)
	}

	if _, err = SafeCast[string](nil); !errors.Is(err, ErrNilParam) {
		t.Fatalf("nil param: %v", err)
	}

	if _, err = SafeCast[string](10); err == nil {
		t.Fatal("expected type mismatch error")
	}
}
