package logger

import "testing"

func TestAnyToStr(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{10, "10"},
		{-10, "-10"},
		{true, "true"},
		{"test", "test"},
		{"", ""},
		{nil, "<nil>"},
		{struct{}{}, "{}"},
		{struct {
			A string
			B int
		}{"test", 10}, "{test 10}"},
		{[]int{1, 2, 3}, "[1 2 3]"},
	}

	for _, tc := range tests {
		if got := AnyToStr(tc.in); got != tc.want {
			t.Fatalf("AnyToStr(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
