package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// empty falls back
		{"", 10, 10},
		// valid ints
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		// invalid falls back, no trimming
		{"x", 5, 5},
		{" 42", 7, 7},
		// overflow falls back
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	cases := []struct {
		n, lo, hi int
		want      int
	}{
		// inside the range
		{25, 1, 100, 25},
		// at the edges
		{1, 1, 100, 1},
		{100, 1, 100, 100},
		// below and above
		{0, 1, 100, 1},
		{-5, 1, 100, 1},
		{101, 1, 100, 100},
		// degenerate range collapses to the bound
		{7, 3, 3, 3},
	}

	for _, tc := range cases {
		if got := ClampInt(tc.n, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("ClampInt(%d, %d, %d) = %d; want %d", tc.n, tc.lo, tc.hi, got, tc.want)
		}
	}
}
