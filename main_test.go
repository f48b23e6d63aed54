package main

import "testing"

func TestFormatCalcNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{-2, "-2"},
		{2.5, "2.5"},
		{0, "0"},
	}
	for _, c := range cases {
		if got := formatCalcNumber(c.in); got != c.want {
			t.Errorf("formatCalcNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
