package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"4.5", 4.5, true},
		{"1200.0", 1200, true},
		{" 2.50 ", 2.5, true},
		{"-3", -3, true},
		{"0", 0, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"1,23", 0, false},
		{"1.2.3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
		{"   ", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		4.5:    "4.5",
		1200:   "1200.0",
		0:      "0.0",
		-3.25:  "-3.25",
		0.1:    "0.1",
		12.345: "12.345",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
