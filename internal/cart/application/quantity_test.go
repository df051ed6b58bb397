package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{" 12 ", 12, true},
		{"0", 0, true},
		{"-2", -2, true},
		{"", 0, false},
		{"abc", 0, false},
		{"2.5", 0, false},
		{"3 items", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseQuantity(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
