package dicerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"invalid dictionary", ErrInvalidDictionary, true},
		{"unsupported version", ErrUnsupportedVersion, true},
		{"config", ErrConfig, true},
		{"io", ErrIO, true},
		{"eos not reachable", ErrEosNotReachable, false},
		{"invalid split", ErrInvalidSplit, false},
		{"invalid input", ErrInvalidInput, false},
		{"plugin", ErrPlugin, false},
		{"wrapped fatal", fmt.Errorf("open %s: %w", "x.dic", ErrIO), true},
		{"unrelated", errors.New("boom"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsFatal(c.err); got != c.fatal {
				t.Errorf("IsFatal(%v) = %v, want %v", c.err, got, c.fatal)
			}
		})
	}
}

func TestSentinelsDistinct(t *testing.T) {
	all := []error{ErrInvalidDictionary, ErrUnsupportedVersion, ErrConfig, ErrIO, ErrEosNotReachable, ErrInvalidSplit, ErrInvalidInput, ErrPlugin}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			if errors.Is(a, b) {
				t.Errorf("sentinel %d unexpectedly matches sentinel %d", i, j)
			}
		}
	}
}
