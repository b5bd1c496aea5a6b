package types

import "testing"

func TestSeverityAtLeast(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"critical outranks high", SeverityCritical, SeverityHigh, true},
		{"high does not reach critical", SeverityHigh, SeverityCritical, false},
		{"equal severities match", SeverityHigh, SeverityHigh, true},
		{"medium below high", SeverityMedium, SeverityHigh, false},
		{"low is the floor", SeverityLow, SeverityMedium, false},
		{"critical at or above itself", SeverityCritical, SeverityCritical, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SeverityAtLeast(tc.a, tc.b); got != tc.want {
				t.Errorf("SeverityAtLeast(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
