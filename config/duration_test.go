package config

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{200 * time.Millisecond, "200ms"},
		{0, "0ms"},
		{999 * time.Millisecond, "999ms"},
		{1 * time.Second, "1.000s"},
		{1500 * time.Millisecond, "1.500s"},
		{2*time.Second + 34*time.Millisecond, "2.034s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
