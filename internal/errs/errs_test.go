package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Config, 2},
		{Permission, 4},
		{MissingLayerShell, 3},
		{Protocol, 1},
		{DeviceFatal, 1},
	}
	for _, tc := range cases {
		if got := tc.kind.ExitCode(); got != tc.want {
			t.Errorf("%s.ExitCode() = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	wrapped := Wrap(Permission, "open /dev/input/event3", cause)

	if !errors.Is(wrapped, cause) {
		t.Fatal("expected errors.Is to find wrapped cause")
	}
	if got := wrapped.Error(); got == "" {
		t.Fatal("expected non-empty error string")
	}
}

func TestErrorIsMatchesByKind(t *testing.T) {
	a := New(Config, "bad anchor")
	b := New(Config, "bad timeout")
	if !errors.Is(a, b) {
		t.Fatal("expected same-kind errors to match via errors.Is")
	}

	c := New(Permission, "denied")
	if errors.Is(a, c) {
		t.Fatal("expected different-kind errors not to match")
	}
}

func TestCodeForMapsWrappedKind(t *testing.T) {
	err := Wrap(MissingLayerShell, "no layer-shell", errors.New("underlying"))
	if got := CodeFor(err); got != 3 {
		t.Errorf("CodeFor() = %d, want 3", got)
	}
}

func TestCodeForFallsBackOnPlainError(t *testing.T) {
	if got := CodeFor(errors.New("unexpected")); got != 1 {
		t.Errorf("CodeFor() = %d, want 1", got)
	}
}

func TestFormatsWithKindPrefix(t *testing.T) {
	err := New(MissingLayerShell, "compositor does not support wlr-layer-shell")
	want := "MissingLayerShellError: compositor does not support wlr-layer-shell"
	if got := fmt.Sprint(err); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
