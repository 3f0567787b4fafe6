//go:build linux

package platform

import "testing"

func TestDropPrivileges_NoOpWhenUnprivileged(t *testing.T) {
	// In the test process, effective and real IDs are equal (no setuid
	// wrapper involved), so DropPrivileges must be a no-op and never fail.
	if err := DropPrivileges(); err != nil {
		t.Fatalf("DropPrivileges should be a no-op without elevated privileges, got: %v", err)
	}
}

func TestRemediationText_NonEmpty(t *testing.T) {
	if RemediationText() == "" {
		t.Fatal("RemediationText must describe setup options")
	}
}
