package wayland

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestSocketPathPrefersAbsoluteDisplay(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "/tmp/explicit-socket")
	t.Setenv("XDG_RUNTIME_DIR", "/should/not/be/used")

	got, err := socketPath()
	if err != nil {
		t.Fatalf("socketPath: %v", err)
	}
	if got != "/tmp/explicit-socket" {
		t.Fatalf("socketPath() = %q, want %q", got, "/tmp/explicit-socket")
	}
}

func TestSocketPathJoinsRuntimeDir(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-1")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	got, err := socketPath()
	if err != nil {
		t.Fatalf("socketPath: %v", err)
	}
	want := filepath.Join("/run/user/1000", "wayland-1")
	if got != want {
		t.Fatalf("socketPath() = %q, want %q", got, want)
	}
}

func TestSocketPathRequiresRuntimeDir(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("XDG_RUNTIME_DIR", "")

	if _, err := socketPath(); err == nil {
		t.Fatal("expected an error when XDG_RUNTIME_DIR is unset")
	}
}

// TestConnSendRecvRoundTrips exercises conn's framing over a real Unix
// socket pair, standing in for a compositor on the other end.
func TestConnSendRecvRoundTrips(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "test.sock")

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	serverErr := make(chan error, 1)
	serverConn := make(chan *net.UnixConn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			serverErr <- err
			return
		}
		serverConn <- c.(*net.UnixConn)
	}()

	clientRaw, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	client := &conn{c: clientRaw.(*net.UnixConn)}
	defer client.Close()

	var server *conn
	select {
	case c := <-serverConn:
		server = &conn{c: c}
	case err := <-serverErr:
		t.Fatalf("Accept: %v", err)
	}
	defer server.Close()

	payload := []byte{1, 0, 0, 0, 7, 0, 12, 0, 0xAA, 0xBB, 0xCC, 0xDD}
	if err := client.send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	msg, err := server.recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if msg.Object != 1 || msg.Opcode != 7 {
		t.Fatalf("recv message = %+v, want object=1 opcode=7", msg)
	}
	if len(msg.Args) != 4 {
		t.Fatalf("recv args length = %d, want 4", len(msg.Args))
	}
}
