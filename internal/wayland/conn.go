// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package wayland owns the display connection, global registry, and
// layer-surface/SHM-buffer lifecycle — everything Surface Manager
// needs to get one overlay painted through zwlr_layer_shell_v1. Wire
// encoding lives in internal/wlrlayershell; this package is the
// socket and state machine on top of it.
package wayland

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/kvoverlay/keyviz/internal/wlrlayershell"
)

// conn wraps the Wayland Unix domain socket: framing requests out and
// demultiplexing the byte stream back into wlrlayershell.Message
// values. Only outbound messages carry an fd (wl_shm.create_pool);
// inbound ancillary data is not read.
type conn struct {
	c *net.UnixConn
}

// socketPath resolves the Wayland display socket the way reference
// clients do: an absolute WAYLAND_DISPLAY is used as-is, otherwise it
// is resolved relative to XDG_RUNTIME_DIR.
func socketPath() (string, error) {
	name := os.Getenv("WAYLAND_DISPLAY")
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("wayland: XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, name), nil
}

func dial() (*conn, error) {
	path, err := socketPath()
	if err != nil {
		return nil, err
	}
	raw, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("wayland: connect to %s: %w", path, err)
	}
	uc, ok := raw.(*net.UnixConn)
	if !ok {
		raw.Close()
		return nil, fmt.Errorf("wayland: unexpected connection type %T", raw)
	}
	return &conn{c: uc}, nil
}

func (cn *conn) Close() error { return cn.c.Close() }

// send writes a pre-built request (header plus arguments, per
// wlrlayershell.Builder.Build) with no accompanying file descriptors.
func (cn *conn) send(payload []byte) error {
	_, _, err := cn.c.WriteMsgUnix(payload, nil, nil)
	return err
}

// sendWithFD writes payload along with a single file descriptor as
// SCM_RIGHTS ancillary data, used only for wl_shm.create_pool.
func (cn *conn) sendWithFD(payload []byte, fd int) error {
	oob := unix.UnixRights(fd)
	_, _, err := cn.c.WriteMsgUnix(payload, oob, nil)
	return err
}

// recv reads exactly one message off the socket. Ancillary data is not
// read: a file descriptor the compositor attaches is not received and
// Message.FDs is left empty (this system does not bind a seat, so no
// inbound message it handles carries one).
func (cn *conn) recv() (wlrlayershell.Message, error) {
	header := make([]byte, 8)
	if err := cn.readFull(header); err != nil {
		return wlrlayershell.Message{}, err
	}
	obj, op, size, err := wlrlayershell.DecodeHeader(header)
	if err != nil {
		return wlrlayershell.Message{}, err
	}
	argsLen := size - 8
	args := make([]byte, argsLen)
	if argsLen > 0 {
		if err := cn.readFull(args); err != nil {
			return wlrlayershell.Message{}, err
		}
	}
	return wlrlayershell.Message{Object: obj, Opcode: op, Args: args}, nil
}

func (cn *conn) readFull(buf []byte) error {
	read := 0
	for read < len(buf) {
		n, _, _, _, err := cn.c.ReadMsgUnix(buf[read:], nil)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("wayland: connection closed mid-message")
		}
		read += n
	}
	return nil
}
