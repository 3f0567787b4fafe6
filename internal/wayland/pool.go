// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package wayland

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/kvoverlay/keyviz/internal/errs"
	"github.com/kvoverlay/keyviz/internal/wlrlayershell"
)

const maxPooledBuffers = 3

// shmBuffer is one memfd-backed, mmap'd buffer bound to an SHM pool,
// along with the bookkeeping Surface Manager needs to reuse it.
type shmBuffer struct {
	id       wlrlayershell.ObjectID
	poolID   wlrlayershell.ObjectID
	fd       int
	data     []byte
	width    int32
	height   int32
	stride   int32
	inUse    bool
	released chan struct{}
}

// bufferPool holds up to maxPooledBuffers buffers of a single
// (width, height) shape, per §4.4's "destroy the pool on resize" rule.
type bufferPool struct {
	client  *Client
	width   int32
	height  int32
	buffers []*shmBuffer
}

func newBufferPool(client *Client, width, height int32) *bufferPool {
	return &bufferPool{client: client, width: width, height: height}
}

// acquire returns a buffer with inUse == false, allocating a fresh one
// if the pool is under its cap and none is free, or reports (nil, false)
// if the frame must be skipped.
func (p *bufferPool) acquire() (*shmBuffer, bool) {
	for _, b := range p.buffers {
		if !b.inUse {
			return b, true
		}
	}
	if len(p.buffers) >= maxPooledBuffers {
		return nil, false
	}
	b, err := p.allocate()
	if err != nil {
		p.client.log.Warning("allocate SHM buffer: %v", err)
		return nil, false
	}
	p.buffers = append(p.buffers, b)
	return b, true
}

// allocate creates one memfd-backed ARGB8888 buffer of the pool's
// current size, following the same memfd/ftruncate/mmap sequence a
// minimal Wayland client uses to back an SHM buffer.
func (p *bufferPool) allocate() (*shmBuffer, error) {
	stride := p.width * 4
	size := int64(stride) * int64(p.height)
	if size <= 0 {
		return nil, fmt.Errorf("wayland: non-positive buffer size %dx%d", p.width, p.height)
	}

	fd, err := unix.MemfdCreate("keyviz-overlay", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := syscall.Ftruncate(fd, size); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}
	data, err := syscall.Mmap(fd, 0, int(size), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap: %w", err)
	}

	poolID := p.client.AllocID()
	if err := p.client.SendWithFD(wlrlayershell.BuildCreatePool(p.client.Shm(), poolID, int32(size)), fd); err != nil {
		syscall.Munmap(data)
		unix.Close(fd)
		return nil, errs.Wrap(errs.Protocol, "create_pool", err)
	}

	bufferID := p.client.AllocID()
	req := wlrlayershell.BuildCreateBuffer(poolID, bufferID, 0, p.width, p.height, stride, wlrlayershell.ShmFormatArgb8888)
	if err := p.client.Send(req); err != nil {
		syscall.Munmap(data)
		unix.Close(fd)
		return nil, err
	}
	// The memfd only needs to stay mapped; the compositor holds its own
	// reference to the pool's backing store once create_pool succeeds.
	if err := p.client.Send(wlrlayershell.BuildPoolDestroy(poolID)); err != nil {
		p.client.log.Warning("destroy pool after buffer creation: %v", err)
	}

	return &shmBuffer{
		id:       bufferID,
		poolID:   poolID,
		fd:       fd,
		data:     data,
		width:    p.width,
		height:   p.height,
		stride:   stride,
		released: p.client.watchRelease(bufferID),
	}, nil
}

// resize destroys every buffer in the pool and adopts a new size,
// per §4.4's "if the size differs from the pool's current size,
// destroy the pool" rule.
func (p *bufferPool) resize(width, height int32) {
	if width == p.width && height == p.height {
		return
	}
	p.destroy()
	p.width = width
	p.height = height
}

func (p *bufferPool) destroy() {
	for _, b := range p.buffers {
		if err := p.client.Send(wlrlayershell.BuildBufferDestroy(b.id)); err != nil {
			p.client.log.Warning("destroy buffer: %v", err)
		}
		syscall.Munmap(b.data)
		unix.Close(b.fd)
	}
	p.buffers = nil
}

// drainReleases marks any buffer whose release event has arrived as
// free again. Called at the start of each Paint.
func (p *bufferPool) drainReleases() {
	for _, b := range p.buffers {
		select {
		case <-b.released:
			b.inUse = false
		default:
		}
	}
}
