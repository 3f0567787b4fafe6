// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package wlrlayershell speaks just enough of the Wayland wire
// protocol — plus the zwlr_layer_shell_v1/zwlr_layer_surface_v1
// extension this system depends on — to get a single overlay surface
// on screen. It follows the opcode/object-id/message-builder/decoder
// architecture of this lineage's hand-rolled Wayland client code,
// applied to the core protocol objects (wl_display, wl_registry,
// wl_compositor, wl_shm, wl_output, wl_callback, wl_surface) that
// neither a pure-Go nor a cgo Wayland binding in this pack fully
// covers for the unstable layer-shell extension.
package wlrlayershell

import (
	"encoding/binary"
	"fmt"
)

// ObjectID is a Wayland protocol object identifier.
type ObjectID uint32

// Opcode is a per-interface request or event number.
type Opcode uint16

// Well-known object IDs. 0 is reserved ("null"); 1 is always wl_display.
const (
	NullID    ObjectID = 0
	DisplayID ObjectID = 1
)

// wl_display request/event opcodes.
const (
	DisplayRequestSync        Opcode = 0
	DisplayRequestGetRegistry Opcode = 1

	DisplayEventError        Opcode = 0
	DisplayEventDeleteID     Opcode = 1
)

// wl_registry request/event opcodes.
const (
	RegistryRequestBind Opcode = 0

	RegistryEventGlobal       Opcode = 0
	RegistryEventGlobalRemove Opcode = 1
)

// wl_callback event opcode.
const CallbackEventDone Opcode = 0

// wl_compositor request opcodes.
const CompositorRequestCreateSurface Opcode = 0

// wl_surface request opcodes.
const (
	SurfaceRequestAttach       Opcode = 1
	SurfaceRequestDamage       Opcode = 2
	SurfaceRequestFrame        Opcode = 3
	SurfaceRequestCommit       Opcode = 6
	SurfaceRequestSetBufferScale Opcode = 8
	SurfaceRequestDamageBuffer Opcode = 9
)

// wl_shm request opcode and format enum value used by this system.
const (
	ShmRequestCreatePool Opcode = 0
	ShmFormatArgb8888    uint32 = 0
	ShmEventFormat       Opcode = 0
)

// wl_shm_pool request opcodes.
const (
	ShmPoolRequestCreateBuffer Opcode = 0
	ShmPoolRequestDestroy      Opcode = 1
)

// wl_buffer request/event opcodes.
const (
	BufferRequestDestroy Opcode = 0
	BufferEventRelease   Opcode = 0
)

// wl_output event opcodes.
const (
	OutputEventGeometry Opcode = 0
	OutputEventMode     Opcode = 1
	OutputEventDone     Opcode = 2
	OutputEventScale    Opcode = 3
)

// DecodeHeader parses an 8-byte Wayland message header into the
// target object, opcode, and total message size in bytes.
func DecodeHeader(buf []byte) (obj ObjectID, op Opcode, size int, err error) {
	return decodeHeader(buf)
}

// Message is one decoded wire message: the object it targets or came
// from, its opcode, and its argument payload (already stripped of the
// 8-byte header).
type Message struct {
	Object ObjectID
	Opcode Opcode
	Args   []byte
	FDs    []int
}

// header encodes the 8-byte Wayland message header: object id followed
// by a 32-bit word packing (size<<16 | opcode).
func header(obj ObjectID, op Opcode, size int) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(obj))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(size)<<16|uint32(op))
	return buf
}

// decodeHeader reverses header, reporting the payload size in bytes
// (including the 8-byte header itself, per protocol convention).
func decodeHeader(buf []byte) (obj ObjectID, op Opcode, size int, err error) {
	if len(buf) < 8 {
		return 0, 0, 0, fmt.Errorf("wayland: short message header (%d bytes)", len(buf))
	}
	obj = ObjectID(binary.LittleEndian.Uint32(buf[0:4]))
	word := binary.LittleEndian.Uint32(buf[4:8])
	size = int(word >> 16)
	op = Opcode(word & 0xffff)
	return obj, op, size, nil
}

// Builder assembles a request's argument payload. Every Wayland
// argument is padded to a 4-byte boundary.
type Builder struct {
	buf []byte
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) PutUint32(v uint32) *Builder {
	tmp := make([]byte, 4)
	binary.LittleEndian.PutUint32(tmp, v)
	b.buf = append(b.buf, tmp...)
	return b
}

func (b *Builder) PutInt32(v int32) *Builder { return b.PutUint32(uint32(v)) }

func (b *Builder) PutObject(id ObjectID) *Builder { return b.PutUint32(uint32(id)) }

// PutNewID writes a plain new_id argument (interface/version are
// implied by context for bind-style requests handled separately).
func (b *Builder) PutNewID(id ObjectID) *Builder { return b.PutUint32(uint32(id)) }

func (b *Builder) PutString(s string) *Builder {
	data := append([]byte(s), 0)
	b.PutUint32(uint32(len(data)))
	b.buf = append(b.buf, data...)
	return b.pad(len(data))
}

func (b *Builder) pad(n int) *Builder {
	if rem := n % 4; rem != 0 {
		b.buf = append(b.buf, make([]byte, 4-rem)...)
	}
	return b
}

// Build produces the full wire message: header plus the accumulated
// argument bytes.
func (b *Builder) Build(obj ObjectID, op Opcode) []byte {
	total := 8 + len(b.buf)
	msg := header(obj, op, total)
	return append(msg, b.buf...)
}

// Decoder reads arguments out of a message payload in declaration order.
type Decoder struct {
	buf []byte
	off int
}

func NewDecoder(args []byte) *Decoder { return &Decoder{buf: args} }

func (d *Decoder) Uint32() (uint32, error) {
	if d.off+4 > len(d.buf) {
		return 0, fmt.Errorf("wayland: decode uint32: out of bounds")
	}
	v := binary.LittleEndian.Uint32(d.buf[d.off : d.off+4])
	d.off += 4
	return v, nil
}

func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

func (d *Decoder) Object() (ObjectID, error) {
	v, err := d.Uint32()
	return ObjectID(v), err
}

// BuildGetRegistry marshals wl_display.get_registry.
func BuildGetRegistry(registryID ObjectID) []byte {
	return NewBuilder().PutNewID(registryID).Build(DisplayID, DisplayRequestGetRegistry)
}

// BuildSync marshals wl_display.sync, used to drive a roundtrip: the
// compositor processes every request queued before this one, then
// fires callbackID's done event.
func BuildSync(callbackID ObjectID) []byte {
	return NewBuilder().PutNewID(callbackID).Build(DisplayID, DisplayRequestSync)
}

// BuildBind marshals wl_registry.bind, requesting newID be instantiated
// as the named global at the given interface/version.
func BuildBind(registry ObjectID, name uint32, iface string, version uint32, newID ObjectID) []byte {
	return NewBuilder().
		PutUint32(name).
		PutString(iface).
		PutUint32(version).
		PutNewID(newID).
		Build(registry, RegistryRequestBind)
}

// BuildCreateSurface marshals wl_compositor.create_surface.
func BuildCreateSurface(compositor, newSurfaceID ObjectID) []byte {
	return NewBuilder().PutNewID(newSurfaceID).Build(compositor, CompositorRequestCreateSurface)
}

// BuildCreatePool marshals wl_shm.create_pool. The backing fd travels
// out-of-band as ancillary data; only the pool size is a wire argument.
func BuildCreatePool(shm, newPoolID ObjectID, size int32) []byte {
	return NewBuilder().PutNewID(newPoolID).PutInt32(size).Build(shm, ShmRequestCreatePool)
}

// BuildCreateBuffer marshals wl_shm_pool.create_buffer.
func BuildCreateBuffer(pool, newBufferID ObjectID, offset, width, height, stride int32, format uint32) []byte {
	return NewBuilder().
		PutNewID(newBufferID).
		PutInt32(offset).
		PutInt32(width).
		PutInt32(height).
		PutInt32(stride).
		PutUint32(format).
		Build(pool, ShmPoolRequestCreateBuffer)
}

// BuildPoolDestroy marshals wl_shm_pool.destroy.
func BuildPoolDestroy(pool ObjectID) []byte {
	return NewBuilder().Build(pool, ShmPoolRequestDestroy)
}

// BuildBufferDestroy marshals wl_buffer.destroy.
func BuildBufferDestroy(buffer ObjectID) []byte {
	return NewBuilder().Build(buffer, BufferRequestDestroy)
}

// BuildAttach marshals wl_surface.attach.
func BuildAttach(surface, buffer ObjectID, x, y int32) []byte {
	return NewBuilder().PutObject(buffer).PutInt32(x).PutInt32(y).Build(surface, SurfaceRequestAttach)
}

// BuildDamageBuffer marshals wl_surface.damage_buffer, the
// buffer-local-coordinate damage request preferred over wl_surface.damage
// once the bound version supports it.
func BuildDamageBuffer(surface ObjectID, x, y, width, height int32) []byte {
	return NewBuilder().
		PutInt32(x).PutInt32(y).PutInt32(width).PutInt32(height).
		Build(surface, SurfaceRequestDamageBuffer)
}

// BuildSetBufferScale marshals wl_surface.set_buffer_scale.
func BuildSetBufferScale(surface ObjectID, scale int32) []byte {
	return NewBuilder().PutInt32(scale).Build(surface, SurfaceRequestSetBufferScale)
}

// BuildCommit marshals wl_surface.commit.
func BuildCommit(surface ObjectID) []byte {
	return NewBuilder().Build(surface, SurfaceRequestCommit)
}

func (d *Decoder) String() (string, error) {
	n, err := d.Uint32()
	if err != nil {
		return "", err
	}
	length := int(n)
	if d.off+length > len(d.buf) {
		return "", fmt.Errorf("wayland: decode string: out of bounds")
	}
	s := string(d.buf[d.off : d.off+length-1]) // drop trailing NUL
	d.off += length
	if rem := length % 4; rem != 0 {
		d.off += 4 - rem
	}
	return s, nil
}
