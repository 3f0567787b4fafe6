// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package wlrlayershell

// Anchor bits, numerically identical to the zwlr_layer_surface_v1
// anchor enum (top=1, bottom=2, left=4, right=8).
type Anchor uint32

const (
	AnchorTop    Anchor = 1
	AnchorBottom Anchor = 2
	AnchorLeft   Anchor = 4
	AnchorRight  Anchor = 8
)

// Layer values from the zwlr_layer_shell_v1 "layer" enum. This system
// only ever asks for Overlay.
type Layer uint32

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

// KeyboardInteractivity values from zwlr_layer_surface_v1. This system
// always requests None — it is a pass-through overlay, never a focus
// target.
type KeyboardInteractivity uint32

const (
	KeyboardInteractivityNone      KeyboardInteractivity = 0
	KeyboardInteractivityExclusive KeyboardInteractivity = 1
	KeyboardInteractivityOnDemand  KeyboardInteractivity = 2
)

// zwlr_layer_shell_v1 request opcodes.
const (
	LayerShellRequestGetLayerSurface Opcode = 0
	LayerShellRequestDestroy         Opcode = 1
)

// zwlr_layer_surface_v1 request/event opcodes.
const (
	LayerSurfaceRequestSetSize                Opcode = 0
	LayerSurfaceRequestSetAnchor              Opcode = 1
	LayerSurfaceRequestSetExclusiveZone       Opcode = 2
	LayerSurfaceRequestSetMargin              Opcode = 3
	LayerSurfaceRequestSetKeyboardInteractivity Opcode = 4
	LayerSurfaceRequestAckConfigure           Opcode = 6
	LayerSurfaceRequestDestroy                Opcode = 7

	LayerSurfaceEventConfigure Opcode = 0
	LayerSurfaceEventClosed    Opcode = 1
)

// BuildGetLayerSurface marshals zwlr_layer_shell_v1.get_layer_surface,
// binding newSurfaceID as a layer surface for surface wrapping output
// (or NullID for "any output") with namespace and layer.
func BuildGetLayerSurface(shell, newSurfaceID, surface, output ObjectID, namespace string, layer Layer) []byte {
	b := NewBuilder().
		PutNewID(newSurfaceID).
		PutObject(surface).
		PutObject(output).
		PutUint32(uint32(layer)).
		PutString(namespace)
	return b.Build(shell, LayerShellRequestGetLayerSurface)
}

// BuildSetSize marshals zwlr_layer_surface_v1.set_size.
func BuildSetSize(layerSurface ObjectID, width, height uint32) []byte {
	return NewBuilder().PutUint32(width).PutUint32(height).Build(layerSurface, LayerSurfaceRequestSetSize)
}

// BuildSetAnchor marshals zwlr_layer_surface_v1.set_anchor.
func BuildSetAnchor(layerSurface ObjectID, anchor Anchor) []byte {
	return NewBuilder().PutUint32(uint32(anchor)).Build(layerSurface, LayerSurfaceRequestSetAnchor)
}

// BuildSetExclusiveZone marshals zwlr_layer_surface_v1.set_exclusive_zone.
// This system always passes 0 (reserve no screen space).
func BuildSetExclusiveZone(layerSurface ObjectID, zone int32) []byte {
	return NewBuilder().PutInt32(zone).Build(layerSurface, LayerSurfaceRequestSetExclusiveZone)
}

// BuildSetMargin marshals zwlr_layer_surface_v1.set_margin (top, right,
// bottom, left, matching the protocol's declared argument order).
func BuildSetMargin(layerSurface ObjectID, top, right, bottom, left int32) []byte {
	return NewBuilder().
		PutInt32(top).PutInt32(right).PutInt32(bottom).PutInt32(left).
		Build(layerSurface, LayerSurfaceRequestSetMargin)
}

// BuildSetKeyboardInteractivity marshals
// zwlr_layer_surface_v1.set_keyboard_interactivity.
func BuildSetKeyboardInteractivity(layerSurface ObjectID, mode KeyboardInteractivity) []byte {
	return NewBuilder().PutUint32(uint32(mode)).Build(layerSurface, LayerSurfaceRequestSetKeyboardInteractivity)
}

// BuildAckConfigure marshals zwlr_layer_surface_v1.ack_configure,
// echoing back the serial carried by the configure event being
// acknowledged.
func BuildAckConfigure(layerSurface ObjectID, serial uint32) []byte {
	return NewBuilder().PutUint32(serial).Build(layerSurface, LayerSurfaceRequestAckConfigure)
}

// BuildDestroy marshals a bare destroy request, shared in shape by
// zwlr_layer_surface_v1.destroy and zwlr_layer_shell_v1.destroy.
func BuildDestroy(obj ObjectID, opcode Opcode) []byte {
	return NewBuilder().Build(obj, opcode)
}

// ConfigureEvent is the decoded payload of a layer_surface.configure
// event: an ack serial plus the compositor-assigned size (0 on either
// axis means "you choose").
type ConfigureEvent struct {
	Serial uint32
	Width  uint32
	Height uint32
}

// DecodeConfigure parses a layer_surface.configure event's arguments.
func DecodeConfigure(args []byte) (ConfigureEvent, error) {
	d := NewDecoder(args)
	serial, err := d.Uint32()
	if err != nil {
		return ConfigureEvent{}, err
	}
	width, err := d.Uint32()
	if err != nil {
		return ConfigureEvent{}, err
	}
	height, err := d.Uint32()
	if err != nil {
		return ConfigureEvent{}, err
	}
	return ConfigureEvent{Serial: serial, Width: width, Height: height}, nil
}
