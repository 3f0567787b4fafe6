// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package wayland

import (
	"image"
	"image/color"
	"time"

	"github.com/kvoverlay/keyviz/config"
	"github.com/kvoverlay/keyviz/internal/errs"
	"github.com/kvoverlay/keyviz/internal/render"
	"github.com/kvoverlay/keyviz/internal/wlrlayershell"
)

const (
	defaultWidth  = 400
	defaultHeight = 80
	namespace     = "keyviz"
)

type surfaceState int

const (
	stateUnconfigured surfaceState = iota
	stateConfiguring
	stateConfigured
	stateClosed
)

// Surface is the Overlay-layer layer surface this system paints
// through: one wl_surface wrapped as a zwlr_layer_surface_v1, backed
// by a resizeable SHM buffer pool.
type Surface struct {
	client *Client
	shaper render.Shaper

	surfaceID      wlrlayershell.ObjectID
	layerSurfaceID wlrlayershell.ObjectID

	configureCh chan wlrlayershell.ConfigureEvent
	closedCh    chan struct{}

	state  surfaceState
	width  int32
	height int32
	scale  int32

	pool *bufferPool

	background color.NRGBA
	foreground color.NRGBA
	special    color.NRGBA
}

// NewSurface creates a surface, wraps it as an Overlay-layer layer
// surface per the anchor/margin settings, commits it bufferless, and
// blocks for the first configure event — the startup protocol spec.md
// §4.4 describes step by step.
func NewSurface(client *Client, shaper render.Shaper, cfg *config.Config) (*Surface, error) {
	s := &Surface{
		client:     client,
		shaper:     shaper,
		width:      defaultWidth,
		height:     defaultHeight,
		scale:      1,
		background: nrgbaOf(cfg.Background),
		foreground: nrgbaOf(cfg.Foreground),
		special:    nrgbaOf(cfg.Special),
	}

	s.surfaceID = client.AllocID()
	if err := client.Send(wlrlayershell.BuildCreateSurface(client.Compositor(), s.surfaceID)); err != nil {
		return nil, err
	}

	s.layerSurfaceID = client.AllocID()
	req := wlrlayershell.BuildGetLayerSurface(client.LayerShell(), s.layerSurfaceID, s.surfaceID, 0, namespace, wlrlayershell.LayerOverlay)
	if err := client.Send(req); err != nil {
		return nil, err
	}

	s.configureCh, s.closedCh = client.watchConfigure(s.layerSurfaceID)

	if err := s.applyAnchorAndMargin(cfg.Anchor, cfg.Margin); err != nil {
		return nil, err
	}
	if err := client.Send(wlrlayershell.BuildSetKeyboardInteractivity(s.layerSurfaceID, wlrlayershell.KeyboardInteractivityNone)); err != nil {
		return nil, err
	}
	if err := client.Send(wlrlayershell.BuildSetExclusiveZone(s.layerSurfaceID, 0)); err != nil {
		return nil, err
	}
	if err := client.Send(wlrlayershell.BuildSetSize(s.layerSurfaceID, uint32(s.width), uint32(s.height))); err != nil {
		return nil, err
	}
	if err := client.Send(wlrlayershell.BuildCommit(s.surfaceID)); err != nil {
		return nil, err
	}

	s.state = stateConfiguring
	s.pool = newBufferPool(client, s.width, s.height)

	if err := s.awaitConfigure(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Surface) applyAnchorAndMargin(anchor config.Anchor, margin int) error {
	var a wlrlayershell.Anchor
	if anchor.Has(config.AnchorTop) {
		a |= wlrlayershell.AnchorTop
	}
	if anchor.Has(config.AnchorBottom) {
		a |= wlrlayershell.AnchorBottom
	}
	if anchor.Has(config.AnchorLeft) {
		a |= wlrlayershell.AnchorLeft
	}
	if anchor.Has(config.AnchorRight) {
		a |= wlrlayershell.AnchorRight
	}
	if err := s.client.Send(wlrlayershell.BuildSetAnchor(s.layerSurfaceID, a)); err != nil {
		return err
	}
	m := int32(margin)
	return s.client.Send(wlrlayershell.BuildSetMargin(s.layerSurfaceID, m, m, m, m))
}

// awaitConfigure blocks for this surface's next configure event,
// acking it and recording the negotiated size (per §4.4, 0 means
// "pick any", resolved to the 400x80 default).
func (s *Surface) awaitConfigure() error {
	for {
		select {
		case ev := <-s.configureCh:
			return s.onConfigure(ev)
		case <-s.closedCh:
			return errs.New(errs.Protocol, "layer surface closed before first configure")
		default:
		}
		msg, err := s.client.cn.recv()
		if err != nil {
			return errs.Wrap(errs.Protocol, "await configure", err)
		}
		s.client.handle(msg)
	}
}

func (s *Surface) onConfigure(ev wlrlayershell.ConfigureEvent) error {
	if err := s.client.Send(wlrlayershell.BuildAckConfigure(s.layerSurfaceID, ev.Serial)); err != nil {
		return err
	}

	width, height := int32(ev.Width), int32(ev.Height)
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}
	if width != s.width || height != s.height {
		s.pool.resize(width, height)
	}
	s.width, s.height = width, height
	s.scale = s.client.Scale()
	if s.state != stateClosed {
		s.state = stateConfigured
	}
	return nil
}

// PollConfigure checks for a newly arrived configure event without
// blocking, applying it if present. Called once per scheduler tick
// alongside DispatchPending.
func (s *Surface) PollConfigure() error {
	select {
	case ev := <-s.configureCh:
		return s.onConfigure(ev)
	case <-s.closedCh:
		s.state = stateClosed
		return errs.New(errs.Protocol, "layer surface closed by compositor")
	default:
		return nil
	}
}

// Closed reports whether the compositor has destroyed this surface.
func (s *Surface) Closed() bool { return s.state == stateClosed }

// Paint runs the five-step paint procedure from spec.md §4.4: measure,
// resize-if-needed, clear, draw, attach-damage-commit. It returns
// (painted=false, nil) when the frame was skipped (no size change
// pending but no free buffer, or a resize request is still awaiting
// its configure).
func (s *Surface) Paint(segments []render.Segment) (bool, error) {
	if s.state != stateConfigured {
		return false, nil
	}

	s.pool.drainReleases()

	wantW, wantH := s.shaper.Measure(segments)
	scaledW := int32(wantW) * s.scale
	scaledH := int32(wantH) * s.scale

	if scaledW != s.width || scaledH != s.height {
		if err := s.client.Send(wlrlayershell.BuildSetSize(s.layerSurfaceID, uint32(wantW), uint32(wantH))); err != nil {
			return false, err
		}
		if err := s.client.Send(wlrlayershell.BuildCommit(s.surfaceID)); err != nil {
			return false, err
		}
		s.state = stateConfiguring
		return false, nil
	}

	buf, ok := s.pool.acquire()
	if !ok {
		return false, nil
	}

	img := &image.RGBA{
		Pix:    buf.data,
		Stride: int(buf.stride),
		Rect:   image.Rect(0, 0, int(buf.width), int(buf.height)),
	}
	clear(img, s.background)
	s.shaper.Draw(img, segments, s.foreground, s.special)

	if err := s.client.Send(wlrlayershell.BuildAttach(s.surfaceID, buf.id, 0, 0)); err != nil {
		return false, err
	}
	if err := s.client.Send(wlrlayershell.BuildDamageBuffer(s.surfaceID, 0, 0, buf.width, buf.height)); err != nil {
		return false, err
	}
	if err := s.client.Send(wlrlayershell.BuildSetBufferScale(s.surfaceID, s.scale)); err != nil {
		return false, err
	}
	if err := s.client.Send(wlrlayershell.BuildCommit(s.surfaceID)); err != nil {
		return false, err
	}
	buf.inUse = true
	return true, nil
}

// Close destroys every pooled buffer and the layer surface; the
// wl_surface itself is not destroyed.
func (s *Surface) Close() error {
	s.pool.destroy()
	if err := s.client.Send(wlrlayershell.BuildDestroy(s.layerSurfaceID, wlrlayershell.LayerSurfaceRequestDestroy)); err != nil {
		return err
	}
	return nil
}

func clear(img *image.RGBA, c color.NRGBA) {
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func nrgbaOf(c config.Color) color.NRGBA {
	r, g, b, a := c.RGBA()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// idleRepaintInterval is unused directly by Surface but documents the
// cadence the frame scheduler drives Paint at (spec.md §4.5).
const idleRepaintInterval = 16 * time.Millisecond
