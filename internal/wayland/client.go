// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package wayland

import (
	"time"

	"github.com/kvoverlay/keyviz/internal/errs"
	"github.com/kvoverlay/keyviz/internal/logger"
	"github.com/kvoverlay/keyviz/internal/platform"
	"github.com/kvoverlay/keyviz/internal/wlrlayershell"
)

const (
	compositorVersion = 4
	shmVersion        = 1
	outputVersion     = 3
	layerShellVersion = 4
)

type outputState struct {
	scale int32
}

// Client owns the display socket, the bound globals, and every output
// this system has seen, so a paint step can compute the scale to
// render at.
type Client struct {
	cn     *conn
	log    logger.Logger
	nextID uint32

	registry   wlrlayershell.ObjectID
	compositor wlrlayershell.ObjectID
	shm        wlrlayershell.ObjectID
	layerShell wlrlayershell.ObjectID

	outputs map[wlrlayershell.ObjectID]*outputState

	pendingSync map[wlrlayershell.ObjectID]chan struct{}
	configures  map[wlrlayershell.ObjectID]chan wlrlayershell.ConfigureEvent
	closed      map[wlrlayershell.ObjectID]chan struct{}
	released    map[wlrlayershell.ObjectID]chan struct{}
}

// Connect opens the Wayland display socket, binds the globals this
// system depends on, and reports errs.MissingLayerShell if the
// compositor does not advertise zwlr_layer_shell_v1 — a fatal
// diagnostic, not a retryable condition.
func Connect(log logger.Logger) (*Client, error) {
	cn, err := dial()
	if err != nil {
		return nil, errs.Wrap(errs.Protocol, "connect to Wayland display", err)
	}

	c := &Client{
		cn:          cn,
		log:         log,
		nextID:      2,
		outputs:     make(map[wlrlayershell.ObjectID]*outputState),
		pendingSync: make(map[wlrlayershell.ObjectID]chan struct{}),
		configures:  make(map[wlrlayershell.ObjectID]chan wlrlayershell.ConfigureEvent),
		closed:      make(map[wlrlayershell.ObjectID]chan struct{}),
		released:    make(map[wlrlayershell.ObjectID]chan struct{}),
	}

	c.registry = c.allocID()
	if err := c.cn.send(wlrlayershell.BuildGetRegistry(c.registry)); err != nil {
		cn.Close()
		return nil, errs.Wrap(errs.Protocol, "get_registry", err)
	}

	if err := c.roundtrip(); err != nil {
		cn.Close()
		return nil, err
	}

	if c.layerShell == 0 {
		cn.Close()
		name := platform.DetectCompositorName()
		if name == "" {
			return nil, errs.New(errs.MissingLayerShell, "compositor does not advertise zwlr_layer_shell_v1")
		}
		return nil, errs.New(errs.MissingLayerShell, "compositor ("+name+") does not advertise zwlr_layer_shell_v1")
	}

	return c, nil
}

func (c *Client) allocID() wlrlayershell.ObjectID {
	id := wlrlayershell.ObjectID(c.nextID)
	c.nextID++
	return id
}

// Compositor, Shm, and LayerShell expose the bound global object ids
// other wayland-package files use to issue requests against them.
func (c *Client) Compositor() wlrlayershell.ObjectID { return c.compositor }
func (c *Client) Shm() wlrlayershell.ObjectID        { return c.shm }
func (c *Client) LayerShell() wlrlayershell.ObjectID { return c.layerShell }

// Scale reports the maximum scale factor across every output this
// system has observed, defaulting to 1 before any wl_output.scale
// event arrives.
func (c *Client) Scale() int32 {
	max := int32(1)
	for _, o := range c.outputs {
		if o.scale > max {
			max = o.scale
		}
	}
	return max
}

// AllocID exposes object-id allocation to the surface/pool code in
// this package that issues its own requests (create_surface,
// create_pool, get_layer_surface, and so on).
func (c *Client) AllocID() wlrlayershell.ObjectID { return c.allocID() }

// Send forwards a pre-built request with no accompanying fd.
func (c *Client) Send(payload []byte) error {
	if err := c.cn.send(payload); err != nil {
		return errs.Wrap(errs.Protocol, "write request", err)
	}
	return nil
}

// SendWithFD forwards a pre-built request along with a file descriptor
// carried as ancillary data (wl_shm.create_pool only).
func (c *Client) SendWithFD(payload []byte, fd int) error {
	if err := c.cn.sendWithFD(payload, fd); err != nil {
		return errs.Wrap(errs.Protocol, "write request with fd", err)
	}
	return nil
}

// Close tears down the display connection.
func (c *Client) Close() error { return c.cn.Close() }

// roundtrip sends wl_display.sync and blocks until its callback fires,
// dispatching every message that arrives in between — the same
// technique reference clients use to flush the registry's initial
// burst of globals before binding any of them.
func (c *Client) roundtrip() error {
	cb := c.allocID()
	done := make(chan struct{})
	c.pendingSync[cb] = done

	if err := c.cn.send(wlrlayershell.BuildSync(cb)); err != nil {
		return errs.Wrap(errs.Protocol, "sync", err)
	}

	for {
		select {
		case <-done:
			return nil
		default:
		}
		msg, err := c.cn.recv()
		if err != nil {
			return errs.Wrap(errs.Protocol, "roundtrip recv", err)
		}
		c.handle(msg)
		select {
		case <-done:
			return nil
		default:
		}
	}
}

// DispatchPending drains every message currently buffered on the
// socket without blocking past budget — the form the frame scheduler
// calls once per tick to give Wayland a dispatch slot alongside input
// and repaint work.
func (c *Client) DispatchPending(budget time.Duration) error {
	deadline := time.Now().Add(budget)
	if err := c.cn.c.SetReadDeadline(deadline); err != nil {
		return errs.Wrap(errs.Protocol, "set read deadline", err)
	}
	defer c.cn.c.SetReadDeadline(time.Time{})

	for {
		msg, err := c.cn.recv()
		if err != nil {
			if isTimeout(err) {
				return nil
			}
			return errs.Wrap(errs.Protocol, "dispatch recv", err)
		}
		c.handle(msg)
	}
}

func isTimeout(err error) bool {
	type timeoutErr interface{ Timeout() bool }
	te, ok := err.(timeoutErr)
	return ok && te.Timeout()
}

// handle routes one decoded message to the object it targets. Only
// the handful of interfaces this system binds are recognized; every
// other object id is ignored, matching how a minimal client skips
// events from interfaces it never asked about.
func (c *Client) handle(msg wlrlayershell.Message) {
	switch {
	case msg.Object == wlrlayershell.DisplayID:
		c.handleDisplay(msg)
	case msg.Object == c.registry:
		c.handleRegistry(msg)
	case c.isOutput(msg.Object):
		c.handleOutput(msg)
	default:
		if done, ok := c.pendingSync[msg.Object]; ok && msg.Opcode == wlrlayershell.CallbackEventDone {
			close(done)
			delete(c.pendingSync, msg.Object)
			return
		}
		if ch, ok := c.configures[msg.Object]; ok && msg.Opcode == wlrlayershell.LayerSurfaceEventConfigure {
			ev, err := wlrlayershell.DecodeConfigure(msg.Args)
			if err == nil {
				ch <- ev
			}
			return
		}
		if ch, ok := c.closed[msg.Object]; ok && msg.Opcode == wlrlayershell.LayerSurfaceEventClosed {
			close(ch)
			return
		}
		if ch, ok := c.released[msg.Object]; ok && msg.Opcode == wlrlayershell.BufferEventRelease {
			select {
			case ch <- struct{}{}:
			default:
			}
			return
		}
	}
}

func (c *Client) handleDisplay(msg wlrlayershell.Message) {
	if msg.Opcode == wlrlayershell.DisplayEventError {
		d := wlrlayershell.NewDecoder(msg.Args)
		_, _ = d.Object()
		code, _ := d.Uint32()
		reason, _ := d.String()
		c.log.Error("wayland protocol error (code %d): %s", code, reason)
	}
}

func (c *Client) handleRegistry(msg wlrlayershell.Message) {
	if msg.Opcode != wlrlayershell.RegistryEventGlobal {
		return
	}
	d := wlrlayershell.NewDecoder(msg.Args)
	name, err := d.Uint32()
	if err != nil {
		return
	}
	iface, err := d.String()
	if err != nil {
		return
	}
	version, err := d.Uint32()
	if err != nil {
		return
	}

	switch iface {
	case "wl_compositor":
		c.compositor = c.allocID()
		c.bind(name, iface, compositorVersion, version, c.compositor)
	case "wl_shm":
		c.shm = c.allocID()
		c.bind(name, iface, shmVersion, version, c.shm)
	case "zwlr_layer_shell_v1":
		c.layerShell = c.allocID()
		c.bind(name, iface, layerShellVersion, version, c.layerShell)
	case "wl_output":
		id := c.allocID()
		c.bind(name, iface, outputVersion, version, id)
		c.outputs[id] = &outputState{scale: 1}
	}
}

func (c *Client) bind(name uint32, iface string, want, have uint32, id wlrlayershell.ObjectID) {
	version := want
	if have < version {
		version = have
	}
	if err := c.cn.send(wlrlayershell.BuildBind(c.registry, name, iface, version, id)); err != nil {
		c.log.Warning("bind %s: %v", iface, err)
	}
}

func (c *Client) isOutput(id wlrlayershell.ObjectID) bool {
	_, ok := c.outputs[id]
	return ok
}

func (c *Client) handleOutput(msg wlrlayershell.Message) {
	if msg.Opcode != wlrlayershell.OutputEventScale {
		return
	}
	d := wlrlayershell.NewDecoder(msg.Args)
	factor, err := d.Int32()
	if err != nil {
		return
	}
	if o, ok := c.outputs[msg.Object]; ok {
		o.scale = factor
	}
}

// watchConfigure registers ch to receive configure events for a
// layer surface object id, and returns a closed-signal channel for
// the matching closed event.
func (c *Client) watchConfigure(id wlrlayershell.ObjectID) (cfg chan wlrlayershell.ConfigureEvent, closed chan struct{}) {
	cfg = make(chan wlrlayershell.ConfigureEvent, 4)
	closed = make(chan struct{})
	c.configures[id] = cfg
	c.closed[id] = closed
	return cfg, closed
}

// watchRelease registers a buffer object id to receive release events.
func (c *Client) watchRelease(id wlrlayershell.ObjectID) chan struct{} {
	ch := make(chan struct{}, 1)
	c.released[id] = ch
	return ch
}
