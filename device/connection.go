package device

import (
	"github.com/quartel/ft232emu/device/hal"
	"github.com/quartel/ft232emu/pkg"
)

// ConnState enumerates the bus connection states.
type ConnState uint8

// Connection states.
const (
	Disconnected ConnState = iota
	Connected
)

// String returns a human-readable connection state name.
func (s ConnState) String() string {
	if s == Connected {
		return "Connected"
	}
	return "Disconnected"
}

// Connection tracks bus power and attaches the device when a host
// appears.
type Connection struct {
	ctrl  hal.Controller
	state ConnState
}

// NewConnection creates a connection tracker in the disconnected state.
func NewConnection(ctrl hal.Controller) *Connection {
	return &Connection{ctrl: ctrl}
}

// State returns the current connection state.
func (c *Connection) State() ConnState { return c.state }

// Poll samples bus power and advances the connection state. On power
// detection the device attaches and starts listening for bus resets.
// The disconnect transition is best effort: losing power also drops
// the device off the bus, so nothing downstream depends on observing
// it.
func (c *Connection) Poll() {
	switch c.state {
	case Disconnected:
		if !c.ctrl.VBusPresent() {
			return
		}
		if err := c.ctrl.Attach(); err != nil {
			pkg.LogWarn(pkg.ComponentConnection, "attach failed", "error", err)
			return
		}
		c.ctrl.EnableResetEvents(true)
		c.state = Connected
		pkg.LogInfo(pkg.ComponentConnection, "bus power detected, attached")
	case Connected:
		if c.ctrl.VBusPresent() {
			return
		}
		c.state = Disconnected
		pkg.LogInfo(pkg.ComponentConnection, "bus power lost")
	}
}
