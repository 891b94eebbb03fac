package ftdi

import (
	"github.com/quartel/ft232emu/device"
	"github.com/quartel/ft232emu/device/hal"
	"github.com/quartel/ft232emu/pkg"
)

// intent is the single pending bulk IN action.
type intent uint8

const (
	intentNone intent = iota
	intentGreeting
	intentEcho
)

// BridgeStats counts bulk traffic through the bridge.
type BridgeStats struct {
	BytesReceived uint64
	PacketsSent   uint64
}

// Bridge is the serial data plane: it consumes bytes from the bulk OUT
// endpoint and produces replies on the bulk IN endpoint.
//
// The bridge holds at most one pending reply. Every received byte
// overwrites it, so of a burst of input only the last byte determines
// what the host gets back.
type Bridge struct {
	ctrl    hal.Controller
	pending intent
	echo    byte
	stats   BridgeStats

	rxBuf [BulkPacketSize]byte
}

// NewBridge creates a bridge over the given controller.
func NewBridge(ctrl hal.Controller) *Bridge {
	return &Bridge{ctrl: ctrl}
}

// Stats returns the bulk traffic counters.
func (b *Bridge) Stats() BridgeStats { return b.stats }

// Receive processes payload bytes from the host. The trigger byte
// queues the greeting; any other byte queues an echo of itself.
func (b *Bridge) Receive(data []byte) {
	for _, c := range data {
		if c == TriggerByte {
			b.pending = intentGreeting
		} else {
			b.pending = intentEcho
			b.echo = c
		}
	}
	b.stats.BytesReceived += uint64(len(data))
}

// NextPacket writes the next bulk IN payload into buf, status prefix
// included, and clears the pending reply. Returns 0 when nothing is
// pending.
func (b *Bridge) NextPacket(buf []byte) int {
	switch b.pending {
	case intentGreeting:
		b.pending = intentNone
		buf[0], buf[1] = ModemStatusByte, LineStatusByte
		return 2 + copy(buf[2:], Greeting)
	case intentEcho:
		b.pending = intentNone
		buf[0], buf[1], buf[2] = ModemStatusByte, LineStatusByte, b.echo
		return 3
	}
	return 0
}

// ServiceReceive drains one packet from the bulk OUT endpoint.
func (b *Bridge) ServiceReceive() {
	if !b.ctrl.OutReceived(BulkOutEndpoint) {
		return
	}
	n := b.ctrl.Available(BulkOutEndpoint)
	for read := 0; read < n; {
		r := b.ctrl.ReadFIFO(BulkOutEndpoint, b.rxBuf[:])
		if r == 0 {
			break
		}
		b.Receive(b.rxBuf[:r])
		read += r
	}
	b.ctrl.AckOut(BulkOutEndpoint)
	b.ctrl.ReleaseFIFO(BulkOutEndpoint)
	pkg.LogDebug(pkg.ComponentBridge, "bulk packet received", "bytes", n)
}

// ServiceTransmit sends the pending reply on the bulk IN endpoint, if
// the bank is free.
func (b *Bridge) ServiceTransmit() {
	if b.pending == intentNone || !b.ctrl.InReady(BulkInEndpoint) {
		return
	}
	var buf [2 + len(Greeting)]byte
	n := b.NextPacket(buf[:])
	b.ctrl.WriteFIFO(BulkInEndpoint, buf[:n])
	b.ctrl.ReleaseFIFO(BulkInEndpoint)
	b.stats.PacketsSent++
	pkg.LogDebug(pkg.ComponentBridge, "bulk packet sent", "bytes", n)
}

var _ device.BulkBridge = (*Bridge)(nil)
