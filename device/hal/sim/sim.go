package sim

import (
	"sync"

	"github.com/quartel/ft232emu/device/hal"
	"github.com/quartel/ft232emu/pkg"
)

// MaxEndpoints is the number of endpoints the simulated peripheral
// models (0-7, matching a small full-speed device controller).
const MaxEndpoints = 8

// MaxFIFOSize is the largest FIFO bank the peripheral can allocate.
const MaxFIFOSize = 512

// defaultControlSize is assumed for EP0 until it is configured.
const defaultControlSize = 64

// endpoint holds the per-endpoint register state.
type endpoint struct {
	live  bool // Enabled and allocated
	cfgOK bool // Configuration verified flag
	cfg   hal.EndpointConfig

	setupBuf     [hal.SetupPacketSize]byte
	setupPending bool

	rxBuf      [MaxFIFOSize]byte
	rxLen      int
	rxOff      int
	outPending bool

	txBuf   [MaxFIFOSize]byte
	txLen   int
	inReady bool

	stalled bool

	// Packets committed to the host, oldest first.
	inQueue [][]byte
}

// Peripheral is an in-memory USB device peripheral implementing
// [hal.Controller], together with a host-side driver API for tests and
// demos. All methods are safe for concurrent use, though the intended
// model is a single polling goroutine on the device side.
type Peripheral struct {
	mu sync.Mutex

	vbus        bool
	attached    bool
	resetEvents bool
	resetSlot   bool

	address        uint8
	addressEnabled bool

	eps [MaxEndpoints]endpoint

	// Control-read bookkeeping for the simulated host.
	autoStatus bool
	ctrlIn     bool
	ctrlWant   int
	ctrlData   []byte
}

// New creates a simulated peripheral with auto-status enabled.
func New() *Peripheral {
	return &Peripheral{autoStatus: true}
}

// Controller interface

// Attach connects the device to the bus.
func (p *Peripheral) Attach() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.vbus {
		return pkg.ErrDetached
	}
	p.attached = true
	pkg.LogDebug(pkg.ComponentHAL, "attached to bus")
	return nil
}

// Detach disconnects the device from the bus.
func (p *Peripheral) Detach() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attached = false
	return nil
}

// VBusPresent reports whether bus power is detected.
func (p *Peripheral) VBusPresent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vbus
}

// EnableResetEvents enables or disables the bus-reset mailbox.
func (p *Peripheral) EnableResetEvents(enable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetEvents = enable
	if !enable {
		p.resetSlot = false
	}
}

// TakeResetEvent drains the single-slot reset mailbox.
func (p *Peripheral) TakeResetEvent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev := p.resetSlot
	p.resetSlot = false
	return ev
}

// ProgramAddress latches a new bus address without activating it.
func (p *Peripheral) ProgramAddress(address uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.address = address & 0x7F
	p.addressEnabled = false
	return nil
}

// EnableAddress activates the latched bus address.
func (p *Peripheral) EnableAddress() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addressEnabled = true
	pkg.LogDebug(pkg.ComponentHAL, "address enabled", "address", p.address)
	return nil
}

// ConfigureEndpoint enables and allocates an endpoint. Configuring an
// endpoint that is still live is rejected, mirroring the peripheral's
// undefined behavior for that sequence: callers must deconfigure first.
func (p *Peripheral) ConfigureEndpoint(cfg hal.EndpointConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if int(cfg.Number) >= MaxEndpoints {
		return pkg.ErrInvalidEndpoint
	}
	ep := &p.eps[cfg.Number]
	if ep.live {
		ep.cfgOK = false
		return pkg.ErrEndpointConfig
	}
	if cfg.MaxPacketSize == 0 || cfg.MaxPacketSize > MaxFIFOSize {
		ep.cfgOK = false
		return pkg.ErrEndpointConfig
	}

	*ep = endpoint{
		live:    true,
		cfgOK:   true,
		cfg:     cfg,
		inReady: cfg.Type == hal.TransferControl || cfg.Direction == hal.DirectionIn,
	}
	return nil
}

// DeconfigureEndpoint disables and deallocates an endpoint.
func (p *Peripheral) DeconfigureEndpoint(number uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(number) >= MaxEndpoints {
		return pkg.ErrInvalidEndpoint
	}
	p.eps[number] = endpoint{}
	return nil
}

// EndpointConfigured reads back the configuration-OK flag.
func (p *Peripheral) EndpointConfigured(number uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(number) >= MaxEndpoints {
		return false
	}
	return p.eps[number].cfgOK
}

// SetupReceived reports whether a SETUP packet is waiting.
func (p *Peripheral) SetupReceived(number uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ep(number) != nil && p.eps[number].setupPending
}

// OutReceived reports whether an OUT packet is waiting.
func (p *Peripheral) OutReceived(number uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ep(number) != nil && p.eps[number].outPending
}

// InReady reports whether the IN FIFO bank is free to fill.
func (p *Peripheral) InReady(number uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ep(number) != nil && p.eps[number].inReady
}

// Stalled reports whether the endpoint is stalled.
func (p *Peripheral) Stalled(number uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ep(number) != nil && p.eps[number].stalled
}

// Available returns the byte count waiting in the endpoint's FIFO.
func (p *Peripheral) Available(number uint8) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := p.ep(number)
	if ep == nil {
		return 0
	}
	if ep.setupPending {
		return hal.SetupPacketSize
	}
	return ep.rxLen - ep.rxOff
}

// ReadFIFO copies waiting bytes out of the FIFO.
func (p *Peripheral) ReadFIFO(number uint8, buf []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := p.ep(number)
	if ep == nil {
		return 0
	}
	if ep.setupPending {
		return copy(buf, ep.setupBuf[:])
	}
	n := copy(buf, ep.rxBuf[ep.rxOff:ep.rxLen])
	ep.rxOff += n
	return n
}

// WriteFIFO appends data to the endpoint's IN FIFO bank.
func (p *Peripheral) WriteFIFO(number uint8, data []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := p.ep(number)
	if ep == nil {
		return 0
	}
	room := int(ep.cfg.MaxPacketSize) - ep.txLen
	if room <= 0 {
		return 0
	}
	if len(data) > room {
		data = data[:room]
	}
	n := copy(ep.txBuf[ep.txLen:], data)
	ep.txLen += n
	return n
}

// AckSetup clears the setup-received condition.
func (p *Peripheral) AckSetup(number uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ep := p.ep(number); ep != nil {
		ep.setupPending = false
	}
}

// AckOut clears the out-received condition.
func (p *Peripheral) AckOut(number uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ep := p.ep(number); ep != nil {
		ep.outPending = false
		ep.rxLen = 0
		ep.rxOff = 0
	}
}

// CompleteIn commits the control IN FIFO contents to the host. With an
// empty FIFO this sends a zero-length (status) packet. When auto-status
// is enabled and the committed packet terminates a control read (short
// packet, or the requested length reached), the simulated host
// immediately answers with a zero-length status OUT.
func (p *Peripheral) CompleteIn(number uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := p.ep(number)
	if ep == nil {
		return
	}
	pktLen := p.commit(ep)

	if number != 0 || !p.ctrlIn {
		return
	}
	p.ctrlData = append(p.ctrlData, ep.inQueue[len(ep.inQueue)-1]...)

	max := defaultControlSize
	if ep.live {
		max = int(ep.cfg.MaxPacketSize)
	}
	if p.autoStatus && (pktLen < max || len(p.ctrlData) >= p.ctrlWant) {
		ep.outPending = true
		ep.rxLen = 0
		ep.rxOff = 0
	}
}

// ReleaseFIFO commits and releases the current bank of a bulk endpoint.
func (p *Peripheral) ReleaseFIFO(number uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := p.ep(number)
	if ep == nil {
		return
	}
	if ep.txLen > 0 {
		p.commit(ep)
		return
	}
	ep.rxLen = 0
	ep.rxOff = 0
}

// Stall requests a STALL handshake on the endpoint.
func (p *Peripheral) Stall(number uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ep := p.ep(number); ep != nil {
		ep.stalled = true
	}
	pkg.LogDebug(pkg.ComponentHAL, "endpoint stalled", "endpoint", number)
}

// commit moves the filled tx bank into the host-visible queue and
// returns the packet length. Caller holds the lock.
func (p *Peripheral) commit(ep *endpoint) int {
	pkt := make([]byte, ep.txLen)
	copy(pkt, ep.txBuf[:ep.txLen])
	ep.inQueue = append(ep.inQueue, pkt)
	ep.txLen = 0
	ep.inReady = true
	return len(pkt)
}

// ep returns the endpoint state, or nil for an out-of-range number.
// Caller holds the lock.
func (p *Peripheral) ep(number uint8) *endpoint {
	if int(number) >= MaxEndpoints {
		return nil
	}
	return &p.eps[number]
}

// Host-side driver API

// PlugIn raises VBUS, as if the device were connected to a host port.
func (p *Peripheral) PlugIn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vbus = true
}

// Unplug drops VBUS.
func (p *Peripheral) Unplug() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vbus = false
	p.attached = false
}

// BusReset issues a bus reset: the device address is cleared and, if
// reset events are enabled, the reset mailbox is filled.
func (p *Peripheral) BusReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.address = 0
	p.addressEnabled = false
	if p.resetEvents {
		p.resetSlot = true
	}
}

// SetAutoStatus controls whether the simulated host acknowledges the
// status stage of control reads automatically. Tests that script the
// status stage themselves (or provoke a supersede) turn it off.
func (p *Peripheral) SetAutoStatus(enable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoStatus = enable
}

// SubmitSetup delivers a SETUP packet to EP0. Any stall clears and any
// transfer in flight is implicitly superseded.
func (p *Peripheral) SubmitSetup(s hal.SetupPacket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitSetup(s)
}

// SubmitSetupData delivers a SETUP packet together with its OUT data
// stage payload.
func (p *Peripheral) SubmitSetupData(s hal.SetupPacket, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitSetup(s)
	ep := &p.eps[0]
	ep.rxLen = copy(ep.rxBuf[:], data)
	ep.rxOff = 0
	ep.outPending = true
}

// submitSetup installs a SETUP packet on EP0. Caller holds the lock.
func (p *Peripheral) submitSetup(s hal.SetupPacket) {
	ep := &p.eps[0]
	s.MarshalTo(ep.setupBuf[:])
	ep.setupPending = true
	ep.stalled = false
	ep.outPending = false
	ep.rxLen = 0
	ep.rxOff = 0
	ep.txLen = 0

	p.ctrlIn = s.RequestType&0x80 != 0
	p.ctrlWant = int(s.Length)
	p.ctrlData = nil

	// A device-to-host request with no data stage goes straight to the
	// status stage, so the host's zero-length OUT is already waiting.
	if p.autoStatus && p.ctrlIn && p.ctrlWant == 0 {
		ep.outPending = true
	}
}

// SendStatusOut delivers the host's zero-length status OUT packet on
// EP0. Only needed with auto-status disabled.
func (p *Peripheral) SendStatusOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := &p.eps[0]
	ep.outPending = true
	ep.rxLen = 0
	ep.rxOff = 0
}

// SubmitOut delivers a data packet on a bulk OUT endpoint.
func (p *Peripheral) SubmitOut(number uint8, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := p.ep(number)
	if ep == nil || !ep.live {
		return pkg.ErrInvalidEndpoint
	}
	if ep.cfg.Direction != hal.DirectionOut {
		return pkg.ErrInvalidEndpoint
	}
	if len(data) > int(ep.cfg.MaxPacketSize) {
		return pkg.ErrBufferTooSmall
	}
	ep.rxLen = copy(ep.rxBuf[:], data)
	ep.rxOff = 0
	ep.outPending = true
	return nil
}

// CollectIn pops the oldest packet the device committed on an IN (or
// control) endpoint. Returns false if none is waiting.
func (p *Peripheral) CollectIn(number uint8) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := p.ep(number)
	if ep == nil || len(ep.inQueue) == 0 {
		return nil, false
	}
	pkt := ep.inQueue[0]
	ep.inQueue = ep.inQueue[1:]
	return pkt, true
}

// ControlData returns the data-stage bytes accumulated since the most
// recent SETUP on EP0.
func (p *Peripheral) ControlData() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, len(p.ctrlData))
	copy(out, p.ctrlData)
	return out
}

// IsStalled reports the stall condition from the host's perspective.
func (p *Peripheral) IsStalled(number uint8) bool {
	return p.Stalled(number)
}

// Attached reports whether the device has attached to the bus.
func (p *Peripheral) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attached
}

// Address returns the currently programmed bus address.
func (p *Peripheral) Address() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.address
}

// AddressEnabled reports whether the programmed address is active.
func (p *Peripheral) AddressEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addressEnabled
}

// ConfiguredEndpoint returns the configuration of a live endpoint.
func (p *Peripheral) ConfiguredEndpoint(number uint8) (hal.EndpointConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep := p.ep(number)
	if ep == nil || !ep.live {
		return hal.EndpointConfig{}, false
	}
	return ep.cfg, true
}

// Compile-time interface check
var _ hal.Controller = (*Peripheral)(nil)
