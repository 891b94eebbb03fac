package device

import (
	"errors"
	"fmt"

	"github.com/quartel/ft232emu/device/hal"
	"github.com/quartel/ft232emu/pkg"
)

// DefaultSpinLimit bounds each busy-wait on a controller flag. The
// polling model has no interrupts, so every wait for the host must be
// finite.
const DefaultSpinLimit = 10000

// State enumerates the control transfer engine states.
type State uint8

// Control transfer states.
const (
	StateIdle State = iota
	StateSetup
	StateDataIn
	StateDataOut
	StateStatus
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSetup:
		return "Setup"
	case StateDataIn:
		return "DataIn"
	case StateDataOut:
		return "DataOut"
	default:
		return "Status"
	}
}

// DescriptorSource resolves Get-Descriptor requests. A false return
// means the descriptor does not exist and the request is stalled.
type DescriptorSource interface {
	Descriptor(descType, index uint8) ([]byte, bool)
}

// VendorHandler services vendor-specific control requests.
type VendorHandler interface {
	// VendorRead returns the data stage for a device-to-host vendor
	// request. A false return stalls the request.
	VendorRead(setup *hal.SetupPacket) ([]byte, bool)

	// VendorWrite applies a host-to-device vendor request. A false
	// return stalls the request.
	VendorWrite(setup *hal.SetupPacket) bool
}

// Stats counts control transfer outcomes since the engine was created.
type Stats struct {
	Completed uint64 // Transfers that reached the status stage
	Restarted uint64 // Transfers superseded by a new SETUP
	Stalled   uint64 // Transfers answered with STALL
}

// Engine runs the control transfer state machine on endpoint zero.
//
// Service handles exactly one SETUP packet per call: it decodes the
// request, runs the data stage if one is required, and completes or
// stalls the status stage. A SETUP packet arriving mid-transfer aborts
// the transfer in progress; the superseding request is handled on the
// next Service call.
type Engine struct {
	ctrl        hal.Controller
	conf        *Configurator
	descriptors DescriptorSource
	vendor      VendorHandler
	spinLimit   int

	setup       hal.SetupPacket
	state       State
	configValue uint8
	stats       Stats
}

// NewEngine creates a control transfer engine.
func NewEngine(ctrl hal.Controller, conf *Configurator, descriptors DescriptorSource) *Engine {
	return &Engine{
		ctrl:        ctrl,
		conf:        conf,
		descriptors: descriptors,
		spinLimit:   DefaultSpinLimit,
	}
}

// SetVendorHandler installs the handler for vendor-specific requests.
// Without one, every vendor request is stalled.
func (e *Engine) SetVendorHandler(h VendorHandler) { e.vendor = h }

// SetSpinLimit overrides the busy-wait bound. Tests use small limits to
// provoke timeouts quickly.
func (e *Engine) SetSpinLimit(limit int) { e.spinLimit = limit }

// State returns the current transfer state.
func (e *Engine) State() State { return e.state }

// ConfigurationValue returns the configuration selected by the host,
// or zero if none is.
func (e *Engine) ConfigurationValue() uint8 { return e.configValue }

// Stats returns the transfer outcome counters.
func (e *Engine) Stats() Stats { return e.stats }

// Reset abandons any transfer in flight and returns the device to its
// unconfigured state. Called after a bus reset.
func (e *Engine) Reset() {
	e.state = StateIdle
	e.configValue = 0
}

// Service handles one pending SETUP packet on endpoint zero. It returns
// nil for every recoverable outcome, including stalls and supersedes. A
// non-nil return is a hardware-level fault the caller cannot poll past.
func (e *Engine) Service() error {
	var raw [hal.SetupPacketSize]byte
	n := e.ctrl.ReadFIFO(0, raw[:])
	e.ctrl.AckSetup(0)
	if !hal.ParseSetupPacket(raw[:n], &e.setup) {
		pkg.LogWarn(pkg.ComponentEngine, "dropping setup packet",
			"error", pkg.ErrSetupPacketTooShort, "length", n)
		e.ctrl.Stall(0)
		e.stats.Stalled++
		return nil
	}
	e.state = StateSetup
	pkg.LogDebug(pkg.ComponentEngine, "setup received",
		"requestType", fmt.Sprintf("0x%02X", e.setup.RequestType),
		"request", fmt.Sprintf("0x%02X", e.setup.Request),
		"value", e.setup.Value,
		"index", e.setup.Index,
		"length", e.setup.Length,
	)

	var err error
	if e.setup.IsDeviceToHost() {
		err = e.controlIn()
	} else {
		err = e.controlOut()
	}
	e.state = StateIdle

	switch {
	case err == nil:
		e.stats.Completed++
	case errors.Is(err, pkg.ErrTransferRestarted):
		e.stats.Restarted++
		pkg.LogDebug(pkg.ComponentEngine, "transfer superseded by new setup")
	case pkg.IsFatal(err):
		return err
	default:
		if errors.Is(err, pkg.ErrTimeout) {
			pkg.LogWarn(pkg.ComponentEngine, "control transfer timed out",
				"request", fmt.Sprintf("0x%02X", e.setup.Request))
		}
		e.ctrl.Stall(0)
		e.stats.Stalled++
	}
	return nil
}

// controlIn handles a device-to-host request: resolve the response
// data, send it truncated to wLength, then wait for the host's status
// OUT.
func (e *Engine) controlIn() error {
	s := &e.setup
	var buf [2]byte
	var data []byte
	handled := false

	switch {
	case s.Type() == hal.RequestTypeVendor:
		if e.vendor == nil {
			e.logUnsupported()
			return pkg.ErrRequestNotHandled
		}
		d, ok := e.vendor.VendorRead(s)
		if !ok {
			e.logUnsupported()
			return pkg.ErrRequestNotHandled
		}
		data, handled = d, true

	case s.Type() != hal.RequestTypeStandard:

	case s.Request == RequestGetDescriptor && s.RequestType == hal.RequestDirectionMask:
		d, ok := e.descriptors.Descriptor(descriptorType(s), descriptorIndex(s))
		if !ok {
			pkg.LogDebug(pkg.ComponentEngine, "descriptor not available",
				"type", descriptorType(s), "index", descriptorIndex(s))
			return pkg.ErrRequestNotHandled
		}
		data, handled = d, true

	case s.Request == RequestGetConfiguration && s.RequestType == hal.RequestDirectionMask:
		buf[0] = e.configValue
		data, handled = buf[:1], true

	case s.Request == RequestGetStatus:
		switch s.Recipient() {
		case hal.RequestRecipientDevice, hal.RequestRecipientInterface, hal.RequestRecipientEndpoint:
			// Bus powered, no remote wakeup, nothing halted.
			data, handled = buf[:2], true
		}

	case s.Request == RequestSetFeature || s.Request == RequestClearFeature:
		// Acknowledged with no data stage, whichever direction the host
		// encodes; no feature state is kept.
		handled = true
	}

	if !handled {
		e.logUnsupported()
		return pkg.ErrRequestNotHandled
	}

	if int(s.Length) < len(data) {
		data = data[:s.Length]
	}
	if len(data) > 0 {
		if err := e.writeData(data); err != nil {
			return err
		}
	}
	return e.completeStatusOut()
}

// controlOut handles a host-to-device request: apply it, drain any data
// stage, then send the zero-length status IN.
func (e *Engine) controlOut() error {
	s := &e.setup
	handled := false

	switch {
	case s.Type() == hal.RequestTypeVendor:
		if e.vendor == nil || !e.vendor.VendorWrite(s) {
			e.logUnsupported()
			return pkg.ErrRequestNotHandled
		}
		handled = true

	case s.Type() != hal.RequestTypeStandard:

	case s.Request == RequestSetAddress && s.RequestType == 0:
		return e.setAddress(uint8(s.Value & 0x7F))

	case s.Request == RequestSetConfiguration && s.RequestType == 0:
		if err := e.setConfiguration(uint8(s.Value)); err != nil {
			return err
		}
		handled = true

	case s.Request == RequestSetFeature || s.Request == RequestClearFeature:
		// Accepted but ignored, no feature state is kept.
		handled = true
	}

	if !handled {
		e.logUnsupported()
		return pkg.ErrRequestNotHandled
	}

	if s.Length > 0 {
		if err := e.drainData(); err != nil {
			return err
		}
	}
	e.state = StateStatus
	e.ctrl.CompleteIn(0)
	return nil
}

// writeData sends the data stage of a control read one FIFO bank at a
// time. A new SETUP aborts the transfer; a premature status OUT ends
// the data stage early.
func (e *Engine) writeData(data []byte) error {
	e.state = StateDataIn
	max := e.conf.ControlSize()
	for len(data) > 0 {
		sent := false
		for spin := 0; spin < e.spinLimit; spin++ {
			if e.ctrl.SetupReceived(0) {
				return pkg.ErrTransferRestarted
			}
			if e.ctrl.OutReceived(0) {
				// Host cut the data stage short.
				return nil
			}
			if !e.ctrl.InReady(0) {
				continue
			}
			pending := e.ctrl.Available(0)
			if pending > max {
				return fmt.Errorf("endpoint 0 reports %d buffered bytes in a %d byte FIFO: %w",
					pending, max, pkg.ErrHardwareFault)
			}
			n := max - pending
			if n > len(data) {
				n = len(data)
			}
			e.ctrl.WriteFIFO(0, data[:n])
			e.ctrl.CompleteIn(0)
			data = data[n:]
			sent = true
			break
		}
		if !sent {
			return pkg.ErrTimeout
		}
	}
	return nil
}

// drainData receives and discards the OUT data stage. None of the
// supported host-to-device requests carry a payload the device uses.
func (e *Engine) drainData() error {
	e.state = StateDataOut
	var scratch [64]byte
	remaining := int(e.setup.Length)
	for remaining > 0 {
		got := false
		for spin := 0; spin < e.spinLimit; spin++ {
			if e.ctrl.SetupReceived(0) {
				return pkg.ErrTransferRestarted
			}
			if e.ctrl.OutReceived(0) {
				got = true
				break
			}
		}
		if !got {
			return pkg.ErrTimeout
		}
		n := e.ctrl.Available(0)
		for drained := 0; drained < n; {
			r := e.ctrl.ReadFIFO(0, scratch[:])
			if r == 0 {
				break
			}
			drained += r
		}
		e.ctrl.AckOut(0)
		if n == 0 {
			break
		}
		remaining -= n
	}
	return nil
}

// completeStatusOut waits for the host's zero-length status OUT and
// acknowledges it.
func (e *Engine) completeStatusOut() error {
	e.state = StateStatus
	for spin := 0; spin < e.spinLimit; spin++ {
		if e.ctrl.SetupReceived(0) {
			return pkg.ErrTransferRestarted
		}
		if e.ctrl.OutReceived(0) {
			e.ctrl.AckOut(0)
			return nil
		}
	}
	return pkg.ErrTimeout
}

// setAddress assigns the bus address the host chose. The status stage
// still runs on the old address, so the new one is activated only after
// the zero-length IN has actually gone out.
func (e *Engine) setAddress(addr uint8) error {
	if err := e.ctrl.ProgramAddress(addr); err != nil {
		return fmt.Errorf("program address %d: %v: %w", addr, err, pkg.ErrHardwareFault)
	}
	e.state = StateStatus
	e.ctrl.CompleteIn(0)
	sent := false
	for spin := 0; spin < e.spinLimit; spin++ {
		if e.ctrl.InReady(0) {
			sent = true
			break
		}
	}
	if !sent {
		return pkg.ErrTimeout
	}
	if err := e.ctrl.EnableAddress(); err != nil {
		return fmt.Errorf("enable address %d: %v: %w", addr, err, pkg.ErrHardwareFault)
	}
	pkg.LogInfo(pkg.ComponentEngine, "bus address assigned", "address", addr)
	return nil
}

// setConfiguration records the host's selection and brings up the data
// endpoints. Value zero returns the device to its unconfigured state
// without touching the data endpoints.
func (e *Engine) setConfiguration(value uint8) error {
	e.configValue = value
	if value == 0 {
		pkg.LogInfo(pkg.ComponentEngine, "configuration deselected")
		return nil
	}
	if err := e.conf.ConfigureData(); err != nil {
		return err
	}
	pkg.LogInfo(pkg.ComponentEngine, "configuration selected", "configuration", value)
	return nil
}

// logUnsupported records a control request the device does not
// implement. The caller stalls it afterwards.
func (e *Engine) logUnsupported() {
	s := &e.setup
	pkg.LogWarn(pkg.ComponentEngine, "unsupported control request",
		"requestType", fmt.Sprintf("0x%02X", s.RequestType),
		"request", fmt.Sprintf("0x%02X", s.Request),
		"value", s.Value,
		"index", s.Index,
		"length", s.Length,
	)
}
