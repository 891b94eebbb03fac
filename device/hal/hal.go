package hal

// Direction is the data direction of an endpoint.
type Direction uint8

// Endpoint directions.
const (
	DirectionOut Direction = 0x00 // Host to device
	DirectionIn  Direction = 0x80 // Device to host
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	if d == DirectionIn {
		return "IN"
	}
	return "OUT"
}

// TransferType is the transfer type of an endpoint.
type TransferType uint8

// Endpoint transfer types (USB 2.0 Spec Table 9-13).
const (
	TransferControl     TransferType = 0x00
	TransferIsochronous TransferType = 0x01
	TransferBulk        TransferType = 0x02
	TransferInterrupt   TransferType = 0x03
)

// String returns a human-readable transfer type name.
func (t TransferType) String() string {
	switch t {
	case TransferControl:
		return "Control"
	case TransferIsochronous:
		return "Isochronous"
	case TransferBulk:
		return "Bulk"
	default:
		return "Interrupt"
	}
}

// BankCount selects single or double FIFO banking for an endpoint.
type BankCount uint8

// FIFO bank options.
const (
	SingleBank BankCount = 1
	DoubleBank BankCount = 2
)

// EndpointConfig describes an endpoint configuration.
//
// The controller translates these enumerated fields into its own
// register encoding; protocol code never sees raw bit patterns.
type EndpointConfig struct {
	Number        uint8        // Endpoint number (0-7)
	Direction     Direction    // Data direction (ignored for control)
	Type          TransferType // Transfer type
	MaxPacketSize uint16       // FIFO size in bytes
	Banks         BankCount    // Number of FIFO banks
}

// Address returns the endpoint address byte, direction bit included.
func (e *EndpointConfig) Address() uint8 {
	if e.Type == TransferControl {
		return e.Number
	}
	return e.Number | uint8(e.Direction)
}

// SetupPacket represents an 8-byte USB SETUP packet at the HAL boundary.
type SetupPacket struct {
	RequestType uint8  // Request characteristics
	Request     uint8  // Specific request
	Value       uint16 // Request-specific value
	Index       uint16 // Request-specific index
	Length      uint16 // Number of bytes to transfer
}

// SetupPacketSize is the size of a USB SETUP packet in bytes.
const SetupPacketSize = 8

// RequestType bitfield masks and values (USB 2.0 Spec Table 9-2).
const (
	RequestDirectionMask uint8 = 0x80
	RequestTypeMask      uint8 = 0x60
	RequestRecipientMask uint8 = 0x1F

	RequestTypeStandard uint8 = 0x00
	RequestTypeClass    uint8 = 0x20
	RequestTypeVendor   uint8 = 0x40

	RequestRecipientDevice    uint8 = 0x00
	RequestRecipientInterface uint8 = 0x01
	RequestRecipientEndpoint  uint8 = 0x02
)

// IsDeviceToHost reports whether the data stage runs device to host.
func (s *SetupPacket) IsDeviceToHost() bool {
	return s.RequestType&RequestDirectionMask != 0
}

// Type returns the request type bits (standard, class, or vendor).
func (s *SetupPacket) Type() uint8 {
	return s.RequestType & RequestTypeMask
}

// Recipient returns the request recipient bits.
func (s *SetupPacket) Recipient() uint8 {
	return s.RequestType & RequestRecipientMask
}

// ParseSetupPacket parses raw bytes into a SetupPacket.
// Returns false if data is too short.
func ParseSetupPacket(data []byte, out *SetupPacket) bool {
	if len(data) < SetupPacketSize {
		return false
	}
	out.RequestType = data[0]
	out.Request = data[1]
	out.Value = uint16(data[2]) | uint16(data[3])<<8
	out.Index = uint16(data[4]) | uint16(data[5])<<8
	out.Length = uint16(data[6]) | uint16(data[7])<<8
	return true
}

// MarshalTo writes the setup packet to buf.
// Returns the number of bytes written (8), or 0 if buf is too small.
func (s *SetupPacket) MarshalTo(buf []byte) int {
	if len(buf) < SetupPacketSize {
		return 0
	}
	buf[0] = s.RequestType
	buf[1] = s.Request
	buf[2] = byte(s.Value)
	buf[3] = byte(s.Value >> 8)
	buf[4] = byte(s.Index)
	buf[5] = byte(s.Index >> 8)
	buf[6] = byte(s.Length)
	buf[7] = byte(s.Length >> 8)
	return SetupPacketSize
}

// Controller abstracts the device-side USB peripheral.
//
// The interface mirrors the control/status/data register surface of a
// full-speed device controller: per-endpoint ready/received flags,
// byte-wise FIFO access, handshake clears, and bus-level attach, address
// and reset-event registers. Methods are non-blocking; protocol code
// polls the flag accessors and bounds its own waits.
type Controller interface {
	// Bus lifecycle.

	// Attach connects the device to the bus (clears DETACH).
	Attach() error

	// Detach disconnects the device from the bus.
	Detach() error

	// VBusPresent reports whether bus power is detected.
	VBusPresent() bool

	// EnableResetEvents enables or disables delivery of bus-reset
	// events into the reset mailbox.
	EnableResetEvents(enable bool)

	// TakeResetEvent drains the single-slot bus-reset mailbox.
	// Returns true at most once per reset event.
	TakeResetEvent() bool

	// Addressing. ProgramAddress latches the new bus address without
	// activating it; EnableAddress activates the latched address. The
	// split lets the engine complete the status stage on the old
	// address first, as the protocol requires.

	ProgramAddress(address uint8) error
	EnableAddress() error

	// Endpoint configuration. ConfigureEndpoint enables and allocates
	// an endpoint. Reconfiguring a live endpoint without an intervening
	// DeconfigureEndpoint is undefined behavior on the peripheral; the
	// configurator enforces the ordering. EndpointConfigured reads back
	// the peripheral's configuration-OK flag.

	ConfigureEndpoint(cfg EndpointConfig) error
	DeconfigureEndpoint(number uint8) error
	EndpointConfigured(number uint8) bool

	// Per-endpoint status flags.

	// SetupReceived reports whether a SETUP packet is waiting.
	SetupReceived(number uint8) bool

	// OutReceived reports whether an OUT packet (possibly zero-length)
	// is waiting.
	OutReceived(number uint8) bool

	// InReady reports whether the IN FIFO bank is free to fill.
	InReady(number uint8) bool

	// Stalled reports whether the endpoint is currently stalled.
	Stalled(number uint8) bool

	// FIFO access.

	// Available returns the byte count the peripheral reports waiting
	// in the endpoint's FIFO.
	Available(number uint8) int

	// ReadFIFO copies up to len(buf) waiting bytes out of the FIFO and
	// returns the count.
	ReadFIFO(number uint8, buf []byte) int

	// WriteFIFO appends data to the endpoint's IN FIFO bank and returns
	// the count accepted.
	WriteFIFO(number uint8, data []byte) int

	// Handshakes.

	// AckSetup clears the setup-received condition. It must be called
	// before any data or status stage work; it does not complete the
	// status stage.
	AckSetup(number uint8)

	// AckOut clears the out-received condition.
	AckOut(number uint8)

	// CompleteIn commits the control IN FIFO contents to the host.
	// With an empty FIFO this sends a zero-length (status) packet.
	CompleteIn(number uint8)

	// ReleaseFIFO commits and releases the current bank of a bulk
	// endpoint (send for IN, free for OUT).
	ReleaseFIFO(number uint8)

	// Stall requests a STALL handshake on the endpoint. The condition
	// clears when the next SETUP packet arrives.
	Stall(number uint8)
}
