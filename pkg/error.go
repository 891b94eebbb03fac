package pkg

import "errors"

// USB protocol and engine errors.
var (
	// ErrStall indicates an endpoint stall condition.
	ErrStall = errors.New("endpoint stalled")

	// ErrTimeout indicates a bounded wait on a hardware-ready flag
	// expired before the flag was raised.
	ErrTimeout = errors.New("hardware ready timeout")

	// ErrTransferRestarted indicates a new SETUP packet superseded the
	// transfer in flight. This is protocol-mandated abort-and-restart,
	// not a failure to surface to the host.
	ErrTransferRestarted = errors.New("transfer restarted by new SETUP")

	// ErrRequestNotHandled indicates a request outside the modeled set.
	ErrRequestNotHandled = errors.New("request not handled")

	// ErrInvalidEndpoint indicates an invalid endpoint number or address.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrNotConfigured indicates the device is not configured.
	ErrNotConfigured = errors.New("device not configured")

	// ErrSetupPacketTooShort indicates the setup packet data is too short.
	ErrSetupPacketTooShort = errors.New("setup packet too short")

	// ErrDescriptorTooShort indicates the descriptor data is too short.
	ErrDescriptorTooShort = errors.New("descriptor too short")

	// ErrDescriptorTypeMismatch indicates the descriptor type does not match expected.
	ErrDescriptorTypeMismatch = errors.New("descriptor type mismatch")

	// ErrBufferTooSmall indicates the provided buffer is too small.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrEndpointConfig indicates the peripheral rejected an endpoint
	// configuration. This is a firmware/hardware mismatch and is fatal.
	ErrEndpointConfig = errors.New("endpoint configuration rejected")

	// ErrHardwareFault indicates an internal consistency check against
	// the peripheral failed. Fatal: the dispatch loop must not continue.
	ErrHardwareFault = errors.New("hardware consistency fault")

	// ErrAlreadyRunning indicates the dispatch loop is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrDetached indicates the device is not attached to the bus.
	ErrDetached = errors.New("device detached")
)

// IsFatal reports whether err belongs to the unrecoverable category:
// endpoint configuration verification failure or a violated hardware
// consistency invariant. The dispatch loop halts on these.
func IsFatal(err error) bool {
	return errors.Is(err, ErrEndpointConfig) || errors.Is(err, ErrHardwareFault)
}
