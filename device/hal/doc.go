// Package hal defines the hardware abstraction boundary between the
// bridge emulator's protocol core and a USB device peripheral.
//
// The [Controller] interface exposes the peripheral the way firmware
// sees it: per-endpoint status flags, byte-wise FIFO access, handshake
// clears, and bus-level attach/address/reset-event registers, but with
// named operations and enumerated [EndpointConfig] fields in place of
// raw register bit patterns. All stage sequencing and stall policy
// lives above this interface.
//
// # Execution model
//
// Controller methods never block. The protocol core polls the flag
// accessors (SetupReceived, OutReceived, InReady) and bounds every wait
// with an iteration cap, so a misbehaving peripheral surfaces as a
// timeout rather than a hang.
//
// # Reset events
//
// Bus resets arrive through a single-slot mailbox drained with
// [Controller.TakeResetEvent] at the top of each dispatch-loop
// iteration, rather than through a true asynchronous handler. This
// preserves abort-in-place semantics for in-flight control transfers
// without data races.
//
// An in-memory peripheral with a host-side driver API, suitable for
// tests and demos, is available in
// [github.com/quartel/ft232emu/device/hal/sim].
package hal
