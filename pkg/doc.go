// Package pkg provides shared utilities for the ft232emu bridge emulator.
//
// This package contains functionality used across the device core and the
// FTDI protocol layer, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for protocol and engine errors
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with emulator-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentEngine, "configuration selected", "value", 1)
//
// The default sink is os.Stderr; [SetLogOutput] can redirect it, for
// example to a physical serial port standing in for the diagnostic USART
// of the original firmware.
//
// # Errors
//
// Errors fall into the categories of the protocol design: fatal
// (hardware mismatch, see [IsFatal]), protocol-level rejection
// ([ErrRequestNotHandled], answered with a STALL), and
// transfer-superseded ([ErrTransferRestarted], silent from the host's
// perspective):
//
//	if errors.Is(err, pkg.ErrTransferRestarted) {
//	    // A new SETUP aborted the transfer; process it instead.
//	}
package pkg
