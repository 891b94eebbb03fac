// Package sim provides an in-memory USB device peripheral implementing
// [hal.Controller], plus a host-side driver API for tests and demos.
//
// The device side sees register-like state: setup/out/in-ready flags,
// byte-wise FIFOs, a reset mailbox, and address latching. The host side
// injects SETUP packets and OUT data and collects committed IN packets:
//
//	p := sim.New()
//	p.PlugIn()
//	p.SubmitSetup(hal.SetupPacket{RequestType: 0x80, Request: 0x06, ...})
//	// ... run the device's dispatch loop ...
//	data := p.ControlData()
//
// With auto-status enabled (the default), the simulated host completes
// the status stage of a control read as soon as the device commits a
// short packet or the requested length, so single-threaded polling
// tests run deterministically without a concurrent host goroutine.
package sim
