// Package device implements the device-side USB machinery shared by
// any function built on a polled full-speed controller: descriptor
// codecs, endpoint configuration, the endpoint-zero control transfer
// engine, connection tracking, and the dispatch loop that ties them
// together.
//
// The package is function agnostic. A concrete device supplies its
// descriptor tables through [DescriptorSource], its vendor protocol
// through [VendorHandler], and its data plane through [BulkBridge];
// everything else here speaks only standard USB chapter 9.
//
// All blocking is bounded. The engine busy-waits on controller flags
// up to a spin limit and treats exhaustion as a transfer failure, so a
// silent host can never wedge the dispatch loop.
package device
