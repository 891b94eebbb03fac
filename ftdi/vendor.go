package ftdi

import (
	"fmt"

	"github.com/quartel/ft232emu/device"
	"github.com/quartel/ft232emu/device/hal"
	"github.com/quartel/ft232emu/pkg"
)

// Vendor services the SIO control protocol with the chip's default
// responses. Port settings are accepted and discarded: there is no
// physical UART behind the bridge, so baud rate, framing, flow control
// and modem lines have nothing to act on.
type Vendor struct{}

// VendorRead answers the device-to-host SIO requests.
func (Vendor) VendorRead(s *hal.SetupPacket) ([]byte, bool) {
	switch s.Request {
	case RequestReadEEPROM:
		// Reads as blank, like an unprogrammed part.
		return []byte{0xFF, 0xFF}, true
	case RequestGetLatencyTimer:
		return []byte{DefaultLatencyTimer}, true
	case RequestGetModemStatus:
		return []byte{0x00}, true
	}
	return nil, false
}

// VendorWrite accepts the host-to-device SIO requests that configure
// the port and rejects everything else.
func (Vendor) VendorWrite(s *hal.SetupPacket) bool {
	switch s.Request {
	case RequestReset,
		RequestModemCtrl,
		RequestSetFlowCtrl,
		RequestSetBaudRate,
		RequestSetData,
		RequestSetLatencyTimer:
		pkg.LogDebug(pkg.ComponentVendor, "port setting accepted",
			"request", fmt.Sprintf("0x%02X", s.Request),
			"value", s.Value,
			"index", s.Index,
		)
		return true
	}
	return false
}

var _ device.VendorHandler = Vendor{}
