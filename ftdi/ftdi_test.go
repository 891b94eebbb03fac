package ftdi

import (
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"

	"github.com/quartel/ft232emu/device"
	"github.com/quartel/ft232emu/device/hal/sim"
)

// decodeString converts a string descriptor back to its text.
func decodeString(t *testing.T, raw []byte) string {
	t.Helper()
	require.GreaterOrEqual(t, len(raw), 2)
	require.Equal(t, int(raw[0]), len(raw))
	units := make([]uint16, (len(raw)-2)/2)
	for i := range units {
		units[i] = uint16(raw[2+2*i]) | uint16(raw[3+2*i])<<8
	}
	return string(utf16.Decode(units))
}

// enumerate walks the stack through power-on, reset, addressing and
// configuration, the way a host brings the device up.
func enumerate(t *testing.T, p *sim.Peripheral, emu *Emulator) {
	t.Helper()
	p.PlugIn()
	require.NoError(t, emu.Stack.PollOnce())
	require.True(t, p.Attached())

	p.BusReset()
	require.NoError(t, emu.Stack.PollOnce())
	require.True(t, p.EndpointConfigured(0))

	p.SubmitSetup(device.SetAddressSetup(5))
	require.NoError(t, emu.Stack.PollOnce())
	require.EqualValues(t, 5, p.Address())
	require.True(t, p.AddressEnabled())
	p.CollectIn(0) // discard the status packet

	p.SubmitSetup(device.SetConfigurationSetup(1))
	require.NoError(t, emu.Stack.PollOnce())
	p.CollectIn(0)
}

func TestEnumeration(t *testing.T) {
	p := sim.New()
	emu := New(p, DefaultIdentity())
	enumerate(t, p, emu)

	// Device descriptor.
	p.SubmitSetup(device.GetDescriptorSetup(device.DescriptorTypeDevice, 0, device.DeviceDescriptorSize))
	require.NoError(t, emu.Stack.PollOnce())
	var d device.DeviceDescriptor
	require.NoError(t, device.ParseDeviceDescriptor(p.ControlData(), &d))
	require.Equal(t, VendorID, d.VendorID)
	require.Equal(t, ProductID, d.ProductID)

	// Configuration bundle, probed short first like a real host.
	p.SubmitSetup(device.GetDescriptorSetup(device.DescriptorTypeConfig, 0, device.ConfigDescriptorSize))
	require.NoError(t, emu.Stack.PollOnce())
	var c device.ConfigDescriptor
	require.NoError(t, device.ParseConfigDescriptor(p.ControlData(), &c))
	require.EqualValues(t, configBundleSize, c.TotalLength)

	p.SubmitSetup(device.GetDescriptorSetup(device.DescriptorTypeConfig, 0, c.TotalLength))
	require.NoError(t, emu.Stack.PollOnce())
	bundle := p.ControlData()
	require.Len(t, bundle, configBundleSize)
	require.EqualValues(t, device.ConfigDescriptorSize, bundle[0])

	// Identity strings.
	p.SubmitSetup(device.GetDescriptorSetup(device.DescriptorTypeString, ProductIndex, 255))
	require.NoError(t, emu.Stack.PollOnce())
	require.Equal(t, DefaultProduct, decodeString(t, p.ControlData()))

	p.SubmitSetup(device.GetDescriptorSetup(device.DescriptorTypeString, SerialIndex, 255))
	require.NoError(t, emu.Stack.PollOnce())
	require.Equal(t, DefaultSerial, decodeString(t, p.ControlData()))

	// Configured and ready for bulk traffic.
	require.EqualValues(t, 1, emu.Engine.ConfigurationValue())
	_, ok := p.ConfiguredEndpoint(BulkInEndpoint)
	require.True(t, ok)
	_, ok = p.ConfiguredEndpoint(BulkOutEndpoint)
	require.True(t, ok)
}

func TestSIORequests(t *testing.T) {
	p := sim.New()
	emu := New(p, DefaultIdentity())
	enumerate(t, p, emu)

	// The port configuration burst the ftdi_sio driver sends on open.
	for _, req := range []uint8{RequestReset, RequestSetBaudRate, RequestSetData, RequestSetFlowCtrl, RequestModemCtrl} {
		p.SubmitSetup(device.VendorOutSetup(req, 0x4138, 0))
		require.NoError(t, emu.Stack.PollOnce())
		require.False(t, p.IsStalled(0), "request 0x%02X stalled", req)
		p.CollectIn(0)
	}

	p.SubmitSetup(device.VendorInSetup(RequestGetLatencyTimer, 0, 0, 1))
	require.NoError(t, emu.Stack.PollOnce())
	require.Equal(t, []byte{DefaultLatencyTimer}, p.ControlData())

	p.SubmitSetup(device.VendorInSetup(RequestReadEEPROM, 0, 0, 2))
	require.NoError(t, emu.Stack.PollOnce())
	require.Equal(t, []byte{0xFF, 0xFF}, p.ControlData())

	p.SubmitSetup(device.VendorInSetup(RequestGetModemStatus, 0, 0, 1))
	require.NoError(t, emu.Stack.PollOnce())
	require.Equal(t, []byte{0x00}, p.ControlData())

	// Unknown vendor requests stall without a data stage.
	p.SubmitSetup(device.VendorInSetup(0x55, 0, 0, 2))
	require.NoError(t, emu.Stack.PollOnce())
	require.True(t, p.IsStalled(0))
	require.Empty(t, p.ControlData())
}

func TestSerialGreetingAndEcho(t *testing.T) {
	p := sim.New()
	emu := New(p, DefaultIdentity())
	enumerate(t, p, emu)

	greeting := append([]byte{ModemStatusByte, LineStatusByte}, Greeting...)

	// The trigger byte produces the greeting, byte for byte.
	require.NoError(t, p.SubmitOut(BulkOutEndpoint, []byte{TriggerByte}))
	require.NoError(t, emu.Stack.PollOnce())
	pkt, ok := p.CollectIn(BulkInEndpoint)
	require.True(t, ok)
	require.Equal(t, greeting, pkt)

	// Any other byte is echoed behind the status prefix.
	require.NoError(t, p.SubmitOut(BulkOutEndpoint, []byte{'x'}))
	require.NoError(t, emu.Stack.PollOnce())
	pkt, ok = p.CollectIn(BulkInEndpoint)
	require.True(t, ok)
	require.Equal(t, []byte{ModemStatusByte, LineStatusByte, 'x'}, pkt)

	// In a burst only the last byte counts: the trigger supersedes the
	// pending echo, so the host sees the greeting and nothing else.
	require.NoError(t, p.SubmitOut(BulkOutEndpoint, []byte{'b', TriggerByte}))
	require.NoError(t, emu.Stack.PollOnce())
	pkt, ok = p.CollectIn(BulkInEndpoint)
	require.True(t, ok)
	require.Equal(t, greeting, pkt)

	require.NoError(t, emu.Stack.PollOnce())
	_, ok = p.CollectIn(BulkInEndpoint)
	require.False(t, ok, "stale echo escaped after the greeting")

	stats := emu.Bridge.Stats()
	require.EqualValues(t, 4, stats.BytesReceived)
	require.EqualValues(t, 3, stats.PacketsSent)
}

func TestTransferCounters(t *testing.T) {
	p := sim.New()
	emu := New(p, DefaultIdentity())
	enumerate(t, p, emu)

	before := emu.Engine.Stats()
	p.SubmitSetup(device.GetDescriptorSetup(device.DescriptorTypeString, 9, 255))
	require.NoError(t, emu.Stack.PollOnce())
	after := emu.Engine.Stats()
	require.Equal(t, before.Stalled+1, after.Stalled)
	require.Equal(t, before.Completed, after.Completed)
}
