package ftdi

import (
	"bytes"
	"testing"

	"github.com/quartel/ft232emu/device"
)

func TestStoreDeviceDescriptor(t *testing.T) {
	s := NewStore(DefaultIdentity())
	raw, ok := s.Descriptor(device.DescriptorTypeDevice, 0)
	if !ok {
		t.Fatal("device descriptor missing")
	}
	var d device.DeviceDescriptor
	if err := device.ParseDeviceDescriptor(raw, &d); err != nil {
		t.Fatalf("ParseDeviceDescriptor: %v", err)
	}
	if d.VendorID != VendorID || d.ProductID != ProductID {
		t.Errorf("VID:PID = %04X:%04X, want %04X:%04X", d.VendorID, d.ProductID, VendorID, ProductID)
	}
	if d.MaxPacketSize0 != ControlSize {
		t.Errorf("MaxPacketSize0 = %d, want %d", d.MaxPacketSize0, ControlSize)
	}
	if d.USBVersion != USBVersion || d.DeviceVersion != DeviceVersion {
		t.Errorf("versions = %04X/%04X", d.USBVersion, d.DeviceVersion)
	}
	if d.ManufacturerIndex != 0 || d.ProductIndex != ProductIndex || d.SerialNumberIndex != SerialIndex {
		t.Errorf("string indices = %d/%d/%d", d.ManufacturerIndex, d.ProductIndex, d.SerialNumberIndex)
	}
	if d.NumConfigurations != 1 {
		t.Errorf("NumConfigurations = %d, want 1", d.NumConfigurations)
	}

	if _, ok := s.Descriptor(device.DescriptorTypeDevice, 1); ok {
		t.Error("device descriptor served at nonzero index")
	}
}

func TestStoreConfigBundle(t *testing.T) {
	s := NewStore(DefaultIdentity())
	raw, ok := s.Descriptor(device.DescriptorTypeConfig, 0)
	if !ok {
		t.Fatal("config descriptor missing")
	}
	if len(raw) != configBundleSize {
		t.Fatalf("bundle length = %d, want %d", len(raw), configBundleSize)
	}

	var c device.ConfigDescriptor
	if err := device.ParseConfigDescriptor(raw, &c); err != nil {
		t.Fatalf("ParseConfigDescriptor: %v", err)
	}
	if int(c.TotalLength) != len(raw) {
		t.Errorf("wTotalLength = %d, want %d", c.TotalLength, len(raw))
	}
	if c.NumInterfaces != 1 || c.ConfigurationValue != 1 {
		t.Errorf("config = %+v", c)
	}
	if c.Attributes != 0x80 {
		t.Errorf("bmAttributes = 0x%02X, want 0x80 (bus powered)", c.Attributes)
	}

	// One vendor-specific interface with the two bulk endpoints.
	iface := raw[device.ConfigDescriptorSize:]
	if iface[1] != device.DescriptorTypeInterface || iface[4] != 2 || iface[5] != 0xFF {
		t.Errorf("interface descriptor = % X", iface[:device.InterfaceDescriptorSize])
	}

	epOff := device.ConfigDescriptorSize + device.InterfaceDescriptorSize
	var in, out device.EndpointDescriptor
	if err := device.ParseEndpointDescriptor(raw[epOff:], &in); err != nil {
		t.Fatalf("IN endpoint: %v", err)
	}
	if err := device.ParseEndpointDescriptor(raw[epOff+device.EndpointDescriptorSize:], &out); err != nil {
		t.Fatalf("OUT endpoint: %v", err)
	}
	if in.Address != BulkInEndpoint|0x80 || in.Attributes != 0x02 || in.MaxPacketSize != BulkPacketSize {
		t.Errorf("IN endpoint = %+v", in)
	}
	if out.Address != BulkOutEndpoint || out.Attributes != 0x02 || out.MaxPacketSize != BulkPacketSize {
		t.Errorf("OUT endpoint = %+v", out)
	}
}

func TestStoreStrings(t *testing.T) {
	s := NewStore(Identity{Product: "AB", Serial: "CD"})

	lang, ok := s.Descriptor(device.DescriptorTypeString, LanguageIndex)
	if !ok || !bytes.Equal(lang, []byte{4, device.DescriptorTypeString, 0x09, 0x04}) {
		t.Errorf("language descriptor = % X %v", lang, ok)
	}

	prod, ok := s.Descriptor(device.DescriptorTypeString, ProductIndex)
	if !ok || !bytes.Equal(prod, []byte{6, device.DescriptorTypeString, 'A', 0, 'B', 0}) {
		t.Errorf("product descriptor = % X %v", prod, ok)
	}

	serial, ok := s.Descriptor(device.DescriptorTypeString, SerialIndex)
	if !ok || !bytes.Equal(serial, []byte{6, device.DescriptorTypeString, 'C', 0, 'D', 0}) {
		t.Errorf("serial descriptor = % X %v", serial, ok)
	}

	if _, ok := s.Descriptor(device.DescriptorTypeString, 3); ok {
		t.Error("string served at out-of-range index")
	}
	if _, ok := s.Descriptor(device.DescriptorTypeInterface, 0); ok {
		t.Error("standalone interface descriptor served")
	}
}
