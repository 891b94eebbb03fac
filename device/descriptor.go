package device

import (
	"unicode/utf16"

	"github.com/quartel/ft232emu/pkg"
)

// Descriptor type codes (USB 2.0 Spec Table 9-5).
const (
	DescriptorTypeDevice    uint8 = 0x01
	DescriptorTypeConfig    uint8 = 0x02
	DescriptorTypeString    uint8 = 0x03
	DescriptorTypeInterface uint8 = 0x04
	DescriptorTypeEndpoint  uint8 = 0x05
)

// Wire sizes of the fixed-length descriptors.
const (
	DeviceDescriptorSize    = 18
	ConfigDescriptorSize    = 9
	InterfaceDescriptorSize = 9
	EndpointDescriptorSize  = 7
)

// LanguageEnglishUS is the USB language identifier for US English.
const LanguageEnglishUS uint16 = 0x0409

// DeviceDescriptor describes the device as a whole.
type DeviceDescriptor struct {
	USBVersion        uint16 // BCD, e.g. 0x0110 for USB 1.1
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize0    uint8 // EP0 FIFO size
	VendorID          uint16
	ProductID         uint16
	DeviceVersion     uint16 // BCD
	ManufacturerIndex uint8
	ProductIndex      uint8
	SerialNumberIndex uint8
	NumConfigurations uint8
}

// MarshalTo writes the 18-byte device descriptor to buf. Returns the
// number of bytes written, or 0 if buf is too small.
func (d *DeviceDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < DeviceDescriptorSize {
		return 0
	}
	buf[0] = DeviceDescriptorSize
	buf[1] = DescriptorTypeDevice
	putUint16(buf[2:], d.USBVersion)
	buf[4] = d.DeviceClass
	buf[5] = d.DeviceSubClass
	buf[6] = d.DeviceProtocol
	buf[7] = d.MaxPacketSize0
	putUint16(buf[8:], d.VendorID)
	putUint16(buf[10:], d.ProductID)
	putUint16(buf[12:], d.DeviceVersion)
	buf[14] = d.ManufacturerIndex
	buf[15] = d.ProductIndex
	buf[16] = d.SerialNumberIndex
	buf[17] = d.NumConfigurations
	return DeviceDescriptorSize
}

// ParseDeviceDescriptor parses an 18-byte device descriptor.
func ParseDeviceDescriptor(data []byte, out *DeviceDescriptor) error {
	if len(data) < DeviceDescriptorSize {
		return pkg.ErrDescriptorTooShort
	}
	if data[1] != DescriptorTypeDevice {
		return pkg.ErrDescriptorTypeMismatch
	}
	out.USBVersion = getUint16(data[2:])
	out.DeviceClass = data[4]
	out.DeviceSubClass = data[5]
	out.DeviceProtocol = data[6]
	out.MaxPacketSize0 = data[7]
	out.VendorID = getUint16(data[8:])
	out.ProductID = getUint16(data[10:])
	out.DeviceVersion = getUint16(data[12:])
	out.ManufacturerIndex = data[14]
	out.ProductIndex = data[15]
	out.SerialNumberIndex = data[16]
	out.NumConfigurations = data[17]
	return nil
}

// ConfigDescriptor describes one device configuration. TotalLength
// covers the configuration descriptor plus every interface and endpoint
// descriptor returned with it.
type ConfigDescriptor struct {
	TotalLength        uint16
	NumInterfaces      uint8
	ConfigurationValue uint8
	ConfigurationIndex uint8
	Attributes         uint8
	MaxPower           uint8 // Units of 2 mA
}

// MarshalTo writes the 9-byte configuration descriptor to buf.
func (c *ConfigDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < ConfigDescriptorSize {
		return 0
	}
	buf[0] = ConfigDescriptorSize
	buf[1] = DescriptorTypeConfig
	putUint16(buf[2:], c.TotalLength)
	buf[4] = c.NumInterfaces
	buf[5] = c.ConfigurationValue
	buf[6] = c.ConfigurationIndex
	buf[7] = c.Attributes
	buf[8] = c.MaxPower
	return ConfigDescriptorSize
}

// ParseConfigDescriptor parses the leading 9 bytes of a configuration
// bundle.
func ParseConfigDescriptor(data []byte, out *ConfigDescriptor) error {
	if len(data) < ConfigDescriptorSize {
		return pkg.ErrDescriptorTooShort
	}
	if data[1] != DescriptorTypeConfig {
		return pkg.ErrDescriptorTypeMismatch
	}
	out.TotalLength = getUint16(data[2:])
	out.NumInterfaces = data[4]
	out.ConfigurationValue = data[5]
	out.ConfigurationIndex = data[6]
	out.Attributes = data[7]
	out.MaxPower = data[8]
	return nil
}

// InterfaceDescriptor describes one interface within a configuration.
type InterfaceDescriptor struct {
	InterfaceNumber   uint8
	AlternateSetting  uint8
	NumEndpoints      uint8
	InterfaceClass    uint8
	InterfaceSubClass uint8
	InterfaceProtocol uint8
	InterfaceIndex    uint8
}

// MarshalTo writes the 9-byte interface descriptor to buf.
func (i *InterfaceDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < InterfaceDescriptorSize {
		return 0
	}
	buf[0] = InterfaceDescriptorSize
	buf[1] = DescriptorTypeInterface
	buf[2] = i.InterfaceNumber
	buf[3] = i.AlternateSetting
	buf[4] = i.NumEndpoints
	buf[5] = i.InterfaceClass
	buf[6] = i.InterfaceSubClass
	buf[7] = i.InterfaceProtocol
	buf[8] = i.InterfaceIndex
	return InterfaceDescriptorSize
}

// EndpointDescriptor describes one endpoint within an interface.
type EndpointDescriptor struct {
	Address       uint8 // Endpoint number with direction bit
	Attributes    uint8 // Transfer type
	MaxPacketSize uint16
	Interval      uint8
}

// MarshalTo writes the 7-byte endpoint descriptor to buf.
func (e *EndpointDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < EndpointDescriptorSize {
		return 0
	}
	buf[0] = EndpointDescriptorSize
	buf[1] = DescriptorTypeEndpoint
	buf[2] = e.Address
	buf[3] = e.Attributes
	putUint16(buf[4:], e.MaxPacketSize)
	buf[6] = e.Interval
	return EndpointDescriptorSize
}

// ParseEndpointDescriptor parses a 7-byte endpoint descriptor.
func ParseEndpointDescriptor(data []byte, out *EndpointDescriptor) error {
	if len(data) < EndpointDescriptorSize {
		return pkg.ErrDescriptorTooShort
	}
	if data[1] != DescriptorTypeEndpoint {
		return pkg.ErrDescriptorTypeMismatch
	}
	out.Address = data[2]
	out.Attributes = data[3]
	out.MaxPacketSize = getUint16(data[4:])
	out.Interval = data[6]
	return nil
}

// StringDescriptorTo encodes s as a UTF-16LE string descriptor in buf.
// Returns the number of bytes written, or 0 if buf is too small.
func StringDescriptorTo(buf []byte, s string) int {
	units := utf16.Encode([]rune(s))
	size := 2 + 2*len(units)
	if size > 0xFF || len(buf) < size {
		return 0
	}
	buf[0] = uint8(size)
	buf[1] = DescriptorTypeString
	for i, u := range units {
		putUint16(buf[2+2*i:], u)
	}
	return size
}

// LanguageDescriptorTo encodes the string descriptor at index zero,
// which lists the supported language identifiers.
func LanguageDescriptorTo(buf []byte, langID uint16) int {
	if len(buf) < 4 {
		return 0
	}
	buf[0] = 4
	buf[1] = DescriptorTypeString
	putUint16(buf[2:], langID)
	return 4
}

func putUint16(buf []byte, v uint16) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
}

func getUint16(buf []byte) uint16 {
	return uint16(buf[0]) | uint16(buf[1])<<8
}
