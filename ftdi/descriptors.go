package ftdi

import "github.com/quartel/ft232emu/device"

// String descriptor indices. Index zero is the language table per the
// USB spec; the device descriptor reports no manufacturer string.
const (
	LanguageIndex uint8 = 0
	ProductIndex  uint8 = 1
	SerialIndex   uint8 = 2
)

// configBundleSize is the configuration descriptor together with its
// interface and two endpoint descriptors, returned as one blob.
const configBundleSize = device.ConfigDescriptorSize +
	device.InterfaceDescriptorSize +
	2*device.EndpointDescriptorSize

// Identity selects the strings the device reports to the host.
type Identity struct {
	Product string
	Serial  string
}

// DefaultIdentity returns the identity the firmware ships with.
func DefaultIdentity() Identity {
	return Identity{Product: DefaultProduct, Serial: DefaultSerial}
}

// Store holds the descriptor tables, marshalled once at construction.
type Store struct {
	device  []byte
	config  []byte
	strings [][]byte
}

// NewStore builds the descriptor tables for the given identity.
func NewStore(id Identity) *Store {
	s := &Store{}

	dev := device.DeviceDescriptor{
		USBVersion:        USBVersion,
		MaxPacketSize0:    ControlSize,
		VendorID:          VendorID,
		ProductID:         ProductID,
		DeviceVersion:     DeviceVersion,
		ProductIndex:      ProductIndex,
		SerialNumberIndex: SerialIndex,
		NumConfigurations: 1,
	}
	s.device = make([]byte, device.DeviceDescriptorSize)
	dev.MarshalTo(s.device)

	s.config = make([]byte, configBundleSize)
	n := 0
	conf := device.ConfigDescriptor{
		TotalLength:        configBundleSize,
		NumInterfaces:      1,
		ConfigurationValue: 1,
		Attributes:         0x80, // bus powered
		MaxPower:           20 / 2,
	}
	n += conf.MarshalTo(s.config[n:])
	iface := device.InterfaceDescriptor{
		NumEndpoints:      2,
		InterfaceClass:    0xFF, // vendor specific
		InterfaceSubClass: 0xFF,
		InterfaceProtocol: 0xFF,
	}
	n += iface.MarshalTo(s.config[n:])
	in := device.EndpointDescriptor{
		Address:       BulkInEndpoint | 0x80,
		Attributes:    0x02, // bulk
		MaxPacketSize: BulkPacketSize,
	}
	n += in.MarshalTo(s.config[n:])
	out := device.EndpointDescriptor{
		Address:       BulkOutEndpoint,
		Attributes:    0x02,
		MaxPacketSize: BulkPacketSize,
	}
	n += out.MarshalTo(s.config[n:])
	s.config = s.config[:n]

	lang := make([]byte, 4)
	device.LanguageDescriptorTo(lang, device.LanguageEnglishUS)
	s.strings = append(s.strings, lang)
	for _, str := range []string{id.Product, id.Serial} {
		buf := make([]byte, 255)
		s.strings = append(s.strings, buf[:device.StringDescriptorTo(buf, str)])
	}
	return s
}

// Descriptor resolves a Get-Descriptor request against the tables.
func (s *Store) Descriptor(descType, index uint8) ([]byte, bool) {
	switch descType {
	case device.DescriptorTypeDevice:
		if index != 0 {
			return nil, false
		}
		return s.device, true
	case device.DescriptorTypeConfig:
		if index != 0 {
			return nil, false
		}
		return s.config, true
	case device.DescriptorTypeString:
		if int(index) >= len(s.strings) {
			return nil, false
		}
		return s.strings[index], true
	}
	return nil, false
}

var _ device.DescriptorSource = (*Store)(nil)
