package device

import "github.com/quartel/ft232emu/device/hal"

// Standard request codes (USB 2.0 Spec Table 9-4).
const (
	RequestGetStatus        uint8 = 0x00
	RequestClearFeature     uint8 = 0x01
	RequestSetFeature       uint8 = 0x03
	RequestSetAddress       uint8 = 0x05
	RequestGetDescriptor    uint8 = 0x06
	RequestSetDescriptor    uint8 = 0x07
	RequestGetConfiguration uint8 = 0x08
	RequestSetConfiguration uint8 = 0x09
	RequestGetInterface     uint8 = 0x0A
	RequestSetInterface     uint8 = 0x0B
	RequestSynchFrame       uint8 = 0x0C
)

// descriptorType returns the descriptor type from a Get-Descriptor wValue.
func descriptorType(s *hal.SetupPacket) uint8 { return uint8(s.Value >> 8) }

// descriptorIndex returns the descriptor index from a Get-Descriptor wValue.
func descriptorIndex(s *hal.SetupPacket) uint8 { return uint8(s.Value) }

// Host-side setup builders. The device never constructs these; they
// exist for the simulated host in tests and examples.

// GetDescriptorSetup builds a standard Get-Descriptor request.
func GetDescriptorSetup(descType, index uint8, length uint16) hal.SetupPacket {
	return hal.SetupPacket{
		RequestType: hal.RequestDirectionMask,
		Request:     RequestGetDescriptor,
		Value:       uint16(descType)<<8 | uint16(index),
		Length:      length,
	}
}

// SetAddressSetup builds a standard Set-Address request.
func SetAddressSetup(address uint8) hal.SetupPacket {
	return hal.SetupPacket{
		Request: RequestSetAddress,
		Value:   uint16(address),
	}
}

// SetConfigurationSetup builds a standard Set-Configuration request.
func SetConfigurationSetup(value uint8) hal.SetupPacket {
	return hal.SetupPacket{
		Request: RequestSetConfiguration,
		Value:   uint16(value),
	}
}

// GetConfigurationSetup builds a standard Get-Configuration request.
func GetConfigurationSetup() hal.SetupPacket {
	return hal.SetupPacket{
		RequestType: hal.RequestDirectionMask,
		Request:     RequestGetConfiguration,
		Length:      1,
	}
}

// GetStatusSetup builds a standard Get-Status request for the given
// recipient.
func GetStatusSetup(recipient uint8, index uint16) hal.SetupPacket {
	return hal.SetupPacket{
		RequestType: hal.RequestDirectionMask | recipient,
		Request:     RequestGetStatus,
		Index:       index,
		Length:      2,
	}
}

// VendorInSetup builds a device-to-host vendor request.
func VendorInSetup(request uint8, value, index, length uint16) hal.SetupPacket {
	return hal.SetupPacket{
		RequestType: hal.RequestDirectionMask | hal.RequestTypeVendor,
		Request:     request,
		Value:       value,
		Index:       index,
		Length:      length,
	}
}

// VendorOutSetup builds a host-to-device vendor request.
func VendorOutSetup(request uint8, value, index uint16) hal.SetupPacket {
	return hal.SetupPacket{
		RequestType: hal.RequestTypeVendor,
		Request:     request,
		Value:       value,
		Index:       index,
	}
}
