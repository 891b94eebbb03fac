package ftdi

// USB identity of the emulated FT232 bridge.
const (
	VendorID      uint16 = 0x0403 // Future Technology Devices International
	ProductID     uint16 = 0x6001 // FT232
	DeviceVersion uint16 = 0x0400 // BCD
	USBVersion    uint16 = 0x0110 // USB 1.1
)

// Default identity strings. On the real chip the alphanumeric serial
// number lives in EEPROM.
const (
	DefaultProduct = "QuartelRCBB"
	DefaultSerial  = "FTP1W65N"
)

// Endpoint layout: a 64-byte control endpoint plus one bulk endpoint
// per direction. The real FT232BM reports an 8-byte EP0; 64 keeps
// enumeration to a single packet per descriptor.
const (
	ControlEndpoint uint8 = 0
	BulkInEndpoint  uint8 = 1
	BulkOutEndpoint uint8 = 2

	ControlSize    = 64
	BulkPacketSize = 64
)

// SIO vendor request codes, as issued by the ftdi_sio host driver.
const (
	RequestReset           uint8 = 0x00
	RequestModemCtrl       uint8 = 0x01
	RequestSetFlowCtrl     uint8 = 0x02
	RequestSetBaudRate     uint8 = 0x03
	RequestSetData         uint8 = 0x04
	RequestGetModemStatus  uint8 = 0x05
	RequestSetEventChar    uint8 = 0x06
	RequestSetErrorChar    uint8 = 0x07
	RequestSetLatencyTimer uint8 = 0x09
	RequestGetLatencyTimer uint8 = 0x0A
	RequestReadEEPROM      uint8 = 0x90
	RequestWriteEEPROM     uint8 = 0x91
	RequestEraseEEPROM     uint8 = 0x92
)

// DefaultLatencyTimer is the chip's power-on latency timer, 16 ms.
const DefaultLatencyTimer byte = 0x10

// Every bulk IN packet starts with two status bytes.
const (
	ModemStatusByte byte = 0x80
	LineStatusByte  byte = 0x00
)

// TriggerByte requests the greeting; every other received byte is
// echoed back.
const TriggerByte byte = 'a'

// Greeting is the reply to the trigger byte.
const Greeting = "Hello world!\r\n"
