// Package ftdi emulates an FTDI FT232 USB-to-serial bridge on top of
// the device package: the descriptor tables the chip reports, the SIO
// vendor control protocol, and a bulk data plane that greets or echoes
// instead of driving a UART.
//
// The emulation is deliberately shallow on the serial side. Port
// settings are accepted and ignored, the EEPROM reads as blank, and
// every bulk IN packet carries the chip's two-byte status prefix so a
// stock ftdi_sio host driver stays happy.
package ftdi
