package ftdi

import (
	"github.com/quartel/ft232emu/device"
	"github.com/quartel/ft232emu/device/hal"
)

// ControlEndpointConfig returns the control endpoint configuration.
func ControlEndpointConfig() hal.EndpointConfig {
	return hal.EndpointConfig{
		Number:        ControlEndpoint,
		Type:          hal.TransferControl,
		MaxPacketSize: ControlSize,
		Banks:         hal.SingleBank,
	}
}

// BulkEndpointConfigs returns the bulk endpoint configurations, IN
// before OUT, matching the order they appear in the configuration
// descriptor.
func BulkEndpointConfigs() []hal.EndpointConfig {
	return []hal.EndpointConfig{
		{
			Number:        BulkInEndpoint,
			Direction:     hal.DirectionIn,
			Type:          hal.TransferBulk,
			MaxPacketSize: BulkPacketSize,
			Banks:         hal.SingleBank,
		},
		{
			Number:        BulkOutEndpoint,
			Direction:     hal.DirectionOut,
			Type:          hal.TransferBulk,
			MaxPacketSize: BulkPacketSize,
			Banks:         hal.SingleBank,
		},
	}
}

// Emulator bundles the assembled device stack with the parts a caller
// may want to poke at.
type Emulator struct {
	Stack  *device.Stack
	Engine *device.Engine
	Bridge *Bridge
	Store  *Store
}

// New assembles an FT232 emulator on the given controller. Run the
// returned stack to bring the device up.
func New(ctrl hal.Controller, id Identity) *Emulator {
	store := NewStore(id)
	conf := device.NewConfigurator(ctrl, ControlEndpointConfig(), BulkEndpointConfigs()...)
	engine := device.NewEngine(ctrl, conf, store)
	engine.SetVendorHandler(Vendor{})
	bridge := NewBridge(ctrl)
	stack := device.NewStack(ctrl, engine, conf)
	stack.SetBridge(bridge)
	return &Emulator{Stack: stack, Engine: engine, Bridge: bridge, Store: store}
}
