package device

import (
	"fmt"

	"github.com/quartel/ft232emu/device/hal"
	"github.com/quartel/ft232emu/pkg"
)

// Configurator applies the device's endpoint layout to the controller.
// It holds the control endpoint configuration and the data endpoint
// configurations, and knows the ordering rule the peripheral imposes:
// an endpoint must be deconfigured before it can be configured again.
type Configurator struct {
	ctrl    hal.Controller
	control hal.EndpointConfig
	data    []hal.EndpointConfig
}

// NewConfigurator creates a configurator for the given endpoint layout.
// The data endpoints are configured in the order given.
func NewConfigurator(ctrl hal.Controller, control hal.EndpointConfig, data ...hal.EndpointConfig) *Configurator {
	return &Configurator{ctrl: ctrl, control: control, data: data}
}

// ControlSize returns the control endpoint FIFO size in bytes.
func (c *Configurator) ControlSize() int {
	return int(c.control.MaxPacketSize)
}

// ConfigureControl configures the control endpoint. Called after every
// bus reset, before any control traffic is serviced.
func (c *Configurator) ConfigureControl() error {
	return c.apply(c.control)
}

// ConfigureData configures the data endpoints. Called when the host
// selects a configuration.
func (c *Configurator) ConfigureData() error {
	for i := range c.data {
		if err := c.apply(c.data[i]); err != nil {
			return err
		}
	}
	return nil
}

// apply deconfigures then configures one endpoint and verifies the
// peripheral accepted the allocation. Any failure is fatal: the device
// cannot communicate on a misconfigured endpoint.
func (c *Configurator) apply(cfg hal.EndpointConfig) error {
	if err := c.ctrl.DeconfigureEndpoint(cfg.Number); err != nil {
		return fmt.Errorf("deconfigure endpoint %d: %v: %w", cfg.Number, err, pkg.ErrEndpointConfig)
	}
	if err := c.ctrl.ConfigureEndpoint(cfg); err != nil {
		return fmt.Errorf("configure endpoint %d: %v: %w", cfg.Number, err, pkg.ErrEndpointConfig)
	}
	if !c.ctrl.EndpointConfigured(cfg.Number) {
		return fmt.Errorf("endpoint %d not accepted: %w", cfg.Number, pkg.ErrEndpointConfig)
	}
	pkg.LogDebug(pkg.ComponentEndpoint, "endpoint configured",
		"endpoint", cfg.Number,
		"type", cfg.Type.String(),
		"direction", cfg.Direction.String(),
		"maxPacketSize", cfg.MaxPacketSize,
	)
	return nil
}
