package device

import (
	"context"
	"sync"
	"time"

	"github.com/quartel/ft232emu/device/hal"
	"github.com/quartel/ft232emu/pkg"
)

// DefaultPollInterval is how often Run services the controller.
const DefaultPollInterval = 100 * time.Microsecond

// BulkBridge is the data plane serviced from the dispatch loop after
// control traffic.
type BulkBridge interface {
	// ServiceReceive drains one pending OUT packet, if any.
	ServiceReceive()

	// ServiceTransmit sends one pending IN packet, if any.
	ServiceTransmit()
}

// Stack ties the connection tracker, the control engine and the bulk
// bridge together behind a single polling loop.
type Stack struct {
	ctrl     hal.Controller
	conn     *Connection
	engine   *Engine
	conf     *Configurator
	bridge   BulkBridge
	interval time.Duration

	mutex   sync.Mutex
	running bool
}

// NewStack creates a dispatch loop over the given engine and endpoint
// configurator.
func NewStack(ctrl hal.Controller, engine *Engine, conf *Configurator) *Stack {
	return &Stack{
		ctrl:     ctrl,
		conn:     NewConnection(ctrl),
		engine:   engine,
		conf:     conf,
		interval: DefaultPollInterval,
	}
}

// SetBridge installs the bulk data bridge.
func (s *Stack) SetBridge(b BulkBridge) { s.bridge = b }

// SetPollInterval overrides the Run polling period.
func (s *Stack) SetPollInterval(d time.Duration) { s.interval = d }

// Connection returns the stack's connection tracker.
func (s *Stack) Connection() *Connection { return s.conn }

// PollOnce services one iteration of the dispatch loop: bus reset
// first, then connection state, then one control transfer, then the
// bulk bridge. A non-nil return is fatal and the loop must stop.
func (s *Stack) PollOnce() error {
	// Reset first: it reconfigures EP0 and abandons any transfer in
	// flight, so nothing below may run on pre-reset state.
	if s.ctrl.TakeResetEvent() {
		pkg.LogInfo(pkg.ComponentStack, "bus reset")
		if err := s.conf.ConfigureControl(); err != nil {
			return err
		}
		s.engine.Reset()
	}

	s.conn.Poll()

	if s.ctrl.SetupReceived(0) {
		if err := s.engine.Service(); err != nil {
			return err
		}
	}

	if s.bridge != nil {
		s.bridge.ServiceReceive()
		s.bridge.ServiceTransmit()
	}
	return nil
}

// Run polls the controller until ctx is cancelled or a fatal error
// halts the stack. The control endpoint is configured once up front so
// the device can enumerate as soon as a host appears.
func (s *Stack) Run(ctx context.Context) error {
	s.mutex.Lock()
	if s.running {
		s.mutex.Unlock()
		return pkg.ErrAlreadyRunning
	}
	s.running = true
	s.mutex.Unlock()
	defer func() {
		s.mutex.Lock()
		s.running = false
		s.mutex.Unlock()
	}()

	if err := s.conf.ConfigureControl(); err != nil {
		return err
	}
	pkg.LogInfo(pkg.ComponentStack, "stack running", "pollInterval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			pkg.LogInfo(pkg.ComponentStack, "stack stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.PollOnce(); err != nil {
				pkg.LogError(pkg.ComponentStack, "fatal fault, halting", "error", err)
				return err
			}
		}
	}
}
