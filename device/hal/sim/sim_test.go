package sim

import (
	"bytes"
	"errors"
	"testing"

	"github.com/quartel/ft232emu/device/hal"
	"github.com/quartel/ft232emu/pkg"
)

func controlConfig() hal.EndpointConfig {
	return hal.EndpointConfig{
		Number:        0,
		Type:          hal.TransferControl,
		MaxPacketSize: 64,
		Banks:         hal.SingleBank,
	}
}

func TestConfigureEndpointRejectsLive(t *testing.T) {
	p := New()
	if err := p.ConfigureEndpoint(controlConfig()); err != nil {
		t.Fatalf("ConfigureEndpoint: %v", err)
	}
	if !p.EndpointConfigured(0) {
		t.Fatal("endpoint not configured")
	}

	err := p.ConfigureEndpoint(controlConfig())
	if !errors.Is(err, pkg.ErrEndpointConfig) {
		t.Fatalf("reconfigure error = %v, want ErrEndpointConfig", err)
	}
	if p.EndpointConfigured(0) {
		t.Error("configured flag survived rejected reconfigure")
	}

	if err := p.DeconfigureEndpoint(0); err != nil {
		t.Fatalf("DeconfigureEndpoint: %v", err)
	}
	if err := p.ConfigureEndpoint(controlConfig()); err != nil {
		t.Fatalf("configure after deconfigure: %v", err)
	}
}

func TestConfigureEndpointRejectsBadSize(t *testing.T) {
	p := New()
	cfg := controlConfig()
	cfg.MaxPacketSize = 0
	if err := p.ConfigureEndpoint(cfg); !errors.Is(err, pkg.ErrEndpointConfig) {
		t.Errorf("zero size error = %v, want ErrEndpointConfig", err)
	}
	cfg.MaxPacketSize = MaxFIFOSize + 1
	if err := p.ConfigureEndpoint(cfg); !errors.Is(err, pkg.ErrEndpointConfig) {
		t.Errorf("oversize error = %v, want ErrEndpointConfig", err)
	}
}

func TestSetupClearsStall(t *testing.T) {
	p := New()
	if err := p.ConfigureEndpoint(controlConfig()); err != nil {
		t.Fatal(err)
	}
	p.Stall(0)
	if !p.IsStalled(0) {
		t.Fatal("Stall did not take")
	}
	p.SubmitSetup(hal.SetupPacket{RequestType: 0x80, Request: 0x06, Length: 18})
	if p.IsStalled(0) {
		t.Error("stall survived new SETUP")
	}
	if !p.SetupReceived(0) {
		t.Error("setup not pending after SubmitSetup")
	}
}

func TestSetupFIFORead(t *testing.T) {
	p := New()
	if err := p.ConfigureEndpoint(controlConfig()); err != nil {
		t.Fatal(err)
	}
	want := hal.SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0100, Length: 18}
	p.SubmitSetup(want)

	if got := p.Available(0); got != hal.SetupPacketSize {
		t.Fatalf("Available = %d, want %d", got, hal.SetupPacketSize)
	}
	var raw [hal.SetupPacketSize]byte
	p.ReadFIFO(0, raw[:])
	p.AckSetup(0)

	var got hal.SetupPacket
	if !hal.ParseSetupPacket(raw[:], &got) {
		t.Fatal("ParseSetupPacket failed")
	}
	if got != want {
		t.Errorf("setup = %+v, want %+v", got, want)
	}
	if p.SetupReceived(0) {
		t.Error("setup still pending after AckSetup")
	}
}

func TestCollectInOrder(t *testing.T) {
	p := New()
	cfg := hal.EndpointConfig{
		Number:        1,
		Direction:     hal.DirectionIn,
		Type:          hal.TransferBulk,
		MaxPacketSize: 64,
		Banks:         hal.SingleBank,
	}
	if err := p.ConfigureEndpoint(cfg); err != nil {
		t.Fatal(err)
	}
	p.WriteFIFO(1, []byte("one"))
	p.ReleaseFIFO(1)
	p.WriteFIFO(1, []byte("two"))
	p.ReleaseFIFO(1)

	first, ok := p.CollectIn(1)
	if !ok || !bytes.Equal(first, []byte("one")) {
		t.Errorf("first packet = %q %v, want \"one\" true", first, ok)
	}
	second, ok := p.CollectIn(1)
	if !ok || !bytes.Equal(second, []byte("two")) {
		t.Errorf("second packet = %q %v, want \"two\" true", second, ok)
	}
	if _, ok := p.CollectIn(1); ok {
		t.Error("CollectIn returned a third packet")
	}
}

func TestAutoStatusOnShortPacket(t *testing.T) {
	p := New()
	if err := p.ConfigureEndpoint(controlConfig()); err != nil {
		t.Fatal(err)
	}
	p.SubmitSetup(hal.SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0100, Length: 64})
	p.AckSetup(0)

	p.WriteFIFO(0, []byte{1, 2, 3})
	p.CompleteIn(0)

	if !p.OutReceived(0) {
		t.Error("no status OUT after short data packet")
	}
	if got := p.ControlData(); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("ControlData = %v, want [1 2 3]", got)
	}
}

func TestAutoStatusImmediateForNoDataRead(t *testing.T) {
	p := New()
	if err := p.ConfigureEndpoint(controlConfig()); err != nil {
		t.Fatal(err)
	}
	p.SubmitSetup(hal.SetupPacket{RequestType: 0x80, Request: 0x01, Length: 0})
	if !p.OutReceived(0) {
		t.Error("no status OUT pending for zero-length control read")
	}
}

func TestBusResetFillsMailboxOnce(t *testing.T) {
	p := New()
	p.PlugIn()
	if err := p.Attach(); err != nil {
		t.Fatal(err)
	}
	p.EnableResetEvents(true)
	p.BusReset()
	if !p.TakeResetEvent() {
		t.Fatal("reset event not delivered")
	}
	if p.TakeResetEvent() {
		t.Error("reset event delivered twice")
	}
	if p.Address() != 0 || p.AddressEnabled() {
		t.Error("address survived bus reset")
	}
}

func TestAttachRequiresPower(t *testing.T) {
	p := New()
	if err := p.Attach(); !errors.Is(err, pkg.ErrDetached) {
		t.Errorf("Attach without VBUS = %v, want ErrDetached", err)
	}
	p.PlugIn()
	if err := p.Attach(); err != nil {
		t.Errorf("Attach with VBUS: %v", err)
	}
	if !p.Attached() {
		t.Error("not attached")
	}
}
