package pkg

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"endpoint config", ErrEndpointConfig, true},
		{"hardware fault", ErrHardwareFault, true},
		{"wrapped config", fmt.Errorf("ep1: %w", ErrEndpointConfig), true},
		{"wrapped fault", fmt.Errorf("ep0 byte count: %w", ErrHardwareFault), true},
		{"stall", ErrStall, false},
		{"restarted", ErrTransferRestarted, false},
		{"timeout", ErrTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSentinelsDistinct(t *testing.T) {
	sentinels := []error{
		ErrStall, ErrTimeout, ErrTransferRestarted, ErrRequestNotHandled,
		ErrInvalidEndpoint, ErrNotConfigured,
		ErrSetupPacketTooShort, ErrEndpointConfig, ErrHardwareFault,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
