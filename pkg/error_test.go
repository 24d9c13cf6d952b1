package pkg

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	// Verify all sentinel errors are distinct
	errs := []error{
		ErrDeviceNotFound,
		ErrMalformedReport,
		ErrBlockOutOfRange,
		ErrToyNotFound,
		ErrToyCorrupt,
		ErrInvalidSlot,
		ErrTransport,
		ErrTimeout,
		ErrCancelled,
		ErrBusy,
		ErrDescriptorTooShort,
		ErrBufferTooSmall,
		ErrNotConfigured,
		ErrAlreadyRunning,
		ErrInvalidParameter,
	}

	for i, err1 := range errs {
		if err1 == nil {
			t.Errorf("error %d is nil", i)
			continue
		}
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("error %d and %d are equal", i, j)
			}
		}
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", ErrTransport, true},
		{"wrapped transport", fmt.Errorf("read report: %w", ErrTransport), true},
		{"timeout", ErrTimeout, true},
		{"device not found", ErrDeviceNotFound, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
