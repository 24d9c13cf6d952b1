package hal

import (
	"context"
)

// ReportHAL defines the report transport the portal engine runs on.
//
// A ReportHAL is one HID interface with an interrupt IN endpoint (device to
// host) and an interrupt OUT endpoint (host to device) exchanging fixed-size
// reports. Enumeration and descriptor handling happen below this interface.
//
// Read and write failures that may succeed on a later attempt should wrap
// pkg.ErrTransport (or pkg.ErrTimeout) so callers can retry them.
type ReportHAL interface {
	// Init prepares the transport (creates endpoints, opens files, ...).
	// The context can be used to cancel initialization.
	Init(ctx context.Context) error

	// Start attaches to the bus. After Start returns, the device should be
	// visible to the host.
	Start() error

	// Stop detaches from the bus and releases all resources.
	Stop() error

	// ReportDescriptor returns the HID report descriptor the transport
	// advertises.
	ReportDescriptor() []byte

	// ReadReport reads one output report sent by the host into buf.
	// Blocks until a report arrives or the context is done.
	// Returns the number of bytes read.
	ReadReport(ctx context.Context, buf []byte) (int, error)

	// WriteReport sends one input report to the host.
	// Blocks until the report is queued or the context is done.
	WriteReport(ctx context.Context, data []byte) error

	// IsConnected returns true if a host is attached.
	IsConnected() bool

	// WaitConnect blocks until a host attaches or the context is done.
	WaitConnect(ctx context.Context) error
}
