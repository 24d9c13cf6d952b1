package pkg

import "errors"

// Portal errors.
var (
	// ErrDeviceNotFound indicates no HID endpoint with the portal's usage
	// page and usage is available. Fatal at startup.
	ErrDeviceNotFound = errors.New("portal HID device not found")

	// ErrMalformedReport indicates an inbound report shorter than the frame size.
	ErrMalformedReport = errors.New("malformed report")

	// ErrBlockOutOfRange indicates a block index beyond the toy image.
	ErrBlockOutOfRange = errors.New("block index out of range")

	// ErrToyNotFound indicates the backing data for a toy does not exist.
	ErrToyNotFound = errors.New("toy data not found")

	// ErrToyCorrupt indicates backing data that is not a whole number of blocks.
	ErrToyCorrupt = errors.New("toy data corrupt")

	// ErrInvalidSlot indicates a slot index outside the configured range.
	ErrInvalidSlot = errors.New("invalid slot")

	// ErrTransport indicates a transient report transport failure.
	ErrTransport = errors.New("transport I/O error")

	// ErrTimeout indicates a transport operation timed out.
	ErrTimeout = errors.New("transport timeout")

	// ErrCancelled indicates a cancelled operation.
	ErrCancelled = errors.New("operation cancelled")

	// ErrBusy indicates the resource is busy.
	ErrBusy = errors.New("resource busy")

	// ErrDescriptorTooShort indicates a truncated HID report descriptor item.
	ErrDescriptorTooShort = errors.New("descriptor too short")

	// ErrBufferTooSmall indicates the provided buffer is too small.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrNotConfigured indicates the component has not been initialized.
	ErrNotConfigured = errors.New("not configured")

	// ErrAlreadyRunning indicates the component is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// IsTransient reports whether err is a recoverable transport condition that
// should be retried on the next poll.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrTimeout)
}
