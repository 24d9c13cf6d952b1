package fifo

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardnew/softportal/pkg"
)

// MaxReportSize is the largest report payload carried by one message.
const MaxReportSize = 64

// Message types for the FIFO protocol (shared by device and host ends).
const (
	msgReport = 0x02 // HID report
)

// Header size for messages.
const headerSize = 3 // type (1) + length (2)

// Connection signal bytes (one-way signaling to host).
const (
	sigConnect    = 0x01 // Device connected
	sigDisconnect = 0x00 // Device disconnected
)

// File names inside a device directory.
const (
	fifoHostToDevice     = "host_to_device"
	fifoDeviceToHost     = "device_to_host"
	fifoConnection       = "connection"
	fileReportDescriptor = "report_descriptor"
)

// deviceDirPrefix prefixes every device directory under the bus directory.
const deviceDirPrefix = "device-"

// pollSlice bounds each blocking read so cancellation is noticed promptly.
const pollSlice = 100 * time.Millisecond

// payloadTimeout bounds reading the payload of a message whose header has
// already been consumed. Messages are written with a single write, so the
// payload is normally available immediately.
const payloadTimeout = time.Second

// createFIFO creates a named pipe at dir/name, replacing any existing file.
func createFIFO(dir, name string) error {
	path := filepath.Join(dir, name)

	// Remove existing file if any
	os.Remove(path)

	if err := syscall.Mkfifo(path, 0o666); err != nil {
		return fmt.Errorf("mkfifo %s: %w", name, err)
	}
	return nil
}

// openFIFO opens dir/name read-write and non-blocking so neither end blocks
// waiting for its peer.
func openFIFO(dir, name string) (*os.File, error) {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_RDWR|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// readFull reads exactly len(buf) bytes from f, retrying on deadline
// expiry until ctx is done or done is closed.
func readFull(ctx context.Context, done <-chan struct{}, f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-done:
			return total, pkg.ErrCancelled
		default:
		}

		f.SetReadDeadline(time.Now().Add(pollSlice))
		n, err := f.Read(buf[total:])
		if n > 0 {
			total += n
		}
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			return total, fmt.Errorf("%w: %w", pkg.ErrTransport, err)
		}
	}
	return total, nil
}

// writeMessage sends [type, len_lo, len_hi, data...] with a single write.
// scratch must hold headerSize+MaxReportSize bytes.
func writeMessage(ctx context.Context, done <-chan struct{}, f *os.File, scratch []byte, msgType byte, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return pkg.ErrCancelled
	default:
	}

	if len(data) > MaxReportSize {
		return fmt.Errorf("report of %d bytes: %w", len(data), pkg.ErrBufferTooSmall)
	}

	scratch[0] = msgType
	binary.LittleEndian.PutUint16(scratch[1:headerSize], uint16(len(data)))
	copy(scratch[headerSize:], data)
	total := headerSize + len(data)

	if deadline, ok := ctx.Deadline(); ok {
		f.SetWriteDeadline(deadline)
	} else {
		f.SetWriteDeadline(time.Time{})
	}

	written := 0
	for written < total {
		m, err := f.Write(scratch[written:total])
		if m > 0 {
			written += m
		}
		if err != nil {
			if os.IsTimeout(err) {
				return fmt.Errorf("%w: write report", pkg.ErrTimeout)
			}
			return fmt.Errorf("%w: %w", pkg.ErrTransport, err)
		}
	}
	return nil
}

// readMessage reads one report message into buf. Payload bytes beyond
// len(buf) are consumed and dropped so the stream stays aligned.
// scratch must hold headerSize+MaxReportSize bytes.
func readMessage(ctx context.Context, done <-chan struct{}, f *os.File, scratch []byte, buf []byte) (int, error) {
	header := scratch[:headerSize]
	if _, err := readFull(ctx, done, f, header); err != nil {
		return 0, err
	}

	msgType := header[0]
	length := int(binary.LittleEndian.Uint16(header[1:headerSize]))
	if length > MaxReportSize {
		return 0, fmt.Errorf("%w: message length %d", pkg.ErrTransport, length)
	}

	// The header is gone; finish the message regardless of ctx.
	payloadCtx, cancel := context.WithTimeout(context.Background(), payloadTimeout)
	defer cancel()

	payload := scratch[headerSize : headerSize+length]
	if _, err := readFull(payloadCtx, done, f, payload); err != nil {
		return 0, err
	}

	if msgType != msgReport {
		pkg.LogWarn(pkg.ComponentHAL, "unknown message type", "type", msgType)
		return 0, fmt.Errorf("%w: message type 0x%02X", pkg.ErrTransport, msgType)
	}
	return copy(buf, payload), nil
}
