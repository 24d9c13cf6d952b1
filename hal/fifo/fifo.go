package fifo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ardnew/softportal/hal"
	"github.com/ardnew/softportal/pkg"
)

// HAL implements hal.ReportHAL using named pipes (FIFOs).
// Each device instance creates a unique subdirectory under the bus directory
// so several emulated portals can share one bus.
type HAL struct {
	// Bus directory (root directory shared with host)
	busDir string

	// Device subdirectory (busDir/device-{uuid}/)
	deviceDir string
	uuid      string

	// Advertised HID report descriptor (stored by reference)
	reportDescriptor []byte

	hostToDeviceRead  *os.File // Device reads output reports from host
	deviceToHostWrite *os.File // Device writes input reports to host
	connectionWrite   *os.File // Device signals connection status

	// State
	connected uint32 // Atomic: 1 = connected, 0 = disconnected

	// Synchronization
	mutex      sync.RWMutex
	readMutex  sync.Mutex
	writeMutex sync.Mutex
	initDone   bool
	connectCh  chan struct{}
	closeCh    chan struct{}
	closeOnce  sync.Once

	// Internal buffers (zero-allocation)
	readBuf  [headerSize + MaxReportSize]byte
	writeBuf [headerSize + MaxReportSize]byte
}

// New creates a new FIFO-based report HAL advertising reportDescriptor.
// The device will create its own subdirectory (device-{uuid}/) inside busDir.
func New(busDir string, reportDescriptor []byte) *HAL {
	return &HAL{
		busDir:           busDir,
		reportDescriptor: reportDescriptor,
		connectCh:        make(chan struct{}, 1),
		closeCh:          make(chan struct{}),
	}
}

// Init creates the device subdirectory, its FIFOs and the report descriptor
// file hosts use for discovery.
func (h *HAL) Init(ctx context.Context) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.initDone {
		return pkg.ErrAlreadyRunning
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h.uuid = uuid.NewString()
	h.deviceDir = filepath.Join(h.busDir, deviceDirPrefix+h.uuid)

	if err := os.MkdirAll(h.deviceDir, 0o755); err != nil {
		return fmt.Errorf("create device dir: %w", err)
	}

	for _, name := range []string{fifoHostToDevice, fifoDeviceToHost, fifoConnection} {
		if err := createFIFO(h.deviceDir, name); err != nil {
			h.cleanup()
			return err
		}
	}

	var err error
	if h.connectionWrite, err = openFIFO(h.deviceDir, fifoConnection); err != nil {
		h.cleanup()
		return err
	}
	if h.deviceToHostWrite, err = openFIFO(h.deviceDir, fifoDeviceToHost); err != nil {
		h.cleanup()
		return err
	}
	if h.hostToDeviceRead, err = openFIFO(h.deviceDir, fifoHostToDevice); err != nil {
		h.cleanup()
		return err
	}

	// Written last: hosts treat its presence as "device ready"
	path := filepath.Join(h.deviceDir, fileReportDescriptor)
	if err := os.WriteFile(path, h.reportDescriptor, 0o644); err != nil {
		h.cleanup()
		return fmt.Errorf("write report descriptor: %w", err)
	}

	h.initDone = true
	pkg.LogInfo(pkg.ComponentHAL, "fifo report HAL initialized",
		"busDir", h.busDir,
		"deviceDir", h.deviceDir,
		"uuid", h.uuid)

	return nil
}

// Start signals connection to the host.
func (h *HAL) Start() error {
	h.mutex.RLock()
	f := h.connectionWrite
	ready := h.initDone
	h.mutex.RUnlock()

	if !ready {
		return pkg.ErrNotConfigured
	}

	if _, err := f.Write([]byte{sigConnect}); err != nil {
		pkg.LogWarn(pkg.ComponentHAL, "failed to signal connection", "error", err)
	}

	atomic.StoreUint32(&h.connected, 1)

	select {
	case h.connectCh <- struct{}{}:
	default:
	}

	pkg.LogInfo(pkg.ComponentHAL, "fifo report HAL started")
	return nil
}

// Stop signals disconnection, closes the FIFOs and removes the device
// directory.
func (h *HAL) Stop() error {
	h.mutex.RLock()
	if h.connectionWrite != nil {
		h.connectionWrite.Write([]byte{sigDisconnect})
	}
	h.mutex.RUnlock()

	atomic.StoreUint32(&h.connected, 0)

	h.closeOnce.Do(func() {
		close(h.closeCh)
	})

	// Wait for in-flight transfers to notice closeCh
	h.readMutex.Lock()
	defer h.readMutex.Unlock()
	h.writeMutex.Lock()
	defer h.writeMutex.Unlock()

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.cleanup()
	h.initDone = false
	pkg.LogInfo(pkg.ComponentHAL, "fifo report HAL stopped")
	return nil
}

// cleanup closes all FIFOs and removes the device directory.
func (h *HAL) cleanup() {
	for _, f := range []**os.File{&h.hostToDeviceRead, &h.deviceToHostWrite, &h.connectionWrite} {
		if *f != nil {
			(*f).Close()
			*f = nil
		}
	}

	if h.deviceDir != "" {
		os.RemoveAll(h.deviceDir)
	}
}

// ReportDescriptor returns the advertised report descriptor.
func (h *HAL) ReportDescriptor() []byte {
	return h.reportDescriptor
}

// ReadReport reads one output report from the host.
func (h *HAL) ReadReport(ctx context.Context, buf []byte) (int, error) {
	h.readMutex.Lock()
	defer h.readMutex.Unlock()

	h.mutex.RLock()
	f := h.hostToDeviceRead
	h.mutex.RUnlock()

	if f == nil {
		return 0, pkg.ErrNotConfigured
	}

	n, err := readMessage(ctx, h.closeCh, f, h.readBuf[:], buf)
	if err != nil {
		return 0, err
	}
	pkg.LogDebug(pkg.ComponentHAL, "report received", "length", n)
	return n, nil
}

// WriteReport sends one input report to the host.
func (h *HAL) WriteReport(ctx context.Context, data []byte) error {
	h.writeMutex.Lock()
	defer h.writeMutex.Unlock()

	h.mutex.RLock()
	f := h.deviceToHostWrite
	h.mutex.RUnlock()

	if f == nil {
		return pkg.ErrNotConfigured
	}

	return writeMessage(ctx, h.closeCh, f, h.writeBuf[:], msgReport, data)
}

// IsConnected returns true once Start has signaled the host.
func (h *HAL) IsConnected() bool {
	return atomic.LoadUint32(&h.connected) == 1
}

// WaitConnect blocks until connected or context is cancelled.
func (h *HAL) WaitConnect(ctx context.Context) error {
	if h.IsConnected() {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.connectCh:
		return nil
	case <-h.closeCh:
		return pkg.ErrCancelled
	}
}

// DeviceDir returns the device subdirectory path.
func (h *HAL) DeviceDir() string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.deviceDir
}

// UUID returns the device's unique identifier.
func (h *HAL) UUID() string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.uuid
}

// Compile-time interface check
var _ hal.ReportHAL = (*HAL)(nil)
