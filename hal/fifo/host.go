package fifo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ardnew/softportal/hid"
	"github.com/ardnew/softportal/pkg"
)

// Host is the host-side end of a FIFO portal: it sends output reports to the
// device and receives its input reports.
type Host struct {
	deviceDir string

	hostToDeviceWrite *os.File // Host writes output reports
	deviceToHostRead  *os.File // Host reads input reports
	connectionRead    *os.File // Host reads connection signals

	mutex     sync.Mutex
	closeCh   chan struct{}
	closeOnce sync.Once

	readBuf  [headerSize + MaxReportSize]byte
	writeBuf [headerSize + MaxReportSize]byte
}

// Discover scans busDir for device directories and attaches to the first one
// whose report descriptor matches the portal. Returns an error wrapping
// pkg.ErrDeviceNotFound if there is none.
func Discover(busDir string) (*Host, error) {
	entries, err := os.ReadDir(busDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("bus %s: %w", busDir, pkg.ErrDeviceNotFound)
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), deviceDirPrefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	devices := make([]busDevice, 0, len(names))
	for _, name := range names {
		dir := filepath.Join(busDir, name)
		desc, err := os.ReadFile(filepath.Join(dir, fileReportDescriptor))
		if err != nil {
			pkg.LogDebug(pkg.ComponentHAL, "skipping device", "dir", dir, "reason", err)
			continue
		}
		devices = append(devices, busDevice{dir: dir, desc: desc})
	}

	dev, err := hid.Find(devices)
	if err != nil {
		return nil, fmt.Errorf("bus %s: %w", busDir, err)
	}
	return Attach(dev.dir)
}

// busDevice is a device directory advertised on the bus.
type busDevice struct {
	dir  string
	desc []byte
}

func (d busDevice) ReportDescriptor() []byte {
	return d.desc
}

// Attach opens the FIFOs of the device in deviceDir.
func Attach(deviceDir string) (*Host, error) {
	h := &Host{
		deviceDir: deviceDir,
		closeCh:   make(chan struct{}),
	}

	var err error
	if h.hostToDeviceWrite, err = openFIFO(deviceDir, fifoHostToDevice); err != nil {
		h.Close()
		return nil, err
	}
	if h.deviceToHostRead, err = openFIFO(deviceDir, fifoDeviceToHost); err != nil {
		h.Close()
		return nil, err
	}
	if h.connectionRead, err = openFIFO(deviceDir, fifoConnection); err != nil {
		h.Close()
		return nil, err
	}

	pkg.LogDebug(pkg.ComponentHAL, "attached to device", "dir", deviceDir)
	return h, nil
}

// DeviceDir returns the attached device directory.
func (h *Host) DeviceDir() string {
	return h.deviceDir
}

// WaitConnect blocks until the device signals connection.
func (h *Host) WaitConnect(ctx context.Context) error {
	var sig [1]byte
	for {
		if _, err := readFull(ctx, h.closeCh, h.connectionRead, sig[:]); err != nil {
			return err
		}
		if sig[0] == sigConnect {
			return nil
		}
	}
}

// SendReport sends one output report to the device.
func (h *Host) SendReport(ctx context.Context, data []byte) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return writeMessage(ctx, h.closeCh, h.hostToDeviceWrite, h.writeBuf[:], msgReport, data)
}

// ReceiveReport reads one input report from the device into buf.
func (h *Host) ReceiveReport(ctx context.Context, buf []byte) (int, error) {
	return readMessage(ctx, h.closeCh, h.deviceToHostRead, h.readBuf[:], buf)
}

// Close releases the FIFOs. The device directory is left in place.
func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		close(h.closeCh)
	})
	for _, f := range []**os.File{&h.hostToDeviceWrite, &h.deviceToHostRead, &h.connectionRead} {
		if *f != nil {
			(*f).Close()
			*f = nil
		}
	}
	return nil
}
