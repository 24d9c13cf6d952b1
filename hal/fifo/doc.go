// Package fifo implements a FIFO-based report HAL using named pipes.
//
// This HAL is intended for emulation and testing. It lets a host-side
// process exchange HID reports with an emulated portal through named pipes
// in the filesystem, without USB hardware.
//
// # Architecture
//
// Each device instance creates a unique subdirectory under a shared bus
// directory:
//
//	/tmp/portal-bus/                 # Bus directory (shared with host)
//	└── device-{uuid}/               # Device subdirectory (unique per device)
//	    ├── connection               # Connection signaling (device → host)
//	    ├── host_to_device           # Output reports from host
//	    ├── device_to_host           # Input reports to host
//	    └── report_descriptor        # Regular file: HID report descriptor
//
// Every report travels as one message [type, len_lo, len_hi, payload...]
// written with a single write, so readers never see half a report.
//
// The device signals connection and disconnection via the connection FIFO:
//   - 0x01: Device connected and ready
//   - 0x00: Device disconnecting
//
// # Usage
//
//	// Device side
//	h := fifo.New("/tmp/portal-bus", hid.PortalReportDescriptor)
//	p, _ := portal.New(cfg, h, store)
//	go p.Run(ctx)
//
//	// Host side
//	host, _ := fifo.Discover("/tmp/portal-bus")
//	host.SendReport(ctx, report)
//	n, _ := host.ReceiveReport(ctx, buf)
package fifo
