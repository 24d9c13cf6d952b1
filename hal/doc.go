// Package hal defines the report transport interface for the portal engine.
//
// The portal exchanges fixed 32-byte HID reports with its host. Everything
// below that exchange (USB enumeration, descriptors, endpoint plumbing) is
// the transport's concern; the engine only needs to read one output report
// at a time and send one input report in reply.
//
// # Interface Overview
//
// The [ReportHAL] interface covers:
//
//   - Initialization and lifecycle management
//   - The advertised HID report descriptor, used to locate the portal
//   - Blocking, context-aware report reads and writes
//   - Connection state
//
// # Implementing a HAL
//
//  1. Create a type that implements all [ReportHAL] methods
//  2. Open endpoints in Init() and attach in Start()
//  3. Wrap recoverable I/O failures with pkg.ErrTransport
//
// A FIFO-based HAL for testing and host-side emulation is available in
// [github.com/ardnew/softportal/hal/fifo].
package hal
