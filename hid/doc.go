// Package hid describes the portal's USB HID interface.
//
// The portal enumerates as a single vendor-defined HID interface (usage page
// 0xFF00, usage 0x01) exchanging fixed 32-byte input and output reports.
// This package carries that identity, the report descriptor advertised to
// the host, and a small report descriptor walker used to locate the portal
// endpoint among the HID devices a transport exposes:
//
//	dev, err := hid.Find(devices)
//	if errors.Is(err, pkg.ErrDeviceNotFound) {
//	    // fatal: the engine must not start
//	}
package hid
