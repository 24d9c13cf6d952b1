package hid

import (
	"fmt"

	"github.com/ardnew/softportal/pkg"
)

// PortalReportDescriptor declares one vendor-defined application collection
// with 32-byte input and output reports.
var PortalReportDescriptor = []byte{
	0x06, 0x00, 0xFF, // Usage Page (Vendor Defined 0xFF00)
	0x09, 0x01, // Usage (0x01)
	0xA1, 0x01, // Collection (Application)
	0x19, 0x01, //   Usage Minimum (0x01)
	0x29, 0x40, //   Usage Maximum (0x40)
	0x15, 0x00, //   Logical Minimum (0)
	0x26, 0xFF, 0x00, //   Logical Maximum (255)
	0x75, 0x08, //   Report Size (8)
	0x95, 0x20, //   Report Count (32)
	0x81, 0x00, //   Input (Data, Array, Absolute)
	0x19, 0x01, //   Usage Minimum (0x01)
	0x29, 0x40, //   Usage Maximum (0x40)
	0x91, 0x00, //   Output (Data, Array, Absolute)
	0xC0, // End Collection
}

// ReportUsage summarizes the top-level collection of a report descriptor.
type ReportUsage struct {
	UsagePage   uint16
	Usage       uint16
	InputBytes  int // Total size of input reports
	OutputBytes int // Total size of output reports
}

// ParseUsage walks the short items of a report descriptor and returns the
// usage of its first top-level collection together with the accumulated
// input and output report sizes.
func ParseUsage(desc []byte) (ReportUsage, error) {
	var (
		u         ReportUsage
		page      uint16
		usage     uint16
		haveUsage bool
		found     bool
		depth     int
		size      uint32
		count     uint32
		inBits    uint32
		outBits   uint32
	)

	for i := 0; i < len(desc); {
		prefix := desc[i]
		if prefix == longItemPrefix {
			if i+1 >= len(desc) {
				return ReportUsage{}, pkg.ErrDescriptorTooShort
			}
			i += 3 + int(desc[i+1])
			if i > len(desc) {
				return ReportUsage{}, pkg.ErrDescriptorTooShort
			}
			continue
		}

		n := int(prefix & 0x03)
		if n == 3 {
			n = 4
		}
		if i+1+n > len(desc) {
			return ReportUsage{}, fmt.Errorf("item at offset %d: %w", i, pkg.ErrDescriptorTooShort)
		}
		var value uint32
		for b := 0; b < n; b++ {
			value |= uint32(desc[i+1+b]) << (8 * b)
		}
		typ := (prefix >> 2) & 0x03
		tag := prefix >> 4
		i += 1 + n

		switch typ {
		case itemTypeGlobal:
			switch tag {
			case tagUsagePage:
				page = uint16(value)
			case tagReportSize:
				size = value
			case tagReportCount:
				count = value
			}

		case itemTypeLocal:
			if tag == tagUsage && !haveUsage {
				usage = uint16(value)
				if n == 4 {
					// Extended usage carries its own page
					page = uint16(value >> 16)
				}
				haveUsage = true
			}

		case itemTypeMain:
			switch tag {
			case tagCollection:
				if depth == 0 && !found && haveUsage {
					u.UsagePage, u.Usage = page, usage
					found = true
				}
				depth++
			case tagEndCollection:
				if depth > 0 {
					depth--
				}
			case tagInput:
				inBits += size * count
			case tagOutput:
				outBits += size * count
			}
			// Local items apply only to the next main item
			haveUsage = false
		}
	}

	if !found {
		return ReportUsage{}, fmt.Errorf("no top-level collection: %w", pkg.ErrDeviceNotFound)
	}
	u.InputBytes = int(inBits / 8)
	u.OutputBytes = int(outBits / 8)
	return u, nil
}

// Match reports whether desc describes a portal: vendor usage page 0xFF00,
// usage 0x01 and 32-byte input and output reports. Any mismatch yields an
// error wrapping pkg.ErrDeviceNotFound.
func Match(desc []byte) error {
	u, err := ParseUsage(desc)
	if err != nil {
		return fmt.Errorf("%w: %w", pkg.ErrDeviceNotFound, err)
	}
	if u.UsagePage != UsagePage || u.Usage != Usage {
		return fmt.Errorf("%w: usage page 0x%04X usage 0x%02X", pkg.ErrDeviceNotFound, u.UsagePage, u.Usage)
	}
	if u.InputBytes != ReportLength || u.OutputBytes != ReportLength {
		return fmt.Errorf("%w: report lengths in=%d out=%d", pkg.ErrDeviceNotFound, u.InputBytes, u.OutputBytes)
	}
	return nil
}

// Described is anything that advertises a HID report descriptor.
type Described interface {
	ReportDescriptor() []byte
}

// Find returns the first device whose report descriptor matches the portal.
func Find[D Described](devices []D) (D, error) {
	for _, d := range devices {
		if Match(d.ReportDescriptor()) == nil {
			return d, nil
		}
	}
	var zero D
	return zero, pkg.ErrDeviceNotFound
}
