package hid

// Portal USB identity.
const (
	Manufacturer = "Activision"
	Product      = "Spyro Porta"
	VendorID     = 0x1430
	ProductID    = 0x0150
)

// Portal HID interface parameters.
const (
	UsagePage    = 0xFF00 // Vendor defined
	Usage        = 0x01
	ReportID     = 0
	ReportLength = 32 // Input and output reports are both 32 bytes
)

// HID class codes.
const (
	ClassHID     = 0x03 // Human Interface Device Class
	SubclassNone = 0x00 // No subclass
	ProtocolNone = 0x00 // No protocol
)

// HID descriptor types.
const (
	DescriptorTypeHID    = 0x21 // HID descriptor
	DescriptorTypeReport = 0x22 // Report descriptor
)

// CountryNone is the HID country code for non-localized hardware.
const CountryNone = 0x00

// Report descriptor item types (bits 2-3 of the item prefix).
const (
	itemTypeMain   = 0x00
	itemTypeGlobal = 0x01
	itemTypeLocal  = 0x02
)

// Report descriptor item tags (bits 4-7 of the item prefix).
const (
	tagInput         = 0x08 // Main
	tagOutput        = 0x09 // Main
	tagCollection    = 0x0A // Main
	tagFeature       = 0x0B // Main
	tagEndCollection = 0x0C // Main
	tagUsagePage     = 0x00 // Global
	tagReportSize    = 0x07 // Global
	tagReportID      = 0x08 // Global
	tagReportCount   = 0x09 // Global
	tagUsage         = 0x00 // Local
)

// longItemPrefix introduces a long item: [0xFE, size, tag, data...].
const longItemPrefix = 0xFE

// HIDDescriptor is the HID class descriptor.
type HIDDescriptor struct {
	HIDVersion     uint16 // HID specification release number (0x0111 for 1.11)
	CountryCode    uint8  // Country code
	NumDescriptors uint8  // Number of class descriptors (at least 1)
	ReportDescLen  uint16 // Total size of report descriptor
}

// HIDDescriptorSize is the size of the HID descriptor.
const HIDDescriptorSize = 9

// NewHIDDescriptor returns the class descriptor advertising reportDescriptor.
func NewHIDDescriptor(reportDescriptor []byte) HIDDescriptor {
	return HIDDescriptor{
		HIDVersion:     0x0111, // HID 1.11
		CountryCode:    CountryNone,
		NumDescriptors: 1,
		ReportDescLen:  uint16(len(reportDescriptor)),
	}
}

// MarshalTo writes the HID descriptor to buf.
// Returns the number of bytes written, or 0 if buf is too small.
func (d *HIDDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < HIDDescriptorSize {
		return 0
	}
	buf[0] = HIDDescriptorSize
	buf[1] = DescriptorTypeHID
	buf[2] = byte(d.HIDVersion)
	buf[3] = byte(d.HIDVersion >> 8)
	buf[4] = d.CountryCode
	buf[5] = d.NumDescriptors
	buf[6] = DescriptorTypeReport
	buf[7] = byte(d.ReportDescLen)
	buf[8] = byte(d.ReportDescLen >> 8)
	return HIDDescriptorSize
}
