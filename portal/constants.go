package portal

import "github.com/ardnew/softportal/hid"

// ReportSize is the fixed size of every inbound and outbound report.
const ReportSize = hid.ReportLength

// MaxSlots is the number of slots the 4-byte status bitmap can describe.
const MaxSlots = 16

// Command opcodes (byte 0 of every report).
const (
	OpActivate = 'A'
	OpColor    = 'C'
	OpSound    = 'J'
	OpLight    = 'L'
	OpSpeaker  = 'M'
	OpQuery    = 'Q'
	OpReset    = 'R'
	OpStatus   = 'S'
	OpWrite    = 'W'
)

// Fixed response bytes.
const (
	activateAck0 = 0xFF
	activateAck1 = 0x77
	resetAck0    = 0x02
	resetAck1    = 0x18
)

// statusCounterModulus bounds the status counter to [0, 0xFF).
const statusCounterModulus = 0xFF

// slotSelectorMask extracts the 0-based slot index from a Query/Write
// selector byte.
const slotSelectorMask = 0x0F

// Report offsets.
const (
	offOpcode   = 0
	offSlot     = 1
	offBlock    = 2
	offData     = 3
	offBitmap   = 1
	offCounter  = 5
	offActivate = 6
)

// Report is one fixed-size HID report.
type Report [ReportSize]byte

// Opcode returns the report's command byte.
func (r *Report) Opcode() byte {
	return r[offOpcode]
}

// Reset zeroes the report.
func (r *Report) Reset() {
	*r = Report{}
}
