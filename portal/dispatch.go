package portal

import (
	"encoding/binary"
	"fmt"

	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/toy"
)

// Outcome classifies how the dispatcher handled one inbound report.
type Outcome uint8

// Dispatch outcomes.
const (
	OutcomeResponse  Outcome = iota // A response report was produced
	OutcomeSilent                   // Known no-op command, no response
	OutcomeUnknown                  // Unknown opcode, no response
	OutcomeMalformed                // Shorter than ReportSize, discarded
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeResponse:
		return "response"
	case OutcomeSilent:
		return "silent"
	case OutcomeUnknown:
		return "unknown"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "invalid"
	}
}

// Responds reports whether the outcome carries a response report.
func (o Outcome) Responds() bool {
	return o == OutcomeResponse
}

// Dispatcher decodes inbound reports and produces responses from the slot
// and session state. It is not safe for concurrent use.
type Dispatcher struct {
	slots   *Slots
	session *Session
}

// NewDispatcher creates a dispatcher over slots and session.
func NewDispatcher(slots *Slots, session *Session) *Dispatcher {
	return &Dispatcher{slots: slots, session: session}
}

// Dispatch handles one inbound report. When the returned outcome responds,
// out holds the response; otherwise out is left zeroed. Reports longer than
// ReportSize are truncated; shorter ones are discarded.
func (d *Dispatcher) Dispatch(in []byte, out *Report) Outcome {
	out.Reset()

	if len(in) < ReportSize {
		pkg.LogDebug(pkg.ComponentPortal, "discarding report",
			"error", fmt.Errorf("%d of %d bytes: %w", len(in), ReportSize, pkg.ErrMalformedReport))
		return OutcomeMalformed
	}
	in = in[:ReportSize]

	switch op := in[offOpcode]; op {
	case OpActivate:
		d.activate(in, out)
	case OpQuery:
		d.query(in, out)
	case OpWrite:
		d.write(in, out)
	case OpReset:
		d.reset(in, out)
	case OpStatus:
		d.status(in, out)
	case OpColor, OpSound, OpLight, OpSpeaker:
		pkg.LogDebug(pkg.ComponentPortal, "ignoring request", "opcode", string(rune(op)))
		return OutcomeSilent
	default:
		pkg.LogDebug(pkg.ComponentPortal, "unknown request", "opcode", op, "report", in)
		return OutcomeUnknown
	}
	return OutcomeResponse
}

// activate records the activated slot and acknowledges it.
func (d *Dispatcher) activate(in []byte, out *Report) {
	d.session.SetActivation(in[offSlot])

	out[offOpcode] = OpActivate
	out[offSlot] = in[offSlot]
	out[2] = activateAck0
	out[3] = activateAck1
}

// query answers with one block of the selected toy, or a zero block if the
// slot has no toy or the block is out of range.
func (d *Dispatcher) query(in []byte, out *Report) {
	out[offOpcode] = OpQuery
	out[offSlot] = in[offSlot]
	out[offBlock] = in[offBlock]

	index := slotIndex(in[offSlot])
	t, ok := d.slots.Toy(index)
	if !ok {
		pkg.LogDebug(pkg.ComponentPortal, "query on empty slot", "slot", index)
		return
	}
	if _, err := t.ReadBlock(int(in[offBlock]), out[offData:offData+toy.BlockSize]); err != nil {
		pkg.LogDebug(pkg.ComponentPortal, "query rejected", "slot", index, "block", in[offBlock], "error", err)
	}
}

// write stores one block into the selected toy and acknowledges. Writes to
// an empty slot or an out-of-range block are acknowledged but dropped.
func (d *Dispatcher) write(in []byte, out *Report) {
	out[offOpcode] = OpWrite
	out[offSlot] = in[offSlot]
	out[offBlock] = in[offBlock]

	index := slotIndex(in[offSlot])
	t, ok := d.slots.Toy(index)
	if !ok {
		pkg.LogDebug(pkg.ComponentPortal, "write on empty slot", "slot", index)
		return
	}
	if err := t.WriteBlock(int(in[offBlock]), in[offData:offData+toy.BlockSize]); err != nil {
		pkg.LogDebug(pkg.ComponentPortal, "write rejected", "slot", index, "block", in[offBlock], "error", err)
	}
}

// reset restarts the status counter.
func (d *Dispatcher) reset(_ []byte, out *Report) {
	d.session.ResetCounter()

	out[offOpcode] = OpReset
	out[1] = resetAck0
	out[2] = resetAck1
}

// status reports slot presence, the status counter and the activation byte,
// then advances the counter and the transitional slot states.
func (d *Dispatcher) status(_ []byte, out *Report) {
	out[offOpcode] = OpStatus
	binary.LittleEndian.PutUint32(out[offBitmap:offBitmap+4], d.slots.Bitmap())
	out[offCounter] = d.session.NextStatusCounter()
	out[offActivate] = d.session.Activation()

	d.slots.Tick()
}

// slotIndex maps a Query/Write selector byte to a 0-based slot index.
func slotIndex(selector byte) int {
	return int(selector & slotSelectorMask)
}
