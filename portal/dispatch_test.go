package portal

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ardnew/softportal/toy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// report builds a full-length inbound report from its leading bytes.
func report(head ...byte) []byte {
	r := make([]byte, ReportSize)
	copy(r, head)
	return r
}

func newTestDispatcher(t *testing.T, count int, stocked ...int) (*Dispatcher, *Slots, *Session) {
	t.Helper()
	slots, _ := newTestSlots(t, count, stocked...)
	session := NewSession()
	return NewDispatcher(slots, session), slots, session
}

func TestDispatch_WriteThenQuery(t *testing.T) {
	d, slots, _ := newTestDispatcher(t, MaxSlots, 1)
	require.NoError(t, slots.Insert(1))

	data := bytes.Repeat([]byte{0xAA}, toy.BlockSize)
	var out Report

	in := report(OpWrite, 0x01, 0x02)
	copy(in[offData:], data)
	require.Equal(t, OutcomeResponse, d.Dispatch(in, &out))
	assert.Equal(t, Report{OpWrite, 0x01, 0x02}, out)

	require.Equal(t, OutcomeResponse, d.Dispatch(report(OpQuery, 0x01, 0x02), &out))
	var want Report
	want[0], want[1], want[2] = OpQuery, 0x01, 0x02
	copy(want[offData:], data)
	assert.Equal(t, want, out)

	tk, _ := slots.Toy(1)
	assert.True(t, tk.Dirty())
}

func TestDispatch_ResetAndStatusCounter(t *testing.T) {
	d, _, _ := newTestDispatcher(t, MaxSlots)
	var out Report

	// advance the counter before resetting it
	d.Dispatch(report(OpStatus), &out)
	d.Dispatch(report(OpStatus), &out)

	require.Equal(t, OutcomeResponse, d.Dispatch(report(OpReset), &out))
	assert.Equal(t, Report{OpReset, 0x02, 0x18}, out)

	d.Dispatch(report(OpStatus), &out)
	assert.Equal(t, byte(OpStatus), out[offOpcode])
	assert.Equal(t, byte(0), out[offCounter])

	d.Dispatch(report(OpStatus), &out)
	assert.Equal(t, byte(1), out[offCounter])
}

func TestDispatch_Activate(t *testing.T) {
	d, _, session := newTestDispatcher(t, MaxSlots)
	var out Report

	require.Equal(t, OutcomeResponse, d.Dispatch(report(OpActivate, 0x05), &out))
	assert.Equal(t, Report{OpActivate, 0x05, 0xFF, 0x77}, out)
	assert.Equal(t, uint8(5), session.Activation())

	d.Dispatch(report(OpStatus), &out)
	assert.Equal(t, byte(5), out[offActivate])
}

func TestDispatch_StatusBitmap(t *testing.T) {
	d, slots, _ := newTestDispatcher(t, MaxSlots, 0, 3)
	require.NoError(t, slots.Insert(0))
	require.NoError(t, slots.Insert(3))

	var out Report
	d.Dispatch(report(OpStatus), &out)
	want := uint32(0x3) | uint32(0x3)<<6
	assert.Equal(t, want, binary.LittleEndian.Uint32(out[offBitmap:]))

	// Added is reported once, then Present
	d.Dispatch(report(OpStatus), &out)
	want = uint32(0x1) | uint32(0x1)<<6
	assert.Equal(t, want, binary.LittleEndian.Uint32(out[offBitmap:]))

	require.NoError(t, slots.Remove(3))
	d.Dispatch(report(OpStatus), &out)
	want = uint32(0x1) | uint32(0x2)<<6
	assert.Equal(t, want, binary.LittleEndian.Uint32(out[offBitmap:]))

	d.Dispatch(report(OpStatus), &out)
	assert.Equal(t, uint32(0x1), binary.LittleEndian.Uint32(out[offBitmap:]))
	assert.Equal(t, make([]byte, ReportSize-offActivate-1), out[offActivate+1:])
}

func TestDispatch_SilentAndUnknown(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		want   Outcome
	}{
		{"color", OpColor, OutcomeSilent},
		{"sound", OpSound, OutcomeSilent},
		{"light", OpLight, OutcomeSilent},
		{"speaker", OpSpeaker, OutcomeSilent},
		{"unknown", 'Z', OutcomeUnknown},
		{"zero", 0x00, OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, slots, session := newTestDispatcher(t, MaxSlots, 0)
			require.NoError(t, slots.Insert(0))

			var out Report
			got := d.Dispatch(report(tt.opcode, 0x00, 0x01, 0xFF, 0xFF), &out)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.Responds())
			assert.Equal(t, Report{}, out)

			assert.Equal(t, SlotAdded, slots.Slot(0).Status())
			assert.Equal(t, uint8(0), session.Counter())
			tk, _ := slots.Toy(0)
			assert.False(t, tk.Dirty())
		})
	}
}

func TestDispatch_Malformed(t *testing.T) {
	d, _, session := newTestDispatcher(t, MaxSlots)
	var out Report

	for _, n := range []int{0, 1, ReportSize - 1} {
		in := make([]byte, n)
		if n > 0 {
			in[0] = OpStatus
		}
		assert.Equal(t, OutcomeMalformed, d.Dispatch(in, &out), "length %d", n)
		assert.Equal(t, Report{}, out)
	}
	assert.Equal(t, uint8(0), session.Counter())
}

func TestDispatch_LongReportTruncated(t *testing.T) {
	d, _, _ := newTestDispatcher(t, MaxSlots)
	var out Report

	in := make([]byte, ReportSize*2)
	in[0] = OpActivate
	in[1] = 0x09
	for i := ReportSize; i < len(in); i++ {
		in[i] = 0xEE
	}
	require.Equal(t, OutcomeResponse, d.Dispatch(in, &out))
	assert.Equal(t, Report{OpActivate, 0x09, 0xFF, 0x77}, out)
}

func TestDispatch_NoToy(t *testing.T) {
	d, slots, _ := newTestDispatcher(t, 2, 0)
	require.NoError(t, slots.Insert(0))
	tk, _ := slots.Toy(0)
	require.NoError(t, tk.WriteBlock(0, bytes.Repeat([]byte{0x11}, toy.BlockSize)))
	require.NoError(t, tk.Flush())

	tests := []struct {
		name     string
		selector byte
		block    byte
	}{
		{"empty slot", 0x01, 0x00},
		{"slot beyond count", 0x05, 0x00},
		{"block out of range", 0x00, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out Report
			require.Equal(t, OutcomeResponse, d.Dispatch(report(OpQuery, tt.selector, tt.block), &out))
			assert.Equal(t, Report{OpQuery, tt.selector, tt.block}, out)

			in := report(OpWrite, tt.selector, tt.block)
			copy(in[offData:], bytes.Repeat([]byte{0x55}, toy.BlockSize))
			require.Equal(t, OutcomeResponse, d.Dispatch(in, &out))
			assert.Equal(t, Report{OpWrite, tt.selector, tt.block}, out)
			assert.False(t, tk.Dirty())
		})
	}
}

func TestDispatch_SelectorLowNibble(t *testing.T) {
	d, slots, _ := newTestDispatcher(t, MaxSlots, 2)
	require.NoError(t, slots.Insert(2))
	tk, _ := slots.Toy(2)
	require.NoError(t, tk.WriteBlock(4, bytes.Repeat([]byte{0x42}, toy.BlockSize)))

	var out Report
	d.Dispatch(report(OpQuery, 0x22, 0x04), &out)
	assert.Equal(t, byte(0x22), out[offSlot])
	assert.Equal(t, bytes.Repeat([]byte{0x42}, toy.BlockSize), out[offData:offData+toy.BlockSize])
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "response", OutcomeResponse.String())
	assert.Equal(t, "silent", OutcomeSilent.String())
	assert.Equal(t, "unknown", OutcomeUnknown.String())
	assert.Equal(t, "malformed", OutcomeMalformed.String())
	assert.Equal(t, "invalid", Outcome(42).String())
	assert.True(t, OutcomeResponse.Responds())
}
