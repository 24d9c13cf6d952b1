package portal

import (
	"sync/atomic"
	"time"
)

// counters are the engine's running totals.
type counters struct {
	reports          atomic.Uint64
	responses        atomic.Uint64
	malformed        atomic.Uint64
	ignored          atomic.Uint64
	transportErrors  atomic.Uint64
	unexpectedErrors atomic.Uint64
	flushErrors      atomic.Uint64
}

// Stats is a point-in-time copy of the engine's counters.
type Stats struct {
	Reports          uint64 `json:"reports"`
	Responses        uint64 `json:"responses"`
	Malformed        uint64 `json:"malformed"`
	Ignored          uint64 `json:"ignored"`
	TransportErrors  uint64 `json:"transport_errors"`
	UnexpectedErrors uint64 `json:"unexpected_errors"`
	FlushErrors      uint64 `json:"flush_errors"`
}

func (c *counters) load() Stats {
	return Stats{
		Reports:          c.reports.Load(),
		Responses:        c.responses.Load(),
		Malformed:        c.malformed.Load(),
		Ignored:          c.ignored.Load(),
		TransportErrors:  c.transportErrors.Load(),
		UnexpectedErrors: c.unexpectedErrors.Load(),
		FlushErrors:      c.flushErrors.Load(),
	}
}

// SlotState describes one slot in a snapshot.
type SlotState struct {
	Index  int        `json:"index"`
	Status SlotStatus `json:"status"`
	Key    string     `json:"key,omitempty"`
	Blocks int        `json:"blocks,omitempty"`
	Dirty  bool       `json:"dirty,omitempty"`
}

// Snapshot is the engine state as of the end of the last poll cycle.
type Snapshot struct {
	ID         string      `json:"id"`
	Time       time.Time   `json:"time"`
	Running    bool        `json:"running"`
	Counter    uint8       `json:"counter"`
	Activation uint8       `json:"activation"`
	Bitmap     uint32      `json:"bitmap"`
	Slots      []SlotState `json:"slots"`
	Stats      Stats       `json:"stats"`
}

// Snapshot returns the most recently published state. Safe for concurrent
// use.
func (p *Portal) Snapshot() Snapshot {
	s := *p.snapshot.Load()
	s.Running = p.running.Load()
	s.Stats = p.stats.load()
	return s
}

// Stats returns the engine's counters. Safe for concurrent use.
func (p *Portal) Stats() Stats {
	return p.stats.load()
}

// publish captures the loop-owned state for concurrent readers.
func (p *Portal) publish() {
	s := &Snapshot{
		ID:         p.ID(),
		Time:       time.Now(),
		Counter:    p.session.Counter(),
		Activation: p.session.Activation(),
		Bitmap:     p.slots.Bitmap(),
		Slots:      make([]SlotState, p.slots.Len()),
	}
	for i := range s.Slots {
		slot := p.slots.Slot(i)
		st := SlotState{Index: i, Status: slot.Status()}
		if t, ok := slot.Toy(); ok {
			st.Key = t.Key()
			st.Blocks = t.Blocks()
			st.Dirty = t.Dirty()
		}
		s.Slots[i] = st
	}
	p.snapshot.Store(s)
}
