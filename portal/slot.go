package portal

import (
	"errors"
	"fmt"

	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/toy"
)

// SlotStatus is the presence state of a slot. The values are the 2-bit codes
// reported in the Status bitmap.
type SlotStatus uint8

// Slot status values.
const (
	SlotEmpty   SlotStatus = 0x0 // No toy
	SlotPresent SlotStatus = 0x1 // Toy resting on the slot
	SlotRemoved SlotStatus = 0x2 // Toy just lifted off
	SlotAdded   SlotStatus = 0x3 // Toy just placed and loaded
)

// String returns a lower-case status name.
func (s SlotStatus) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotPresent:
		return "present"
	case SlotRemoved:
		return "removed"
	case SlotAdded:
		return "added"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s SlotStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *SlotStatus) UnmarshalText(text []byte) error {
	for _, v := range []SlotStatus{SlotEmpty, SlotPresent, SlotRemoved, SlotAdded} {
		if string(text) == v.String() {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("slot status %q: %w", text, pkg.ErrInvalidParameter)
}

// owned holds zero or one exclusively owned value.
type owned[T any] struct {
	value T
	ok    bool
}

// get returns the held value, if any.
func (o *owned[T]) get() (T, bool) {
	return o.value, o.ok
}

// hold takes ownership of v.
func (o *owned[T]) hold(v T) {
	o.value, o.ok = v, true
}

// release gives up ownership and returns what was held.
func (o *owned[T]) release() (T, bool) {
	v, ok := o.value, o.ok
	var zero T
	o.value, o.ok = zero, false
	return v, ok
}

// Slot is one receptor position. A slot owns a toy exactly while its status
// is SlotAdded or SlotPresent.
type Slot struct {
	index  int
	status SlotStatus
	toy    owned[*toy.Toy]
}

// Index returns the slot's position.
func (s *Slot) Index() int {
	return s.index
}

// Status returns the slot's presence state.
func (s *Slot) Status() SlotStatus {
	return s.status
}

// Toy returns the owned toy, if any.
func (s *Slot) Toy() (*toy.Toy, bool) {
	return s.toy.get()
}

// occupy takes ownership of t and marks the slot as just added.
func (s *Slot) occupy(t *toy.Toy) {
	s.toy.hold(t)
	s.status = SlotAdded
}

// vacate drops the owned toy and moves to status.
func (s *Slot) vacate(status SlotStatus) {
	s.toy.release()
	s.status = status
}

// Slots is the ordered set of slots on one portal. It is not safe for
// concurrent use; the engine loop is its only caller.
type Slots struct {
	slots []Slot
	store toy.Store
	keys  toy.KeyPattern
}

// NewSlots creates count empty slots backed by store. Slot i loads the image
// named keys.Key(i).
func NewSlots(count int, store toy.Store, keys toy.KeyPattern) (*Slots, error) {
	if count < 1 || count > MaxSlots {
		return nil, fmt.Errorf("slot count %d not in [1, %d]: %w", count, MaxSlots, pkg.ErrInvalidParameter)
	}
	if store == nil {
		return nil, fmt.Errorf("nil toy store: %w", pkg.ErrInvalidParameter)
	}
	if err := keys.Validate(); err != nil {
		return nil, err
	}

	s := &Slots{
		slots: make([]Slot, count),
		store: store,
		keys:  keys,
	}
	for i := range s.slots {
		s.slots[i].index = i
	}
	return s, nil
}

// Len returns the number of slots.
func (s *Slots) Len() int {
	return len(s.slots)
}

// Slot returns slot index, or nil if index is out of range.
func (s *Slots) Slot(index int) *Slot {
	if index < 0 || index >= len(s.slots) {
		return nil
	}
	return &s.slots[index]
}

// Toy returns the toy owned by slot index, if any.
func (s *Slots) Toy(index int) (*toy.Toy, bool) {
	slot := s.Slot(index)
	if slot == nil {
		return nil, false
	}
	return slot.Toy()
}

// Insert handles a toy being placed on slot index: the slot's image is
// loaded and the slot becomes SlotAdded. If the image cannot be loaded the
// slot is left empty and the load error is returned.
func (s *Slots) Insert(index int) error {
	slot := s.Slot(index)
	if slot == nil {
		return fmt.Errorf("slot %d: %w", index, pkg.ErrInvalidSlot)
	}
	if _, ok := slot.Toy(); ok {
		return fmt.Errorf("slot %d occupied: %w", index, pkg.ErrBusy)
	}

	key := s.keys.Key(index)
	t, err := toy.Load(s.store, key)
	if err != nil {
		slot.vacate(SlotEmpty)
		pkg.LogWarn(pkg.ComponentSlot, "toy load failed", "slot", index, "key", key, "error", err)
		return err
	}

	slot.occupy(t)
	pkg.LogInfo(pkg.ComponentSlot, "toy added", "slot", index, "key", key, "blocks", t.Blocks())
	return nil
}

// Remove handles the toy on slot index being lifted off. Pending writes are
// flushed before ownership is released; the backing image is kept so the
// same slot reloads it on the next Insert. Removing from a slot without a
// toy does nothing.
func (s *Slots) Remove(index int) error {
	slot := s.Slot(index)
	if slot == nil {
		return fmt.Errorf("slot %d: %w", index, pkg.ErrInvalidSlot)
	}
	t, ok := slot.Toy()
	if !ok {
		return nil
	}

	err := t.Flush()
	if err != nil {
		pkg.LogError(pkg.ComponentSlot, "flush on remove failed", "slot", index, "key", t.Key(), "error", err)
	}
	slot.vacate(SlotRemoved)
	pkg.LogInfo(pkg.ComponentSlot, "toy removed", "slot", index, "key", t.Key())
	return err
}

// Tick advances transitional states after they have been reported once:
// SlotAdded becomes SlotPresent and SlotRemoved becomes SlotEmpty.
func (s *Slots) Tick() {
	for i := range s.slots {
		switch s.slots[i].status {
		case SlotAdded:
			s.slots[i].status = SlotPresent
		case SlotRemoved:
			s.slots[i].status = SlotEmpty
		}
	}
}

// Bitmap packs every slot's status into 2 bits, slot i at bits 2i..2i+1.
func (s *Slots) Bitmap() uint32 {
	var bits uint32
	for i := range s.slots {
		bits |= uint32(s.slots[i].status&0x03) << (2 * i)
	}
	return bits
}

// Flush writes every dirty toy back to the store. All toys are attempted;
// the returned error joins the individual failures.
func (s *Slots) Flush() error {
	var errs []error
	for i := range s.slots {
		if t, ok := s.slots[i].Toy(); ok && t.Dirty() {
			if err := t.Flush(); err != nil {
				errs = append(errs, fmt.Errorf("slot %d: %w", i, err))
			}
		}
	}
	return errors.Join(errs...)
}
