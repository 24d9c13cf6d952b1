package portal

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/ardnew/softportal/hal"
	"github.com/ardnew/softportal/hid"
	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/toy"
)

// Default engine settings.
const (
	DefaultSlots        = MaxSlots
	DefaultPollInterval = 100 * time.Millisecond
	DefaultRetryDelay   = 250 * time.Millisecond
	DefaultWriteTimeout = time.Second
	DefaultEventQueue   = 16
)

// Config holds engine settings. Zero values select the defaults.
type Config struct {
	// Slots is the number of receptor positions (1 for a single-toy portal).
	Slots int

	// Keys maps slot indexes to toy image keys.
	Keys toy.KeyPattern

	// PollInterval bounds each wait for an inbound report.
	PollInterval time.Duration

	// RetryDelay is the pause after a failed transport operation.
	RetryDelay time.Duration

	// WriteTimeout bounds sending one response.
	WriteTimeout time.Duration

	// EventQueue is the capacity of the presence event queue.
	EventQueue int

	// OnError receives errors the engine does not know how to classify.
	// It is called from the engine loop.
	OnError func(error)
}

// DefaultConfig returns the default engine settings.
func DefaultConfig() Config {
	return Config{
		Slots:        DefaultSlots,
		Keys:         toy.DefaultKeyPattern,
		PollInterval: DefaultPollInterval,
		RetryDelay:   DefaultRetryDelay,
		WriteTimeout: DefaultWriteTimeout,
		EventQueue:   DefaultEventQueue,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Slots == 0 {
		c.Slots = d.Slots
	}
	if c.Keys == "" {
		c.Keys = d.Keys
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.EventQueue <= 0 {
		c.EventQueue = d.EventQueue
	}
	return c
}

// eventKind distinguishes presence events.
type eventKind uint8

const (
	eventInsert eventKind = iota + 1
	eventRemove
)

// presenceEvent is a toy placement or removal raised outside the loop.
type presenceEvent struct {
	kind  eventKind
	index int
	done  chan error
}

// Portal is the emulated portal: the report engine together with the slot,
// session and transport it drives. Presence events and snapshots may be
// used from any goroutine; everything else runs on the Run goroutine.
type Portal struct {
	cfg   Config
	id    xid.ID
	hal   hal.ReportHAL
	store toy.Store

	slots      *Slots
	session    *Session
	dispatcher *Dispatcher

	events   chan presenceEvent
	snapshot atomic.Pointer[Snapshot]
	stats    counters
	running  atomic.Bool

	// Buffers (zero-allocation)
	inBuf [ReportSize * 2]byte
	out   Report
}

// New creates a portal engine on transport h with toy images from store.
// It fails with an error wrapping pkg.ErrDeviceNotFound if the transport does
// not advertise the portal's HID interface.
func New(cfg Config, h hal.ReportHAL, store toy.Store) (*Portal, error) {
	if h == nil {
		return nil, fmt.Errorf("nil transport: %w", pkg.ErrDeviceNotFound)
	}
	if err := hid.Match(h.ReportDescriptor()); err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()
	slots, err := NewSlots(cfg.Slots, store, cfg.Keys)
	if err != nil {
		return nil, err
	}
	session := NewSession()

	p := &Portal{
		cfg:        cfg,
		id:         xid.New(),
		hal:        h,
		store:      store,
		slots:      slots,
		session:    session,
		dispatcher: NewDispatcher(slots, session),
		events:     make(chan presenceEvent, cfg.EventQueue),
	}
	p.publish()
	return p, nil
}

// ID returns the engine's run identifier.
func (p *Portal) ID() string {
	return p.id.String()
}

// Config returns the effective engine settings.
func (p *Portal) Config() Config {
	return p.cfg
}

// Insert signals that a toy was placed on slot index and waits for the loop
// to load it. It returns the load error, pkg.ErrBusy if the event queue is
// full, or the context error.
func (p *Portal) Insert(ctx context.Context, index int) error {
	return p.post(ctx, eventInsert, index)
}

// Remove signals that the toy on slot index was lifted off and waits for the
// loop to release it.
func (p *Portal) Remove(ctx context.Context, index int) error {
	return p.post(ctx, eventRemove, index)
}

func (p *Portal) post(ctx context.Context, kind eventKind, index int) error {
	if index < 0 || index >= p.cfg.Slots {
		return fmt.Errorf("slot %d: %w", index, pkg.ErrInvalidSlot)
	}

	ev := presenceEvent{kind: kind, index: index, done: make(chan error, 1)}
	select {
	case p.events <- ev:
	default:
		return fmt.Errorf("presence queue full: %w", pkg.ErrBusy)
	}

	select {
	case err := <-ev.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run attaches the transport and serves reports until ctx is cancelled.
// Each cycle applies queued presence events, waits up to PollInterval for
// one report, dispatches it, sends the response and flushes dirty toys.
// Transport failures are logged and retried; Run only returns an error if
// the transport cannot be started.
func (p *Portal) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return pkg.ErrAlreadyRunning
	}
	defer p.running.Store(false)

	if err := p.hal.Init(ctx); err != nil {
		return fmt.Errorf("init transport: %w", err)
	}
	if err := p.hal.Start(); err != nil {
		p.hal.Stop()
		return fmt.Errorf("start transport: %w", err)
	}
	defer p.shutdown()

	pkg.LogInfo(pkg.ComponentPortal, "portal running",
		"id", p.ID(),
		"slots", p.cfg.Slots,
		"pollInterval", p.cfg.PollInterval)

	for ctx.Err() == nil {
		p.step(ctx)
	}
	return nil
}

// step runs one poll cycle.
func (p *Portal) step(ctx context.Context) {
	p.applyEvents()

	pollCtx, cancel := context.WithTimeout(ctx, p.cfg.PollInterval)
	n, err := p.hal.ReadReport(pollCtx, p.inBuf[:])
	cancel()

	switch {
	case err == nil:
		p.handle(ctx, p.inBuf[:n])
	case ctx.Err() != nil:
		// Shutting down
	case errors.Is(err, context.DeadlineExceeded):
		// Idle poll
	default:
		p.fail(ctx, "read report", err)
	}

	if err := p.slots.Flush(); err != nil {
		p.stats.flushErrors.Add(1)
		pkg.LogError(pkg.ComponentPortal, "toy flush failed", "error", err)
	}
	p.publish()
}

// handle dispatches one inbound report and sends its response, if any.
func (p *Portal) handle(ctx context.Context, in []byte) {
	p.stats.reports.Add(1)

	outcome := p.dispatcher.Dispatch(in, &p.out)
	switch outcome {
	case OutcomeMalformed:
		p.stats.malformed.Add(1)
	case OutcomeSilent, OutcomeUnknown:
		p.stats.ignored.Add(1)
	}
	if !outcome.Responds() {
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.cfg.WriteTimeout)
	err := p.hal.WriteReport(writeCtx, p.out[:])
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			p.fail(ctx, "write report", err)
		}
		return
	}
	p.stats.responses.Add(1)
}

// fail records a transport failure and pauses for RetryDelay. Transient
// failures are expected; anything else is also handed to OnError.
func (p *Portal) fail(ctx context.Context, op string, err error) {
	err = fmt.Errorf("%s: %w", op, err)
	if pkg.IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
		p.stats.transportErrors.Add(1)
		pkg.LogWarn(pkg.ComponentPortal, "transport error, retrying", "error", err)
	} else {
		p.stats.unexpectedErrors.Add(1)
		pkg.LogError(pkg.ComponentPortal, "unexpected transport error", "error", err)
		if p.cfg.OnError != nil {
			p.cfg.OnError(err)
		}
	}

	t := time.NewTimer(p.cfg.RetryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// applyEvents drains the presence queue without blocking.
func (p *Portal) applyEvents() {
	for {
		select {
		case ev := <-p.events:
			ev.done <- p.apply(ev)
		default:
			return
		}
	}
}

func (p *Portal) apply(ev presenceEvent) error {
	switch ev.kind {
	case eventInsert:
		return p.slots.Insert(ev.index)
	case eventRemove:
		return p.slots.Remove(ev.index)
	default:
		return pkg.ErrInvalidParameter
	}
}

// shutdown flushes pending writes and detaches the transport.
func (p *Portal) shutdown() {
	p.applyEvents()
	if err := p.slots.Flush(); err != nil {
		p.stats.flushErrors.Add(1)
		pkg.LogError(pkg.ComponentPortal, "final toy flush failed", "error", err)
	}
	if err := p.hal.Stop(); err != nil {
		pkg.LogWarn(pkg.ComponentPortal, "transport stop failed", "error", err)
	}
	p.publish()
	pkg.LogInfo(pkg.ComponentPortal, "portal stopped", "id", p.ID())
}
