package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"shipscan/internal/core/pairing"
	"shipscan/internal/core/scancode"
	"shipscan/internal/platform/metrics"
	"shipscan/internal/services/api/scan/domain"
)

// Outcome is what Enqueue did with one packet
type Outcome uint8

const (
	// Accepted packets were appended to the queue
	Accepted Outcome = iota + 1
	// Dropped packets arrived while input was blocked
	Dropped
	// Ignored packets were empty
	Ignored
)

// Session serialises the packets of one scanning station. One packet is in
// flight at a time and packets are processed in arrival order
type Session struct {
	id      string
	station string
	created time.Time

	gw            *Gateway
	gate          *Gate
	log           zerolog.Logger
	commitTimeout time.Duration
	ringSize      int
	subBuffer     int
	observe       func(domain.Event)
	now           func() time.Time

	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pctx     pairing.Context
	state    pairing.State
	queue    []string
	draining bool
	inFlight bool
	idle     chan struct{}
	block    *domain.DuplicateBlock
	events   []domain.Event
	seq      uint64
	lastSeen time.Time
	subs     map[int]chan domain.Event
	nextSub  int
	closed   bool
}

func newSession(id, station string, st domain.Store, cfg Config, log zerolog.Logger, observe func(domain.Event)) *Session {
	base, cancel := context.WithCancel(context.Background())
	now := time.Now
	idle := make(chan struct{})
	close(idle)
	return &Session{
		id:            id,
		station:       station,
		created:       now().UTC(),
		gw:            NewGateway(st),
		gate:          NewGate(st, log),
		log:           log,
		commitTimeout: cfg.CommitTimeout,
		ringSize:      cfg.EventRing,
		subBuffer:     cfg.SubscriberBuffer,
		observe:       observe,
		now:           now,
		base:          base,
		cancel:        cancel,
		idle:          idle,
		lastSeen:      now().UTC(),
		subs:          map[int]chan domain.Event{},
	}
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Enqueue appends raw to the queue and starts draining
func (s *Session) Enqueue(raw string) Outcome {
	if scancode.Classify(raw).Empty() {
		return Ignored
	}

	s.mu.Lock()
	s.lastSeen = s.now().UTC()
	if s.closed {
		s.mu.Unlock()
		return Dropped
	}
	if s.block != nil {
		ev := s.record(domain.Event{
			Kind:    domain.EventDropped,
			Reject:  domain.InputBlocked,
			Message: "input is blocked until the duplicate is acknowledged",
			Cue:     domain.CueError,
		})
		s.mu.Unlock()
		metrics.PacketsDroppedTotal.Inc()
		s.emit(ev)
		return Dropped
	}
	s.queue = append(s.queue, raw)
	s.startDrainLocked()
	s.mu.Unlock()
	metrics.PacketsTotal.Inc()
	return Accepted
}

// Wait blocks until the drain loop stops, either on an empty queue or on a block
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ack clears an active duplicate block together with the pending barcode and
// resumes the queue. It reports false when no block was active
func (s *Session) Ack() bool {
	s.mu.Lock()
	s.lastSeen = s.now().UTC()
	if s.block == nil {
		s.mu.Unlock()
		return false
	}
	code := s.block.Code
	s.block = nil
	s.state = pairing.State{}
	ev := s.record(domain.Event{Kind: domain.EventAcknowledged, Code: code, Cue: domain.CueNone})
	s.startDrainLocked()
	s.mu.Unlock()
	s.emit(ev)
	return true
}

// SetContext switches what the session scans into
func (s *Session) SetContext(next pairing.Context) {
	s.mu.Lock()
	s.lastSeen = s.now().UTC()
	prev := s.pctx
	s.state = pairing.Retarget(s.state, prev, next)
	s.pctx = next
	ev := s.record(domain.Event{Kind: domain.EventContext, Message: contextMessage(next), Cue: domain.CueNone})
	s.startDrainLocked()
	s.mu.Unlock()
	s.emit(ev)
}

// CancelPending forgets the barcode waiting for its marking code
func (s *Session) CancelPending() bool {
	s.mu.Lock()
	s.lastSeen = s.now().UTC()
	if !s.state.Awaiting() {
		s.mu.Unlock()
		return false
	}
	pending := s.state.Pending
	s.state = pairing.State{}
	ev := s.record(domain.Event{Kind: domain.EventCancelled, Barcode: pending, Cue: domain.CueNone})
	s.mu.Unlock()
	s.emit(ev)
	return true
}

// Subscribe streams events until the returned func is called or the session closes.
// Slow subscribers miss events rather than stall the session
func (s *Session) Subscribe() (<-chan domain.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan domain.Event, s.subBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := domain.Snapshot{
		ID:       s.id,
		Station:  s.station,
		Context:  s.pctx,
		State:    s.state.String(),
		Pending:  s.state.Pending,
		Queued:   len(s.queue),
		InFlight: s.inFlight,
		Changes:  s.gw.Changes(),
		Events:   append([]domain.Event(nil), s.events...),
		Created:  s.created,
		LastSeen: s.lastSeen,
	}
	if s.block != nil {
		b := *s.block
		snap.Block = &b
	}
	return snap
}

// Close stops the drain loop and ends all subscriptions. Queued packets are discarded
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.queue = nil
	s.cancel()
	for id, c := range s.subs {
		delete(s.subs, id)
		close(c)
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) startDrainLocked() {
	if s.draining || s.closed || s.block != nil || len(s.queue) == 0 {
		return
	}
	s.draining = true
	s.idle = make(chan struct{})
	go s.drain()
}

func (s *Session) drain() {
	for {
		s.mu.Lock()
		if s.closed || s.block != nil || len(s.queue) == 0 {
			s.draining = false
			close(s.idle)
			s.mu.Unlock()
			return
		}
		raw := s.queue[0]
		s.queue[0] = ""
		s.queue = s.queue[1:]

		scan := scancode.Classify(raw)
		pctx := s.pctx
		prev := s.state
		d := pairing.Step(prev, pctx, scan)

		if d.Action != pairing.ActionCommit {
			s.state = d.Next
			ev := s.record(decisionEvent(d, scan))
			s.mu.Unlock()
			if d.Action == pairing.ActionReject {
				metrics.RejectsTotal.WithLabelValues(string(d.Reject)).Inc()
			}
			s.emit(ev)
			continue
		}

		s.inFlight = true
		s.mu.Unlock()

		rowID, err := s.commit(pctx, d)

		var block *domain.DuplicateBlock
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			ctx, cancel := s.opContext()
			b := s.gate.Resolve(ctx, dup)
			cancel()
			block = &b
		}

		reject := RejectOf(err)

		s.mu.Lock()
		s.inFlight = false
		var ev domain.Event
		switch {
		case err == nil:
			if s.state == prev {
				s.state = d.Next
			}
			ev = s.record(domain.Event{
				Kind:    domain.EventCommitted,
				Barcode: d.Barcode,
				Code:    deref(d.Code),
				RowID:   rowID,
				Cue:     domain.CueSuccess,
			})
		case block != nil:
			s.block = block
			ev = s.record(domain.Event{
				Kind:    domain.EventBlocked,
				Reject:  domain.DuplicateMarkingCode,
				Message: block.Message,
				Barcode: d.Barcode,
				Code:    block.Code,
				Cue:     domain.CueError,
			})
		case reject == pairing.ShipmentLocked:
			// shipped since the context was set, nothing more goes in
			s.pctx.Locked = true
			s.state = pairing.State{}
			ev = s.record(domain.Event{
				Kind:    domain.EventRejected,
				Reject:  pairing.ShipmentLocked,
				Barcode: d.Barcode,
				Code:    deref(d.Code),
				Cue:     domain.CueError,
			})
		default:
			ev = s.record(domain.Event{
				Kind:    domain.EventRejected,
				Reject:  domain.StoreError,
				Message: "could not save the scan, try again",
				Barcode: d.Barcode,
				Code:    deref(d.Code),
				Cue:     domain.CueError,
			})
		}
		s.mu.Unlock()

		switch {
		case err == nil:
		case block != nil:
			metrics.RejectsTotal.WithLabelValues(string(domain.DuplicateMarkingCode)).Inc()
			s.log.Info().Str("code", block.Code).Str("reason", block.Reason).Msg("duplicate marking code, input blocked")
		case reject == pairing.ShipmentLocked:
			metrics.RejectsTotal.WithLabelValues(string(pairing.ShipmentLocked)).Inc()
			s.log.Info().Str("shipment_id", pctx.ShipmentID).Msg("shipment locked by the store, session locked")
		default:
			metrics.RejectsTotal.WithLabelValues(string(domain.StoreError)).Inc()
			s.log.Warn().Err(err).Str("barcode", d.Barcode).Msg("scan commit failed")
		}
		s.emit(ev)
	}
}

func (s *Session) commit(pctx pairing.Context, d pairing.Decision) (string, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	return s.gw.Commit(ctx, pctx.ShipmentID, pctx.BoxID, d.Barcode, d.Code)
}

func (s *Session) opContext() (context.Context, context.CancelFunc) {
	if s.commitTimeout > 0 {
		return context.WithTimeout(s.base, s.commitTimeout)
	}
	return context.WithCancel(s.base)
}

// record stamps ev, stores it in the ring and fans it out to subscribers. Caller holds mu
func (s *Session) record(ev domain.Event) domain.Event {
	s.seq++
	ev.Seq = s.seq
	ev.SessionID = s.id
	ev.At = s.now().UTC()
	ev.Changes = s.gw.Changes()
	if ev.Message == "" && ev.Reject != "" {
		ev.Message = ev.Reject.Message()
	}

	s.events = append(s.events, ev)
	if over := len(s.events) - s.ringSize; s.ringSize > 0 && over > 0 {
		s.events = append(s.events[:0], s.events[over:]...)
	}
	for _, c := range s.subs {
		select {
		case c <- ev:
		default:
		}
	}
	return ev
}

func (s *Session) emit(ev domain.Event) {
	if s.observe != nil {
		s.observe(ev)
	}
}

func decisionEvent(d pairing.Decision, scan scancode.Scan) domain.Event {
	switch d.Action {
	case pairing.ActionHold:
		ev := domain.Event{Kind: domain.EventHold, Barcode: d.Barcode, Cue: domain.CueNone}
		if d.Replaced != "" {
			ev.Message = "replaced pending barcode " + d.Replaced
		}
		return ev
	default:
		ev := domain.Event{Kind: domain.EventRejected, Reject: d.Reject, Cue: domain.CueError}
		if scan.Kind == scancode.KindBarcode {
			ev.Barcode = scan.Value
		} else {
			ev.Code = scan.Value
		}
		return ev
	}
}

func contextMessage(c pairing.Context) string {
	switch {
	case !c.Ready():
		return "no shipment or box selected"
	case c.Locked:
		return "shipment is locked"
	case c.RequiresCode:
		return "scanning barcode then marking code"
	default:
		return "scanning barcodes"
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
