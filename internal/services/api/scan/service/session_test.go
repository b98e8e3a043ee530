package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shipscan/internal/core/pairing"
	perr "shipscan/internal/platform/errors"
	"shipscan/internal/services/api/scan/domain"
)

const (
	gtin   = "4601234567890"
	dmCode = "0104600439931256215Ab7cDeFgHi9\x1d91EE05\x1d92dGVzdGNyeXB0b3NpZ25hdHVyZQ=="
	dmFlat = "0104600439931256215Ab7cDeFgHi991EE0592dGVzdGNyeXB0b3NpZ25hdHVyZQ=="
)

var (
	readyCtx  = pairing.Context{ShipmentID: "s1", BoxID: "b1", RequiresCode: true}
	noCodeCtx = pairing.Context{ShipmentID: "s1", BoxID: "b1"}
)

// fakeStore records inserts and answers from scripted hooks
type fakeStore struct {
	mu      sync.Mutex
	rows    []domain.ScanRow
	insert  func(domain.ScanRow) (string, error)
	lookup  func(string) (domain.ConflictLocation, error)
	state   domain.ShipmentState
	stateFn func(string, string) (domain.ShipmentState, error)
}

func (f *fakeStore) InsertScanRow(_ context.Context, row domain.ScanRow) (string, error) {
	f.mu.Lock()
	f.rows = append(f.rows, row)
	hook := f.insert
	n := len(f.rows)
	f.mu.Unlock()
	if hook != nil {
		return hook(row)
	}
	return "row-" + string(rune('0'+n)), nil
}

func (f *fakeStore) FindLastUseOfCode(_ context.Context, code string) (domain.ConflictLocation, error) {
	if f.lookup != nil {
		return f.lookup(code)
	}
	return domain.ConflictLocation{}, perr.ErrNotFound
}

func (f *fakeStore) ShipmentState(_ context.Context, shipmentID, boxID string) (domain.ShipmentState, error) {
	if f.stateFn != nil {
		return f.stateFn(shipmentID, boxID)
	}
	return f.state, nil
}

func (f *fakeStore) inserted() []domain.ScanRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ScanRow(nil), f.rows...)
}

func newTestSession(t *testing.T, st domain.Store, pctx pairing.Context) *Session {
	t.Helper()
	m := NewManager(st, Config{CommitTimeout: time.Second}, zerolog.Nop())
	s := m.Create("test")
	s.SetContext(pctx)
	t.Cleanup(s.Close)
	return s
}

func feed(t *testing.T, s *Session, packets ...string) {
	t.Helper()
	for _, p := range packets {
		s.Enqueue(p)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func lastEvent(s *Session) domain.Event {
	ev := s.Snapshot().Events
	return ev[len(ev)-1]
}

func TestScenarioA_BarcodeThenCode(t *testing.T) {
	st := &fakeStore{}
	s := newTestSession(t, st, readyCtx)

	feed(t, s, gtin+"\r\n")
	snap := s.Snapshot()
	if snap.Pending != gtin || snap.State != "awaiting_code" {
		t.Fatalf("after barcode: %+v", snap)
	}
	if len(st.inserted()) != 0 {
		t.Fatal("barcode alone must not commit")
	}

	feed(t, s, dmCode+"\r")
	rows := st.inserted()
	if len(rows) != 1 || rows[0].Barcode != gtin || rows[0].Code == nil || *rows[0].Code != dmFlat {
		t.Fatalf("rows = %+v", rows)
	}
	snap = s.Snapshot()
	if snap.Pending != "" || snap.Changes != 1 {
		t.Fatalf("after commit: %+v", snap)
	}
	if ev := lastEvent(s); ev.Kind != domain.EventCommitted || ev.Cue != domain.CueSuccess || ev.RowID == "" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestScenarioB_BarcodeCommitsWithoutCode(t *testing.T) {
	st := &fakeStore{}
	s := newTestSession(t, st, noCodeCtx)

	feed(t, s, gtin)
	rows := st.inserted()
	if len(rows) != 1 || rows[0].Code != nil || rows[0].ShipmentID != "s1" || rows[0].BoxID != "b1" {
		t.Fatalf("rows = %+v", rows)
	}
	if s.Snapshot().State != "idle" {
		t.Fatal("want idle")
	}
}

func TestScenarioC_CodeBeforeBarcode(t *testing.T) {
	st := &fakeStore{}
	s := newTestSession(t, st, readyCtx)

	feed(t, s, dmCode)
	if len(st.inserted()) != 0 {
		t.Fatal("no commit expected")
	}
	ev := lastEvent(s)
	if ev.Kind != domain.EventRejected || ev.Reject != pairing.BarcodeRequiredFirst || ev.Cue != domain.CueError {
		t.Fatalf("event = %+v", ev)
	}
}

func TestScenarioD_DuplicateBlocksUntilAck(t *testing.T) {
	seen := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	st := &fakeStore{
		lookup: func(string) (domain.ConflictLocation, error) {
			return domain.ConflictLocation{ShipmentID: "s0", ShipmentLabel: "Тула-2025-03-01-002", BoxLabel: "Box 4", LastSeenAt: seen}, nil
		},
	}
	var dupOnce sync.Once
	st.insert = func(row domain.ScanRow) (string, error) {
		var err error
		dupOnce.Do(func() {
			err = &domain.StoreConflict{Reason: domain.ReasonCodeAlreadyUsed, Message: "attached to another shipment"}
		})
		if err != nil {
			return "", err
		}
		return "ok", nil
	}
	s := newTestSession(t, st, readyCtx)

	// the second barcode is already queued when the duplicate is raised
	feed(t, s, gtin, "DUPCODE", "4600000000001")
	snap := s.Snapshot()
	if snap.Block == nil || snap.Block.Location == nil || snap.Block.Location.BoxLabel != "Box 4" {
		t.Fatalf("block = %+v", snap.Block)
	}
	if snap.Block.Reason != domain.ReasonCodeAlreadyUsed || snap.Block.Code != "DUPCODE" {
		t.Fatalf("block = %+v", snap.Block)
	}
	if snap.Pending != gtin || snap.Queued != 1 {
		t.Fatalf("state kept and queue held: %+v", snap)
	}
	if ev := lastEvent(s); ev.Kind != domain.EventBlocked || ev.Reject != domain.DuplicateMarkingCode {
		t.Fatalf("event = %+v", ev)
	}

	if got := s.Enqueue("4600000000002"); got != Dropped {
		t.Fatalf("Enqueue while blocked = %v, want Dropped", got)
	}
	if ev := lastEvent(s); ev.Kind != domain.EventDropped || ev.Reject != domain.InputBlocked {
		t.Fatalf("event = %+v", ev)
	}

	if !s.Ack() {
		t.Fatal("Ack should clear the block")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	snap = s.Snapshot()
	if snap.Block != nil || snap.Queued != 0 {
		t.Fatalf("after ack: %+v", snap)
	}
	// queued barcode resumed after the pending one was cleared
	if snap.Pending != "4600000000001" {
		t.Fatalf("pending = %q", snap.Pending)
	}
	if s.Ack() {
		t.Fatal("second Ack must be a no-op")
	}
}

func TestScenarioE_LockedRejectsEverything(t *testing.T) {
	st := &fakeStore{}
	locked := readyCtx
	locked.Locked = true
	s := newTestSession(t, st, locked)

	feed(t, s, gtin, dmCode, "B:1", "K:X")
	if len(st.inserted()) != 0 {
		t.Fatal("locked shipment must not commit")
	}
	snap := s.Snapshot()
	if snap.Pending != "" {
		t.Fatalf("state mutated: %+v", snap)
	}
	rejected := 0
	for _, ev := range snap.Events {
		if ev.Kind == domain.EventRejected {
			if ev.Reject != pairing.ShipmentLocked {
				t.Fatalf("reject = %s", ev.Reject)
			}
			rejected++
		}
	}
	if rejected != 4 {
		t.Fatalf("rejected = %d", rejected)
	}
}

func TestSession_ContextNotReady(t *testing.T) {
	st := &fakeStore{}
	s := newTestSession(t, st, pairing.Context{})
	feed(t, s, gtin)
	if ev := lastEvent(s); ev.Reject != pairing.ContextNotReady {
		t.Fatalf("event = %+v", ev)
	}
}

func TestSession_StoreErrorKeepsPending(t *testing.T) {
	st := &fakeStore{insert: func(domain.ScanRow) (string, error) { return "", errors.New("connection reset") }}
	s := newTestSession(t, st, readyCtx)

	feed(t, s, gtin, "CODE")
	snap := s.Snapshot()
	if snap.Pending != gtin || snap.Block != nil || snap.Changes != 0 {
		t.Fatalf("snap = %+v", snap)
	}
	if ev := lastEvent(s); ev.Reject != domain.StoreError || ev.Kind != domain.EventRejected {
		t.Fatalf("event = %+v", ev)
	}
}

func TestSession_LookupFailureStillBlocks(t *testing.T) {
	st := &fakeStore{
		insert: func(domain.ScanRow) (string, error) {
			return "", &domain.StoreConflict{Reason: domain.ReasonCodeDupInShipment}
		},
		lookup: func(string) (domain.ConflictLocation, error) { return domain.ConflictLocation{}, errors.New("timeout") },
	}
	s := newTestSession(t, st, readyCtx)
	feed(t, s, gtin, "CODE")
	b := s.Snapshot().Block
	if b == nil || b.Location != nil || b.Message != "marking code is already in this shipment" {
		t.Fatalf("block = %+v", b)
	}
}

func TestSession_PreservesArrivalOrder(t *testing.T) {
	var order []string
	var mu sync.Mutex
	st := &fakeStore{insert: func(r domain.ScanRow) (string, error) {
		mu.Lock()
		order = append(order, r.Barcode)
		mu.Unlock()
		time.Sleep(time.Millisecond)
		return "ok", nil
	}}
	s := newTestSession(t, st, noCodeCtx)

	want := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, b := range want {
			s.Enqueue(b)
		}
	}()
	wg.Wait()
	feed(t, s)

	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSession_OneCommitInFlight(t *testing.T) {
	var live, peak int
	var mu sync.Mutex
	st := &fakeStore{insert: func(domain.ScanRow) (string, error) {
		mu.Lock()
		live++
		if live > peak {
			peak = live
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		live--
		mu.Unlock()
		return "ok", nil
	}}
	s := newTestSession(t, st, noCodeCtx)
	for i := 0; i < 10; i++ {
		go s.Enqueue("460")
	}
	time.Sleep(5 * time.Millisecond)
	feed(t, s)
	if peak != 1 {
		t.Fatalf("peak in flight = %d", peak)
	}
}

func TestSession_EmptyPacketsIgnored(t *testing.T) {
	s := newTestSession(t, &fakeStore{}, readyCtx)
	for _, p := range []string{"", "\r\n", "   "} {
		if got := s.Enqueue(p); got != Ignored {
			t.Fatalf("Enqueue(%q) = %v", p, got)
		}
	}
}

func TestSession_PacketsEmptyAfterClassifyIgnored(t *testing.T) {
	st := &fakeStore{}
	s := newTestSession(t, st, readyCtx)

	feed(t, s, gtin)
	for _, p := range []string{"K:", "k: ", "\x1d", "\x1d\r\n", "B:"} {
		if got := s.Enqueue(p); got != Ignored {
			t.Fatalf("Enqueue(%q) = %v, want Ignored", p, got)
		}
	}
	feed(t, s)
	if n := len(st.inserted()); n != 0 {
		t.Fatalf("inserts = %d", n)
	}
	if snap := s.Snapshot(); snap.Pending != gtin {
		t.Fatalf("pending = %q", snap.Pending)
	}
}

func TestSession_ShippedMeanwhileLocksSession(t *testing.T) {
	st := &fakeStore{insert: func(domain.ScanRow) (string, error) {
		return "", &domain.StoreConflict{Reason: domain.ReasonShipmentLocked, Message: "shipment is already shipped"}
	}}
	s := newTestSession(t, st, noCodeCtx)

	feed(t, s, gtin)
	ev := lastEvent(s)
	if ev.Kind != domain.EventRejected || ev.Reject != pairing.ShipmentLocked || ev.Cue != domain.CueError {
		t.Fatalf("event = %+v", ev)
	}
	snap := s.Snapshot()
	if !snap.Context.Locked || snap.Block != nil || snap.Pending != "" {
		t.Fatalf("snap = %+v", snap)
	}

	// later packets stop at the lock without reaching the store
	feed(t, s, "4600000000001")
	if n := len(st.inserted()); n != 1 {
		t.Fatalf("inserts = %d", n)
	}
	if ev := lastEvent(s); ev.Reject != pairing.ShipmentLocked {
		t.Fatalf("event = %+v", ev)
	}
}

func TestSession_ContextChangeClearsPending(t *testing.T) {
	s := newTestSession(t, &fakeStore{}, readyCtx)
	feed(t, s, gtin)
	s.SetContext(pairing.Context{ShipmentID: "s1", BoxID: "b2", RequiresCode: true})
	if s.Snapshot().Pending != "" {
		t.Fatal("box change must clear the pending barcode")
	}
}

func TestSession_CancelPending(t *testing.T) {
	s := newTestSession(t, &fakeStore{}, readyCtx)
	if s.CancelPending() {
		t.Fatal("nothing pending")
	}
	feed(t, s, gtin)
	if !s.CancelPending() || s.Snapshot().Pending != "" {
		t.Fatal("pending not cancelled")
	}
	if ev := lastEvent(s); ev.Kind != domain.EventCancelled || ev.Barcode != gtin {
		t.Fatalf("event = %+v", ev)
	}
}

func TestSession_SubscribeAndRing(t *testing.T) {
	m := NewManager(&fakeStore{}, Config{EventRing: 3, SubscriberBuffer: 16}, zerolog.Nop())
	s := m.Create("")
	defer s.Close()
	ch, unsub := s.Subscribe()

	s.SetContext(readyCtx)
	feed(t, s, "1", "2", "3", "4")

	if n := len(s.Snapshot().Events); n != 3 {
		t.Fatalf("ring kept %d events", n)
	}
	if last := lastEvent(s); last.Seq != 5 {
		t.Fatalf("last seq = %d", last.Seq)
	}

	got := 0
	for len(ch) > 0 {
		<-ch
		got++
	}
	if got != 5 {
		t.Fatalf("subscriber got %d events", got)
	}
	unsub()
	unsub()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
}

func TestSession_ObserverSeesEvents(t *testing.T) {
	var mu sync.Mutex
	var kinds []domain.EventKind
	m := NewManager(&fakeStore{}, Config{}, zerolog.Nop())
	m.Observe(func(ev domain.Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	})
	s := m.Create("")
	defer s.Close()
	s.SetContext(noCodeCtx)
	feed(t, s, gtin)

	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != 2 || kinds[0] != domain.EventContext || kinds[1] != domain.EventCommitted {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestSession_CloseEndsSubscriptions(t *testing.T) {
	m := NewManager(&fakeStore{}, Config{}, zerolog.Nop())
	s := m.Create("")
	ch, _ := s.Subscribe()
	s.Close()
	if _, ok := <-ch; ok {
		t.Fatal("want closed channel")
	}
	if s.Enqueue(gtin) != Dropped {
		t.Fatal("closed session must drop")
	}
}
