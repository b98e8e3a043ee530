package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"shipscan/internal/modkit/repokit"
	perr "shipscan/internal/platform/errors"
	"shipscan/internal/platform/testkit"
	"shipscan/internal/services/api/scan/domain"
	"shipscan/internal/services/api/scan/repo"
)

type fakeTx struct{ txCalls int }

func (f *fakeTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (f *fakeTx) Query(context.Context, string, ...any) (repokit.Rows, error)      { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) repokit.Row             { return nil }
func (f *fakeTx) Tx(_ context.Context, fn func(q repokit.Queryer) error) error {
	f.txCalls++
	return fn(f)
}

type fakeRepo struct {
	state   domain.ShipmentState
	stateEr error
	item    repo.CatalogItem
	scanned []domain.ScanRow
	items   []repo.CatalogItem
	where   string
	scanErr []error // returned by successive ScanKiz calls
}

func (r *fakeRepo) CatalogItem(context.Context, string) (repo.CatalogItem, error) { return r.item, nil }
func (r *fakeRepo) ScanKiz(_ context.Context, row domain.ScanRow, it repo.CatalogItem) (string, error) {
	if len(r.scanErr) > 0 {
		err := r.scanErr[0]
		r.scanErr = r.scanErr[1:]
		if err != nil {
			return "", err
		}
	}
	r.scanned = append(r.scanned, row)
	r.items = append(r.items, it)
	return "row-1", nil
}
func (r *fakeRepo) LastUseOfCode(_ context.Context, code string) (domain.ConflictLocation, error) {
	r.where = code
	return domain.ConflictLocation{ShipmentLabel: "L"}, nil
}
func (r *fakeRepo) ShipmentState(context.Context, string, string) (domain.ShipmentState, error) {
	return r.state, r.stateEr
}

func newTestSvc(r *fakeRepo) (*Svc, *fakeTx) {
	tx := &fakeTx{}
	b := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return r })
	return New(tx, b, Config{}, zerolog.Nop()), tx
}

const (
	shipID = "4b1f3b5e-8c1d-4c57-9a3e-2f1b2a0c9d11"
	boxID  = "6a0e7c1e-0b0e-4c1e-8f5d-3c2b1a0d9e8f"
)

func TestNew_PanicsOnNil(t *testing.T) {
	testkit.MustPanic(t, func() { New(nil, repo.NewPG(), Config{}, zerolog.Nop()) })
	testkit.MustPanic(t, func() { New(&fakeTx{}, nil, Config{}, zerolog.Nop()) })
}

func TestSvc_CreateAndEnqueueWait(t *testing.T) {
	r := &fakeRepo{
		state: domain.ShipmentState{ShipmentID: shipID, Status: "draft", BoxFound: true},
		item:  repo.CatalogItem{WBCode: "123", Size: "M"},
	}
	svc, tx := newTestSvc(r)
	ctx := context.Background()

	snap, err := svc.Create(ctx, domain.CreateSessionInput{Station: "desk", ShipmentID: shipID, BoxID: boxID})
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Context.Ready() || snap.Context.Locked {
		t.Fatalf("context = %+v", snap.Context)
	}

	res, err := svc.Enqueue(ctx, snap.ID, domain.PacketsInput{Packets: []string{"4601234567890", ""}, Wait: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Accepted != 1 || res.Ignored != 1 || res.Snapshot == nil || res.Snapshot.Changes != 1 {
		t.Fatalf("res = %+v", res)
	}
	if tx.txCalls != 1 || len(r.scanned) != 1 || r.items[0].WBCode != "123" {
		t.Fatalf("tx=%d scanned=%v", tx.txCalls, r.scanned)
	}
}

func TestSvc_SetContextLockedShipment(t *testing.T) {
	r := &fakeRepo{state: domain.ShipmentState{Status: "shipped", BoxFound: true}}
	svc, _ := newTestSvc(r)
	ctx := context.Background()
	snap, _ := svc.Create(ctx, domain.CreateSessionInput{})

	snap, err := svc.SetContext(ctx, snap.ID, domain.ContextInput{ShipmentID: shipID, BoxID: boxID, RequiresCode: true})
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Context.Locked {
		t.Fatal("shipped shipment must lock the session")
	}
}

func TestSvc_SetContextErrors(t *testing.T) {
	r := &fakeRepo{state: domain.ShipmentState{Status: "draft"}}
	svc, _ := newTestSvc(r)
	ctx := context.Background()
	snap, _ := svc.Create(ctx, domain.CreateSessionInput{})

	_, err := svc.SetContext(ctx, snap.ID, domain.ContextInput{ShipmentID: shipID, BoxID: boxID})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing box err = %v", err)
	}
	_, err = svc.SetContext(ctx, snap.ID, domain.ContextInput{BoxID: boxID})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("box without shipment err = %v", err)
	}
	r.stateEr = perr.NotFoundf("shipment not found")
	if _, err = svc.SetContext(ctx, snap.ID, domain.ContextInput{ShipmentID: shipID}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing shipment err = %v", err)
	}
	if _, err = svc.SetContext(ctx, "nope", domain.ContextInput{}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown session err = %v", err)
	}
}

func TestSvc_AckCancelClose(t *testing.T) {
	r := &fakeRepo{state: domain.ShipmentState{Status: "draft", BoxFound: true}}
	svc, _ := newTestSvc(r)
	ctx := context.Background()
	snap, _ := svc.Create(ctx, domain.CreateSessionInput{ShipmentID: shipID, BoxID: boxID, RequiresCode: true})

	ack, err := svc.Ack(ctx, snap.ID)
	if err != nil || ack.Cleared {
		t.Fatalf("ack = %+v %v", ack, err)
	}

	if _, err := svc.Enqueue(ctx, snap.ID, domain.PacketsInput{Packets: []string{"460"}, Wait: true}); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.CancelPending(ctx, snap.ID)
	if got.Pending != "" {
		t.Fatal("pending not cleared")
	}

	if err := svc.Close(ctx, snap.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, snap.ID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSvc_Subscribe(t *testing.T) {
	svc, _ := newTestSvc(&fakeRepo{})
	ctx := context.Background()
	snap, _ := svc.Create(ctx, domain.CreateSessionInput{})
	ch, cancel, err := svc.Subscribe(ctx, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()
	if _, err := svc.Enqueue(ctx, snap.ID, domain.PacketsInput{Packets: []string{"1"}}); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-ch:
		if ev.Kind != domain.EventRejected {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}

func TestSvc_WhereNormalizes(t *testing.T) {
	r := &fakeRepo{}
	svc, _ := newTestSvc(r)
	if _, err := svc.Where(context.Background(), " АВС 1\r\n"); err != nil {
		t.Fatal(err)
	}
	if r.where != "ABC1" {
		t.Fatalf("looked up %q", r.where)
	}
	if _, err := svc.Where(context.Background(), "  "); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestTxStore_RerunsAbortedTransactionOnce(t *testing.T) {
	serialization := perr.FromPostgres(&pgconn.PgError{Code: "40001"}, "scan_kiz")
	r := &fakeRepo{scanErr: []error{serialization}}
	tx := &fakeTx{}
	st := txStore{db: tx, binder: repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return r })}

	id, err := st.InsertScanRow(context.Background(), domain.ScanRow{ShipmentID: shipID, BoxID: boxID, Barcode: "1"})
	if err != nil || id != "row-1" || tx.txCalls != 2 {
		t.Fatalf("id=%q err=%v tx=%d", id, err, tx.txCalls)
	}

	r.scanErr = []error{serialization, serialization}
	tx.txCalls = 0
	if _, err := st.InsertScanRow(context.Background(), domain.ScanRow{Barcode: "1"}); err == nil || tx.txCalls != 2 {
		t.Fatalf("err=%v tx=%d", err, tx.txCalls)
	}

	r.scanErr = []error{perr.FromPostgres(&pgconn.PgError{Code: "P0001", Message: "CODE_ALREADY_USED"}, "scan_kiz")}
	tx.txCalls = 0
	if _, err := st.InsertScanRow(context.Background(), domain.ScanRow{Barcode: "1"}); err == nil || tx.txCalls != 1 {
		t.Fatalf("conflicts are not rerun: err=%v tx=%d", err, tx.txCalls)
	}
}
