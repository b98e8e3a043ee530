// Package service contains the scan session workflows: queueing, pairing,
// committing and duplicate blocking
package service

import (
	"context"

	"github.com/rs/zerolog"

	"shipscan/internal/core/normalize"
	"shipscan/internal/core/pairing"
	"shipscan/internal/modkit/repokit"
	perr "shipscan/internal/platform/errors"
	"shipscan/internal/services/api/scan/domain"
	"shipscan/internal/services/api/scan/repo"
)

// Service defines the service contract for scan sessions
type Service interface {
	domain.ServicePort
	Sessions() *Manager
}

// Svc implements the Service interface
type Svc struct {
	Repo     repo.Repo
	binder   repokit.Binder[repo.Repo]
	db       repokit.TxRunner
	sessions *Manager
}

// New creates a new scan service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], cfg Config, log zerolog.Logger) *Svc {
	if db == nil {
		panic("scan.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("scan.Service requires a non nil Repo binder")
	}
	s := &Svc{Repo: binder.Bind(db), binder: binder, db: db}
	s.sessions = NewManager(txStore{db: db, binder: binder}, cfg, log)
	return s
}

// Sessions exposes the session manager for supervision and observers
func (s *Svc) Sessions() *Manager { return s.sessions }

// Create opens a session and applies the optional initial selection
func (s *Svc) Create(ctx context.Context, in domain.CreateSessionInput) (domain.Snapshot, error) {
	next, err := s.resolveContext(ctx, domain.ContextInput{
		ShipmentID:   in.ShipmentID,
		BoxID:        in.BoxID,
		RequiresCode: in.RequiresCode,
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	sess := s.sessions.Create(in.Station)
	if next != (pairing.Context{}) {
		sess.SetContext(next)
	}
	return sess.Snapshot(), nil
}

// Get returns a snapshot of session id
func (s *Svc) Get(_ context.Context, id string) (domain.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// SetContext selects the shipment and box a session scans into
func (s *Svc) SetContext(ctx context.Context, id string, in domain.ContextInput) (domain.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	next, err := s.resolveContext(ctx, in)
	if err != nil {
		return domain.Snapshot{}, err
	}
	sess.SetContext(next)
	return sess.Snapshot(), nil
}

// Enqueue feeds packets in order. With Wait it returns once the queue drained or blocked
func (s *Svc) Enqueue(ctx context.Context, id string, in domain.PacketsInput) (domain.EnqueueResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return domain.EnqueueResult{}, err
	}
	var res domain.EnqueueResult
	for _, p := range in.Packets {
		switch sess.Enqueue(p) {
		case Accepted:
			res.Accepted++
		case Dropped:
			res.Dropped++
		case Ignored:
			res.Ignored++
		}
	}
	if in.Wait {
		if err := sess.Wait(ctx); err != nil {
			return res, perr.Wrap(err, perr.ErrorCodeUnavailable, "waiting for the queue to drain")
		}
		snap := sess.Snapshot()
		res.Snapshot = &snap
	}
	return res, nil
}

// Ack acknowledges the duplicate block of session id
func (s *Svc) Ack(_ context.Context, id string) (domain.AckResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return domain.AckResult{}, err
	}
	cleared := sess.Ack()
	return domain.AckResult{Cleared: cleared, Snapshot: sess.Snapshot()}, nil
}

// CancelPending drops the barcode waiting for its marking code
func (s *Svc) CancelPending(_ context.Context, id string) (domain.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	sess.CancelPending()
	return sess.Snapshot(), nil
}

// Close ends session id
func (s *Svc) Close(_ context.Context, id string) error { return s.sessions.Close(id) }

// Subscribe streams the events of session id
func (s *Svc) Subscribe(_ context.Context, id string) (<-chan domain.Event, func(), error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.Subscribe()
	return ch, cancel, nil
}

// Where reports the last shipment and box a marking code was recorded in
func (s *Svc) Where(ctx context.Context, code string) (domain.ConflictLocation, error) {
	c := normalize.Code(normalize.TrimLineEnd(code))
	if c == "" {
		return domain.ConflictLocation{}, perr.WithField(perr.InvalidArgf("code is required"), "code")
	}
	return s.Repo.LastUseOfCode(ctx, c)
}

// resolveContext reads lock state from the store. An empty selection is valid and not ready
func (s *Svc) resolveContext(ctx context.Context, in domain.ContextInput) (pairing.Context, error) {
	next := pairing.Context{ShipmentID: in.ShipmentID, BoxID: in.BoxID, RequiresCode: in.RequiresCode}
	if in.ShipmentID == "" {
		if in.BoxID != "" {
			return pairing.Context{}, perr.WithField(perr.InvalidArgf("box selected without a shipment"), "shipment_id")
		}
		return next, nil
	}
	st, err := s.Repo.ShipmentState(ctx, in.ShipmentID, in.BoxID)
	if err != nil {
		return pairing.Context{}, perr.WithField(err, "shipment_id")
	}
	if in.BoxID != "" && !st.BoxFound {
		return pairing.Context{}, perr.WithField(perr.NotFoundf("box %s not found in shipment", in.BoxID), "box_id")
	}
	next.Locked = st.Locked()
	return next, nil
}

// txStore runs the catalog lookup and the insert in one transaction
type txStore struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
}

// InsertScanRow autofills catalog fields and calls scan_kiz in one
// transaction. A transaction aborted by a serialization failure or deadlock
// never wrote anything and is run once more
func (t txStore) InsertScanRow(ctx context.Context, row domain.ScanRow) (string, error) {
	var id string
	insert := func(q repokit.Queryer) error {
		r := t.binder.Bind(q)
		item, err := r.CatalogItem(ctx, row.Barcode)
		if err != nil {
			return err
		}
		id, err = r.ScanKiz(ctx, row, item)
		return err
	}
	err := t.db.Tx(ctx, insert)
	if err != nil && perr.IsRetryable(err) && ctx.Err() == nil {
		err = t.db.Tx(ctx, insert)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t txStore) FindLastUseOfCode(ctx context.Context, code string) (domain.ConflictLocation, error) {
	return t.binder.Bind(t.db).LastUseOfCode(ctx, code)
}

func (t txStore) ShipmentState(ctx context.Context, shipmentID, boxID string) (domain.ShipmentState, error) {
	return t.binder.Bind(t.db).ShipmentState(ctx, shipmentID, boxID)
}

var _ domain.Store = txStore{}
