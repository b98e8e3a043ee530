package station

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"shipscan/internal/core/pairing"
	perr "shipscan/internal/platform/errors"
	"shipscan/internal/services/api/scan/domain"
)

// fakeSvc keeps one session and appends an event per call
type fakeSvc struct {
	snap      domain.Snapshot
	created   []domain.CreateSessionInput
	contexts  []domain.ContextInput
	packets   []string
	rejectIDs map[string]bool
	closed    bool
	cleared   bool
}

func (f *fakeSvc) push(kind domain.EventKind, cue domain.Cue, msg string) {
	f.snap.Events = append(f.snap.Events, domain.Event{
		Seq: uint64(len(f.snap.Events) + 1), Kind: kind, Cue: cue, Message: msg,
	})
}

func (f *fakeSvc) Create(_ context.Context, in domain.CreateSessionInput) (domain.Snapshot, error) {
	f.created = append(f.created, in)
	if f.rejectIDs[in.ShipmentID] {
		return domain.Snapshot{}, perr.NotFoundf("shipment %s not found", in.ShipmentID)
	}
	f.snap = domain.Snapshot{ID: "sess-1", Station: in.Station, Context: pairing.Context{
		ShipmentID: in.ShipmentID, BoxID: in.BoxID, RequiresCode: in.RequiresCode,
	}}
	return f.snap, nil
}

func (f *fakeSvc) Get(context.Context, string) (domain.Snapshot, error) { return f.snap, nil }

func (f *fakeSvc) SetContext(_ context.Context, _ string, in domain.ContextInput) (domain.Snapshot, error) {
	if f.rejectIDs[in.ShipmentID] {
		return domain.Snapshot{}, perr.NotFoundf("shipment %s not found", in.ShipmentID)
	}
	f.contexts = append(f.contexts, in)
	f.snap.Context = pairing.Context{ShipmentID: in.ShipmentID, BoxID: in.BoxID, RequiresCode: in.RequiresCode}
	f.push(domain.EventContext, domain.CueNone, "context changed")
	return f.snap, nil
}

func (f *fakeSvc) Enqueue(_ context.Context, _ string, in domain.PacketsInput) (domain.EnqueueResult, error) {
	f.packets = append(f.packets, in.Packets...)
	if in.Packets[0] == "bad" {
		f.push(domain.EventRejected, domain.CueError, "invalid barcode format")
	} else {
		f.push(domain.EventCommitted, domain.CueSuccess, "saved")
	}
	snap := f.snap
	return domain.EnqueueResult{Accepted: len(in.Packets), Snapshot: &snap}, nil
}

func (f *fakeSvc) Ack(context.Context, string) (domain.AckResult, error) {
	return domain.AckResult{Cleared: f.cleared, Snapshot: f.snap}, nil
}

func (f *fakeSvc) CancelPending(context.Context, string) (domain.Snapshot, error) {
	f.push(domain.EventCancelled, domain.CueNone, "pending cancelled")
	return f.snap, nil
}

func (f *fakeSvc) Close(context.Context, string) error {
	f.closed = true
	return nil
}

func (f *fakeSvc) Subscribe(context.Context, string) (<-chan domain.Event, func(), error) {
	return nil, func() {}, errors.New("not used")
}

func (f *fakeSvc) Where(context.Context, string) (domain.ConflictLocation, error) {
	return domain.ConflictLocation{ShipmentLabel: "Тула-2025-01-02-001", BoxLabel: "Box 2"}, nil
}

var _ = Describe("Console", func() {
	var (
		ctx     context.Context
		svc     *fakeSvc
		store   *Store
		out     *bytes.Buffer
		console *Console
	)

	BeforeEach(func() {
		ctx = context.Background()
		svc = &fakeSvc{rejectIDs: map[string]bool{}}
		out = &bytes.Buffer{}
		var err error
		store, err = OpenStore(filepath.Join(GinkgoT().TempDir(), "station.db"))
		Expect(err).NotTo(HaveOccurred())
		console = NewConsole(svc, store, NewPrinter(out))
	})

	AfterEach(func() {
		_ = store.Close()
	})

	Describe("Start", func() {
		It("opens a session with the saved selection", func() {
			Expect(store.Save(State{Station: "desk-1", ShipmentID: "s-1", BoxID: "b-1", RequiresCode: true})).To(Succeed())
			Expect(console.Start(ctx, "")).To(Succeed())

			Expect(svc.created).To(HaveLen(1))
			Expect(svc.created[0].Station).To(Equal("desk-1"))
			Expect(svc.created[0].ShipmentID).To(Equal("s-1"))
			Expect(svc.created[0].RequiresCode).To(BeTrue())
			Expect(console.SessionID()).To(Equal("sess-1"))
		})

		It("falls back to an empty selection when the saved shipment is gone", func() {
			Expect(store.Save(State{ShipmentID: "gone", BoxID: "b-1"})).To(Succeed())
			svc.rejectIDs["gone"] = true

			Expect(console.Start(ctx, "desk-3")).To(Succeed())
			Expect(svc.created).To(HaveLen(2))
			Expect(svc.created[1].ShipmentID).To(BeEmpty())
			Expect(svc.created[1].Station).To(Equal("desk-3"))
			Expect(out.String()).To(ContainSubstring("saved selection not restored"))
		})
	})

	Describe("Handle", func() {
		BeforeEach(func() {
			Expect(console.Start(ctx, "desk-1")).To(Succeed())
		})

		It("feeds packets and prints the cue", func() {
			Expect(console.Handle(ctx, "4601234567890\r\n")).To(Succeed())
			Expect(svc.packets).To(Equal([]string{"4601234567890"}))
			Expect(out.String()).To(ContainSubstring("OK    saved"))
		})

		It("rings the bell on errors", func() {
			Expect(console.Handle(ctx, "bad")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("\aERROR invalid barcode format"))
		})

		It("prints each event once", func() {
			Expect(console.Handle(ctx, "1")).To(Succeed())
			Expect(console.Handle(ctx, "2")).To(Succeed())
			Expect(bytes.Count(out.Bytes(), []byte("OK    saved"))).To(Equal(2))
		})

		It("ignores blank lines", func() {
			Expect(console.Handle(ctx, "   ")).To(Succeed())
			Expect(svc.packets).To(BeEmpty())
		})

		It("switches shipment, clears the box and persists the selection", func() {
			Expect(console.Handle(ctx, "/shipment s-9")).To(Succeed())
			Expect(console.Handle(ctx, "/box b-4")).To(Succeed())
			Expect(console.Handle(ctx, "/mode on")).To(Succeed())
			Expect(console.Handle(ctx, "/shipment s-10")).To(Succeed())

			last := svc.contexts[len(svc.contexts)-1]
			Expect(last).To(Equal(domain.ContextInput{ShipmentID: "s-10", RequiresCode: true}))

			st, ok, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(st.ShipmentID).To(Equal("s-10"))
			Expect(st.BoxID).To(BeEmpty())
			Expect(st.RequiresCode).To(BeTrue())
		})

		It("keeps the selection when the service rejects it", func() {
			svc.rejectIDs["nope"] = true
			Expect(console.Handle(ctx, "/shipment nope")).To(HaveOccurred())
			st, ok, _ := store.Load()
			Expect(ok).To(BeFalse())
			Expect(st.ShipmentID).To(BeEmpty())
		})

		It("validates /mode arguments", func() {
			Expect(console.Handle(ctx, "/mode maybe")).To(Succeed())
			Expect(svc.contexts).To(BeEmpty())
			Expect(out.String()).To(ContainSubstring("usage: /mode on|off"))
		})

		It("reports an ack with nothing blocked", func() {
			Expect(console.Handle(ctx, "/ack")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("nothing to acknowledge"))
		})

		It("cancels the pending barcode", func() {
			Expect(console.Handle(ctx, "/cancel")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("pending cancelled"))
		})

		It("prints the status", func() {
			svc.snap.Block = &domain.DuplicateBlock{Message: "code already used"}
			Expect(console.Handle(ctx, "/status")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("session   sess-1"))
			Expect(out.String()).To(ContainSubstring("BLOCKED   code already used"))
		})

		It("looks up where a code was used", func() {
			Expect(console.Handle(ctx, "/where 0104601234567890")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Тула-2025-01-02-001 / Box 2"))
		})

		It("rejects unknown commands", func() {
			Expect(console.Handle(ctx, "/dance")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("unknown command /dance"))
		})

		It("stops on /quit and closes the session", func() {
			Expect(console.Handle(ctx, "/quit")).To(MatchError(ErrQuit))
			Expect(console.Close(ctx)).To(Succeed())
			Expect(svc.closed).To(BeTrue())
		})
	})
})
