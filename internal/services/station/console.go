package station

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shipscan/internal/services/api/scan/domain"
)

// ErrQuit is returned by Handle on /quit
var ErrQuit = errors.New("station: quit")

// Console turns input lines into session calls. Lines starting with a slash are
// commands, everything else is a scanner packet
type Console struct {
	svc   domain.ServicePort
	store *Store
	out   *Printer

	id      string
	state   State
	lastSeq uint64
}

// NewConsole builds a console. store may be nil, then nothing is persisted
func NewConsole(svc domain.ServicePort, store *Store, out *Printer) *Console {
	return &Console{svc: svc, store: store, out: out}
}

// Start opens the session and restores the saved selection when it is still valid
func (c *Console) Start(ctx context.Context, station string) error {
	c.state = State{Station: station}
	if c.store != nil {
		saved, ok, err := c.store.Load()
		if err != nil {
			return err
		}
		if ok {
			c.state = saved
			if station != "" {
				c.state.Station = station
			}
		}
	}

	snap, err := c.svc.Create(ctx, domain.CreateSessionInput{
		Station:      c.state.Station,
		ShipmentID:   c.state.ShipmentID,
		BoxID:        c.state.BoxID,
		RequiresCode: c.state.RequiresCode,
	})
	if err != nil && c.state.ShipmentID != "" {
		c.out.Errorf("saved selection not restored: %v", err)
		c.state.ShipmentID, c.state.BoxID = "", ""
		snap, err = c.svc.Create(ctx, domain.CreateSessionInput{
			Station:      c.state.Station,
			RequiresCode: c.state.RequiresCode,
		})
	}
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	c.id = snap.ID
	c.out.Infof("session %s ready", c.id)
	c.events(snap)
	return nil
}

// SessionID is the id of the running session
func (c *Console) SessionID() string { return c.id }

// Handle processes one input line
func (c *Console) Handle(ctx context.Context, line string) error {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return c.scan(ctx, line)
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "/quit", "/exit":
		return ErrQuit
	case "/ack":
		res, err := c.svc.Ack(ctx, c.id)
		if err != nil {
			return err
		}
		if !res.Cleared {
			c.out.Infof("nothing to acknowledge")
		}
		c.events(res.Snapshot)
	case "/cancel":
		snap, err := c.svc.CancelPending(ctx, c.id)
		if err != nil {
			return err
		}
		c.events(snap)
	case "/mode":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			c.out.Errorf("usage: /mode on|off")
			return nil
		}
		next := c.state
		next.RequiresCode = args[0] == "on"
		return c.choose(ctx, next)
	case "/shipment":
		if len(args) != 1 {
			c.out.Errorf("usage: /shipment <id>")
			return nil
		}
		next := c.state
		next.ShipmentID, next.BoxID = args[0], ""
		return c.choose(ctx, next)
	case "/box":
		if len(args) != 1 {
			c.out.Errorf("usage: /box <id>")
			return nil
		}
		next := c.state
		next.BoxID = args[0]
		return c.choose(ctx, next)
	case "/status":
		snap, err := c.svc.Get(ctx, c.id)
		if err != nil {
			return err
		}
		c.out.Snapshot(snap)
	case "/where":
		if len(args) != 1 {
			c.out.Errorf("usage: /where <code>")
			return nil
		}
		loc, err := c.svc.Where(ctx, args[0])
		if err != nil {
			return err
		}
		c.out.Infof("%s / %s, last seen %s", loc.ShipmentLabel, loc.BoxLabel, loc.LastSeenAt.Format("2006-01-02 15:04"))
	default:
		c.out.Errorf("unknown command %s", cmd)
	}
	return nil
}

// Close ends the session
func (c *Console) Close(ctx context.Context) error {
	if c.id == "" {
		return nil
	}
	return c.svc.Close(ctx, c.id)
}

func (c *Console) scan(ctx context.Context, packet string) error {
	res, err := c.svc.Enqueue(ctx, c.id, domain.PacketsInput{Packets: []string{packet}, Wait: true})
	if err != nil {
		return err
	}
	if res.Snapshot != nil {
		c.events(*res.Snapshot)
	}
	return nil
}

func (c *Console) choose(ctx context.Context, next State) error {
	snap, err := c.svc.SetContext(ctx, c.id, domain.ContextInput{
		ShipmentID:   next.ShipmentID,
		BoxID:        next.BoxID,
		RequiresCode: next.RequiresCode,
	})
	if err != nil {
		return err
	}
	c.state = next
	c.events(snap)
	if c.store == nil {
		return nil
	}
	return c.store.Save(next)
}

// events prints what the snapshot holds beyond the last printed sequence
func (c *Console) events(s domain.Snapshot) {
	for _, ev := range s.Events {
		if ev.Seq <= c.lastSeq {
			continue
		}
		c.out.Event(ev)
		c.lastSeq = ev.Seq
	}
}
