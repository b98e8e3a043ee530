package station

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"shipscan/internal/services/api/scan/domain"
)

// Printer writes events with a colored cue. Bell rings the terminal on errors
type Printer struct {
	w    io.Writer
	Bell bool

	ok   *color.Color
	bad  *color.Color
	info *color.Color
}

// NewPrinter builds a printer on w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:    w,
		Bell: true,
		ok:   color.New(color.FgGreen, color.Bold),
		bad:  color.New(color.FgRed, color.Bold),
		info: color.New(color.FgCyan),
	}
}

// Event prints one session event
func (p *Printer) Event(ev domain.Event) {
	switch ev.Cue {
	case domain.CueSuccess:
		p.ok.Fprintf(p.w, "OK    %s\n", describe(ev))
	case domain.CueError:
		if p.Bell {
			fmt.Fprint(p.w, "\a")
		}
		p.bad.Fprintf(p.w, "ERROR %s\n", describe(ev))
	default:
		p.info.Fprintf(p.w, "..    %s\n", describe(ev))
	}
}

// Infof prints an informational line
func (p *Printer) Infof(format string, args ...any) {
	p.info.Fprintf(p.w, format+"\n", args...)
}

// Errorf prints a local failure, not tied to a session event
func (p *Printer) Errorf(format string, args ...any) {
	p.bad.Fprintf(p.w, format+"\n", args...)
}

// Snapshot prints the session state for /status
func (p *Printer) Snapshot(s domain.Snapshot) {
	fmt.Fprintf(p.w, "session   %s (%s)\n", s.ID, s.State)
	fmt.Fprintf(p.w, "shipment  %s\n", orDash(s.Context.ShipmentID))
	fmt.Fprintf(p.w, "box       %s\n", orDash(s.Context.BoxID))
	fmt.Fprintf(p.w, "kiz mode  %v\n", s.Context.RequiresCode)
	if s.Context.Locked {
		p.bad.Fprintln(p.w, "shipment is shipped, scanning is locked")
	}
	if s.Pending != "" {
		fmt.Fprintf(p.w, "pending   %s\n", s.Pending)
	}
	fmt.Fprintf(p.w, "queued    %d\n", s.Queued)
	fmt.Fprintf(p.w, "changes   %d\n", s.Changes)
	if s.Block != nil {
		p.bad.Fprintf(p.w, "BLOCKED   %s, /ack to continue\n", s.Block.Message)
	}
}

func describe(ev domain.Event) string {
	msg := ev.Message
	if msg == "" {
		msg = string(ev.Kind)
	}
	switch {
	case ev.Barcode != "" && ev.Code != "":
		return fmt.Sprintf("%s [%s + %s]", msg, ev.Barcode, ev.Code)
	case ev.Barcode != "":
		return fmt.Sprintf("%s [%s]", msg, ev.Barcode)
	case ev.Code != "":
		return fmt.Sprintf("%s [%s]", msg, ev.Code)
	}
	return msg
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
