package kanban

import (
	"fmt"

	"github.com/google/uuid"

	"jobmate/recruiting-board/internal/pipeline"
)

// Mode is the cardinality of a drag.
type Mode int

const (
	Individual Mode = iota
	Bulk
)

func (m Mode) String() string {
	if m == Bulk {
		return "bulk"
	}
	return "individual"
}

// Payload describes what a drag carries. Individual payloads capture their
// source stage at drag start; bulk payloads resolve it at drop time.
type Payload struct {
	Mode    Mode
	Refs    []Ref
	Source  pipeline.Stage
	Session string
}

func (p Payload) Count() int { return len(p.Refs) }

// Keys returns the carried DNIs in order.
func (p Payload) Keys() []string {
	out := make([]string, len(p.Refs))
	for i, r := range p.Refs {
		out[i] = r.DNI
	}
	return out
}

// Indicator is the text shown while a bulk drag is in flight.
func (p Payload) Indicator() string {
	if p.Mode != Bulk {
		return ""
	}
	return fmt.Sprintf("Moving %d candidates", p.Count())
}

// Drag interprets drag gestures against the selection. Only one session is
// active at a time.
type Drag struct {
	sel    *Selection
	board  Locator
	active *Payload
	held   string
}

// NewDrag wires a controller to sel and installs itself as sel's guard.
func NewDrag(sel *Selection, board Locator) *Drag {
	d := &Drag{sel: sel, board: board}
	sel.SetGuard(d)
	return d
}

// SetBoard points drop resolution at a freshly loaded board.
func (d *Drag) SetBoard(b Locator) { d.board = b }

// Start begins a drag of card. Dragging a card outside a non-empty
// selection clears the selection and moves just that card.
func (d *Drag) Start(card Card) Payload {
	p := Payload{Session: uuid.NewString()}
	switch {
	case d.sel.Len() == 0:
		p.Mode = Individual
		p.Refs = []Ref{card.Ref()}
		p.Source = card.Stage
	case d.sel.Contains(card.DNI):
		p.Mode = Bulk
		p.Refs = d.sel.Refs()
	default:
		d.sel.Clear()
		p.Mode = Individual
		p.Refs = []Ref{card.Ref()}
		p.Source = card.Stage
	}
	d.active = &p
	d.held = card.DNI
	return p
}

// Dragging implements DragGuard.
func (d *Drag) Dragging(dni string) bool {
	return d.active != nil && d.held == dni
}

// Active returns the in-flight payload.
func (d *Drag) Active() (Payload, bool) {
	if d.active == nil {
		return Payload{}, false
	}
	return *d.active, true
}

// Cancel ends the session without a drop.
func (d *Drag) Cancel() {
	d.active = nil
	d.held = ""
}

// Drop resolves the in-flight payload against target and ends the session.
// ok is false for the silent no-ops: no session, a bulk lead card that has
// left the board, or an individual card dropped on its own column.
func (d *Drag) Drop(target pipeline.Stage) (req Request, ok bool) {
	if d.active == nil {
		return Request{}, false
	}
	p := *d.active
	d.Cancel()

	if p.Mode == Bulk {
		if len(p.Refs) == 0 || d.board == nil {
			return Request{}, false
		}
		from, found := d.board.StageOf(p.Refs[0].DNI)
		if !found {
			return Request{}, false
		}
		return Request{Subjects: p.Refs, From: from, To: target, Bulk: true}, true
	}

	if p.Source == target {
		return Request{}, false
	}
	return Request{Subjects: p.Refs, From: p.Source, To: target}, true
}
