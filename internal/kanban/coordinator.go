// Package kanban turns board gestures into validated stage transitions.
//
// Gestures arrive as Events. The Coordinator feeds them through the
// Selection and Drag models, asks Route what a transition needs, and hands
// back an Outcome: nothing, a rejection notice, a direct submission, a bulk
// confirmation or a gating form. Nothing on the board changes until the
// backend commits and the board is reloaded.
package kanban

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jobmate/recruiting-board/internal/gateway"
	"jobmate/recruiting-board/internal/pipeline"
)

// ErrBusy is returned when a submission is attempted while another one is
// still in flight.
var ErrBusy = errors.New("an update is already in progress")

// Submitter sends a resolved transition to the backend.
type Submitter interface {
	Submit(ctx context.Context, s gateway.Submission) (gateway.Result, error)
}

// Publisher broadcasts committed moves to other boards.
type Publisher interface {
	Publish(ctx context.Context, ev MoveEvent)
}

// Outcome is what the UI must do after an event.
type Outcome struct {
	Action Action
	// Indicator is the transient drag label ("Moving 3 candidates").
	Indicator string
}

// Coordinator owns the selection, the drag session and the current board.
// Handle, BulkAction, Confirm and SetBoard run on the UI loop; Execute may
// run on any goroutine.
type Coordinator struct {
	sel     *Selection
	drag    *Drag
	board   *Board
	submit  Submitter
	feed    Publisher
	log     logrus.FieldLogger
	busy    atomic.Bool
	pending *Action
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithPublisher broadcasts committed moves through p.
func WithPublisher(p Publisher) Option { return func(c *Coordinator) { c.feed = p } }

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option { return func(c *Coordinator) { c.log = l } }

// NewCoordinator returns a coordinator over an empty board.
func NewCoordinator(submit Submitter, opts ...Option) *Coordinator {
	sel := NewSelection()
	board := NewBoard(nil)
	c := &Coordinator{
		sel:    sel,
		drag:   NewDrag(sel, board),
		board:  board,
		submit: submit,
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.WithField("component", "coordinator")
	return c
}

func (c *Coordinator) Selection() *Selection { return c.sel }
func (c *Coordinator) Board() *Board         { return c.board }
func (c *Coordinator) Drag() *Drag           { return c.drag }

// SetBoard installs a freshly loaded board. After a committed change the
// selection is discarded; a background refresh keeps it but drops cards
// that left the board.
func (c *Coordinator) SetBoard(b *Board, discardSelection bool) {
	if b == nil {
		b = NewBoard(nil)
	}
	c.board = b
	c.drag.SetBoard(b)
	if discardSelection {
		c.drag.Cancel()
		c.pending = nil
		c.sel.Clear()
		return
	}
	for _, ref := range c.sel.Refs() {
		if _, ok := b.Locate(ref.DNI); !ok {
			c.sel.prune(ref.DNI)
		}
	}
}

// Handle processes one gesture.
func (c *Coordinator) Handle(ev Event) Outcome {
	switch e := ev.(type) {
	case CardToggled:
		c.sel.Toggle(e.Card.Ref())
		return Outcome{}

	case DragStarted:
		p := c.drag.Start(e.Card)
		c.log.WithFields(logrus.Fields{"mode": p.Mode, "count": p.Count(), "session": p.Session}).Debug("drag started")
		return Outcome{Indicator: p.Indicator()}

	case DragCancelled:
		c.drag.Cancel()
		return Outcome{}

	case Dropped:
		target, err := pipeline.FromColumn(e.ColumnID)
		if err != nil {
			c.drag.Cancel()
			c.sel.Clear()
			return Outcome{Action: Action{Kind: KindReject, Message: "Unknown target column."}}
		}
		req, ok := c.drag.Drop(target)
		if !ok {
			return Outcome{}
		}
		return Outcome{Action: c.resolve(Route(req))}

	case BulkActionRequested:
		return Outcome{Action: c.BulkAction(e.Target)}
	}
	return Outcome{}
}

// BulkAction applies target to the whole selection. Every selected card must
// sit in the first card's column; otherwise nothing happens and the
// selection is kept so it can be corrected.
func (c *Coordinator) BulkAction(target pipeline.Stage) Action {
	refs := c.sel.Refs()
	if len(refs) == 0 {
		return Action{Kind: KindReject, Message: MsgEmptySelection}
	}
	from, ok := c.board.StageOf(refs[0].DNI)
	if !ok {
		return Action{Kind: KindReject, Message: "The first selected candidate is no longer on the board."}
	}
	for _, r := range refs[1:] {
		if st, ok := c.board.StageOf(r.DNI); !ok || st != from {
			return Action{Kind: KindReject, Message: MsgMixedSourceStages}
		}
	}
	return c.resolve(Route(Request{Subjects: refs, From: from, To: target, Bulk: true}))
}

// resolve applies the post-routing bookkeeping: the selection is cleared
// on every resolution and a confirmation is parked until answered.
func (c *Coordinator) resolve(a Action) Action {
	c.sel.Clear()
	c.pending = nil
	if a.Kind == KindConfirm {
		pending := a
		c.pending = &pending
	}
	c.log.WithFields(logrus.Fields{
		"kind":  a.Kind,
		"modal": a.Modal,
		"from":  a.Request.From,
		"to":    a.Request.To,
		"count": a.Count(),
	}).Info("transition routed")
	return a
}

// Pending returns the confirmation awaiting an answer.
func (c *Coordinator) Pending() (Action, bool) {
	if c.pending == nil {
		return Action{}, false
	}
	return *c.pending, true
}

// Confirm answers the pending confirmation. On accept it returns the
// submission to execute.
func (c *Coordinator) Confirm(accept bool) (gateway.Submission, bool) {
	if c.pending == nil {
		return gateway.Submission{}, false
	}
	a := *c.pending
	c.pending = nil
	if !accept {
		return gateway.Submission{}, false
	}
	return a.Submission, true
}

// Busy reports whether a submission is in flight.
func (c *Coordinator) Busy() bool { return c.busy.Load() }

// Execute sends s. Only one submission runs at a time.
func (c *Coordinator) Execute(ctx context.Context, s gateway.Submission) (gateway.Result, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return gateway.Result{}, ErrBusy
	}
	defer c.busy.Store(false)

	log := c.log.WithFields(logrus.Fields{"stage": s.Stage, "count": s.Count(), "bulk": s.Bulk})
	res, err := c.submit.Submit(ctx, s)
	if err != nil {
		log.WithError(err).Warn("transition failed")
		return gateway.Result{}, err
	}
	log.Info("transition committed")

	if c.feed != nil {
		c.feed.Publish(ctx, MoveEvent{
			Type: EventCardMoved,
			DNIs: s.DNIs,
			From: s.From.Code(),
			To:   s.Stage.Code(),
			At:   time.Now().UTC().Format(time.RFC3339),
		})
	}
	return res, nil
}
