package kanban

import (
	"fmt"

	"jobmate/recruiting-board/internal/gateway"
	"jobmate/recruiting-board/internal/pipeline"
)

// Request is a proposed stage change for one or more candidates.
type Request struct {
	Subjects []Ref
	From     pipeline.Stage
	To       pipeline.Stage
	// Bulk comes from the gesture (a selection drag or the toolbar), not
	// from the number of subjects.
	Bulk bool
}

func (r Request) Count() int { return len(r.Subjects) }

// DNIs returns the subject keys in order.
func (r Request) DNIs() []string {
	out := make([]string, len(r.Subjects))
	for i, s := range r.Subjects {
		out[i] = s.DNI
	}
	return out
}

// Kind is what the router decided.
type Kind int

const (
	// KindNone is an inert outcome: nothing to show, nothing to send.
	KindNone Kind = iota
	KindReject
	KindSubmit
	KindConfirm
	KindModal
)

func (k Kind) String() string {
	switch k {
	case KindReject:
		return "reject"
	case KindSubmit:
		return "submit"
	case KindConfirm:
		return "confirm"
	case KindModal:
		return "modal"
	}
	return "none"
}

// Modal names the gating form a transition needs.
type Modal int

const (
	NoModal Modal = iota
	ModalInitiateProcess
	ModalAssignSupervisor
	ModalBulkConvocatoria
	ModalBulkAssignSupervisor
	ModalBulkDiscard
)

func (m Modal) String() string {
	switch m {
	case ModalInitiateProcess:
		return "initiate-process"
	case ModalAssignSupervisor:
		return "assign-supervisor"
	case ModalBulkConvocatoria:
		return "bulk-convocatoria"
	case ModalBulkAssignSupervisor:
		return "bulk-assign-supervisor"
	case ModalBulkDiscard:
		return "bulk-discard"
	}
	return "none"
}

// Action is the router's decision for a Request.
type Action struct {
	Kind  Kind
	Modal Modal
	// Message is the rejection text or the confirmation prompt. An empty
	// rejection message means the rejection is silent.
	Message    string
	Submission gateway.Submission
	Request    Request
}

func (a Action) Count() int { return a.Request.Count() }

// Messages shown for the rejections the router produces.
const (
	MsgAlreadyThere      = "The selected cards are already in that state."
	MsgMissingProcessID  = "Cannot assign a supervisor: the candidate has no valid process ID."
	MsgMixedSourceStages = "All selected candidates must be in the same source column."
	MsgEmptySelection    = "Select at least one candidate for the bulk action."
)

// Route decides how a Request is carried out. It is pure: the result depends
// only on req.
func Route(req Request) Action {
	a := Action{Request: req}

	if len(req.Subjects) == 0 {
		return reject(a, gateway.ErrEmptyDNIList)
	}
	if req.From == req.To {
		if req.Bulk {
			return reject(a, MsgAlreadyThere)
		}
		return reject(a, "")
	}
	if !pipeline.IsTransitionAllowed(req.From, req.To) {
		return reject(a, fmt.Sprintf("Unknown stage in move from %q to %q.", req.From, req.To))
	}

	switch {
	case req.From == pipeline.StageRegistered && req.To == pipeline.StageCalled:
		if req.Bulk {
			return modal(a, ModalBulkConvocatoria)
		}
		return modal(a, ModalInitiateProcess)

	case req.From == pipeline.StageTheoryTraining && req.To == pipeline.StagePracticeTraining:
		if req.Bulk {
			return modal(a, ModalBulkAssignSupervisor)
		}
		if _, err := pipeline.ParseProcessID(req.Subjects[0].ProcessID); err != nil {
			return reject(a, MsgMissingProcessID)
		}
		return modal(a, ModalAssignSupervisor)

	case req.To == pipeline.StageWithdrawn && req.Bulk:
		return modal(a, ModalBulkDiscard)
	}

	a.Submission = gateway.Submission{DNIs: req.DNIs(), From: req.From, Stage: req.To, Bulk: req.Bulk}
	if req.Bulk {
		a.Kind = KindConfirm
		a.Message = fmt.Sprintf("Move %d candidate(s) from %s to %s?", req.Count(), req.From.Label(), req.To.Label())
		return a
	}
	a.Kind = KindSubmit
	return a
}

func reject(a Action, msg string) Action {
	a.Kind = KindReject
	a.Message = msg
	return a
}

func modal(a Action, m Modal) Action {
	a.Kind = KindModal
	a.Modal = m
	return a
}
