package kanban_test

import (
	"testing"

	"jobmate/recruiting-board/internal/kanban"
	"jobmate/recruiting-board/internal/pipeline"
)

func refs(dnis ...string) []kanban.Ref {
	out := make([]kanban.Ref, len(dnis))
	for i, d := range dnis {
		out[i] = kanban.Ref{DNI: d, ProcessID: "10"}
	}
	return out
}

// ── Same-stage moves ───────────────────────────────────────────────────────

func TestRoute_SameStageAlwaysRejects(t *testing.T) {
	for _, st := range pipeline.All() {
		for _, bulk := range []bool{false, true} {
			a := kanban.Route(kanban.Request{Subjects: refs("1", "2"), From: st, To: st, Bulk: bulk})
			if a.Kind != kanban.KindReject {
				t.Errorf("Route(%s → %s, bulk=%v) = %s, want reject", st, st, bulk, a.Kind)
			}
			if len(a.Submission.DNIs) != 0 {
				t.Errorf("Route(%s → %s) must not carry a submission", st, st)
			}
		}
	}
}

func TestRoute_SameStageMessage(t *testing.T) {
	single := kanban.Route(kanban.Request{Subjects: refs("1"), From: pipeline.StageCalled, To: pipeline.StageCalled})
	if single.Message != "" {
		t.Errorf("single same-stage rejection should be silent, got %q", single.Message)
	}
	bulk := kanban.Route(kanban.Request{Subjects: refs("1"), From: pipeline.StageCalled, To: pipeline.StageCalled, Bulk: true})
	if bulk.Message != kanban.MsgAlreadyThere {
		t.Errorf("bulk same-stage message = %q, want %q", bulk.Message, kanban.MsgAlreadyThere)
	}
}

// ── REGISTERED → CALLED ────────────────────────────────────────────────────

func TestRoute_RegisteredToCalledSingleOpensInitiateProcess(t *testing.T) {
	for _, pid := range []string{"", "None", "5"} {
		a := kanban.Route(kanban.Request{
			Subjects: []kanban.Ref{{DNI: "12345678", ProcessID: pid}},
			From:     pipeline.StageRegistered,
			To:       pipeline.StageCalled,
		})
		if a.Kind != kanban.KindModal || a.Modal != kanban.ModalInitiateProcess {
			t.Errorf("process %q: got %s/%s, want modal/initiate-process", pid, a.Kind, a.Modal)
		}
	}
}

func TestRoute_RegisteredToCalledBulkOpensConvocatoria(t *testing.T) {
	a := kanban.Route(kanban.Request{
		Subjects: refs("12345678", "87654321"),
		From:     pipeline.StageRegistered,
		To:       pipeline.StageCalled,
		Bulk:     true,
	})
	if a.Kind != kanban.KindModal || a.Modal != kanban.ModalBulkConvocatoria {
		t.Fatalf("got %s/%s, want modal/bulk-convocatoria", a.Kind, a.Modal)
	}
	if a.Count() != 2 {
		t.Errorf("Count() = %d, want 2", a.Count())
	}
}

// ── THEORY_TRAINING → PRACTICE_TRAINING ────────────────────────────────────

func TestRoute_TheoryToPracticeNeedsProcessID(t *testing.T) {
	for _, pid := range []string{"", "None", "abc", "0", "-1"} {
		a := kanban.Route(kanban.Request{
			Subjects: []kanban.Ref{{DNI: "1", ProcessID: pid}},
			From:     pipeline.StageTheoryTraining,
			To:       pipeline.StagePracticeTraining,
		})
		if a.Kind != kanban.KindReject {
			t.Errorf("process %q: got %s, want reject", pid, a.Kind)
		}
		if a.Modal != kanban.NoModal {
			t.Errorf("process %q: no modal may open, got %s", pid, a.Modal)
		}
		if a.Message != kanban.MsgMissingProcessID {
			t.Errorf("process %q: message = %q", pid, a.Message)
		}
	}
}

func TestRoute_TheoryToPracticeWithProcessID(t *testing.T) {
	a := kanban.Route(kanban.Request{
		Subjects: []kanban.Ref{{DNI: "1", ProcessID: "42"}},
		From:     pipeline.StageTheoryTraining,
		To:       pipeline.StagePracticeTraining,
	})
	if a.Kind != kanban.KindModal || a.Modal != kanban.ModalAssignSupervisor {
		t.Errorf("got %s/%s, want modal/assign-supervisor", a.Kind, a.Modal)
	}
}

func TestRoute_TheoryToPracticeBulk(t *testing.T) {
	a := kanban.Route(kanban.Request{
		Subjects: []kanban.Ref{{DNI: "1"}, {DNI: "2"}},
		From:     pipeline.StageTheoryTraining,
		To:       pipeline.StagePracticeTraining,
		Bulk:     true,
	})
	if a.Kind != kanban.KindModal || a.Modal != kanban.ModalBulkAssignSupervisor {
		t.Errorf("got %s/%s, want modal/bulk-assign-supervisor", a.Kind, a.Modal)
	}
}

// ── Withdrawals ────────────────────────────────────────────────────────────

func TestRoute_BulkWithdrawOpensDiscard(t *testing.T) {
	a := kanban.Route(kanban.Request{Subjects: refs("1", "2"), From: pipeline.StageCalled, To: pipeline.StageWithdrawn, Bulk: true})
	if a.Kind != kanban.KindModal || a.Modal != kanban.ModalBulkDiscard {
		t.Errorf("got %s/%s, want modal/bulk-discard", a.Kind, a.Modal)
	}
}

func TestRoute_SingleWithdrawSubmits(t *testing.T) {
	a := kanban.Route(kanban.Request{Subjects: refs("1"), From: pipeline.StageCalled, To: pipeline.StageWithdrawn})
	if a.Kind != kanban.KindSubmit {
		t.Fatalf("got %s, want submit", a.Kind)
	}
	if a.Submission.Stage != pipeline.StageWithdrawn || a.Submission.Bulk {
		t.Errorf("unexpected submission %+v", a.Submission)
	}
}

// ── Other legal pairs ──────────────────────────────────────────────────────

func TestRoute_OtherLegalPairs(t *testing.T) {
	cases := []struct {
		from pipeline.Stage
		to   pipeline.Stage
	}{
		{pipeline.StageCalled, pipeline.StageTheoryTraining},
		{pipeline.StagePracticeTraining, pipeline.StageHired},
		{pipeline.StageRegistered, pipeline.StageNotSuitable},
		{pipeline.StageTheoryTraining, pipeline.StageHired},
	}
	for _, c := range cases {
		single := kanban.Route(kanban.Request{Subjects: refs("1"), From: c.from, To: c.to})
		if single.Kind != kanban.KindSubmit {
			t.Errorf("single %s → %s = %s, want submit", c.from, c.to, single.Kind)
		}
		if len(single.Submission.Extra) != 0 {
			t.Errorf("single %s → %s must carry no extra fields", c.from, c.to)
		}

		bulk := kanban.Route(kanban.Request{Subjects: refs("1", "2", "3"), From: c.from, To: c.to, Bulk: true})
		if bulk.Kind != kanban.KindConfirm {
			t.Errorf("bulk %s → %s = %s, want confirm", c.from, c.to, bulk.Kind)
		}
		if !bulk.Submission.Bulk || len(bulk.Submission.DNIs) != 3 {
			t.Errorf("bulk %s → %s submission = %+v", c.from, c.to, bulk.Submission)
		}
		if bulk.Message == "" {
			t.Errorf("bulk %s → %s needs a confirmation prompt", c.from, c.to)
		}
	}
}

func TestRoute_BulkModeComesFromGesture(t *testing.T) {
	a := kanban.Route(kanban.Request{Subjects: refs("1"), From: pipeline.StageCalled, To: pipeline.StageHired, Bulk: true})
	if a.Kind != kanban.KindConfirm {
		t.Errorf("bulk request with one subject = %s, want confirm", a.Kind)
	}
}

// ── Backward moves and moves out of final stages ───────────────────────────

func TestRoute_BackwardAndFromFinalStagesAreSent(t *testing.T) {
	cases := []struct {
		from pipeline.Stage
		to   pipeline.Stage
		bulk bool
		want kanban.Kind
	}{
		{pipeline.StagePracticeTraining, pipeline.StageTheoryTraining, false, kanban.KindSubmit},
		{pipeline.StageCalled, pipeline.StageRegistered, false, kanban.KindSubmit},
		{pipeline.StageHired, pipeline.StagePracticeTraining, false, kanban.KindSubmit},
		{pipeline.StageHired, pipeline.StageNotSuitable, true, kanban.KindConfirm},
		{pipeline.StageNotSuitable, pipeline.StageCalled, true, kanban.KindConfirm},
	}
	for _, c := range cases {
		subjects := refs("1")
		if c.bulk {
			subjects = refs("1", "2")
		}
		a := kanban.Route(kanban.Request{Subjects: subjects, From: c.from, To: c.to, Bulk: c.bulk})
		if a.Kind != c.want {
			t.Errorf("Route(%s → %s) = %s %q, want %s", c.from, c.to, a.Kind, a.Message, c.want)
			continue
		}
		if a.Submission.Stage != c.to || len(a.Submission.DNIs) != len(subjects) {
			t.Errorf("Route(%s → %s) submission = %+v", c.from, c.to, a.Submission)
		}
	}
}

func TestRoute_UnknownStageRejected(t *testing.T) {
	a := kanban.Route(kanban.Request{Subjects: refs("1"), From: pipeline.StageCalled, To: "BOGUS"})
	if a.Kind != kanban.KindReject || a.Message == "" {
		t.Errorf("got %s %q, want visible reject", a.Kind, a.Message)
	}
}

func TestRoute_NoSubjects(t *testing.T) {
	a := kanban.Route(kanban.Request{From: pipeline.StageCalled, To: pipeline.StageHired, Bulk: true})
	if a.Kind != kanban.KindReject || a.Message != "DNI list is required" {
		t.Errorf("got %s %q", a.Kind, a.Message)
	}
}

func TestRoute_Deterministic(t *testing.T) {
	req := kanban.Request{Subjects: refs("1", "2"), From: pipeline.StageCalled, To: pipeline.StageHired, Bulk: true}
	a, b := kanban.Route(req), kanban.Route(req)
	if a.Kind != b.Kind || a.Message != b.Message || a.Modal != b.Modal {
		t.Errorf("Route is not deterministic: %+v vs %+v", a, b)
	}
}
