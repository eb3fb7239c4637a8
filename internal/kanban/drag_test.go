package kanban_test

import (
	"testing"

	"jobmate/recruiting-board/internal/kanban"
	"jobmate/recruiting-board/internal/pipeline"
)

func card(dni string, st pipeline.Stage) kanban.Card {
	return kanban.Card{DNI: dni, Name: "Candidate " + dni, Stage: st, ProcessID: "7"}
}

// ── Start ──────────────────────────────────────────────────────────────────

func TestDrag_UnselectedCardClearsSelection(t *testing.T) {
	a, b, c := card("A", pipeline.StageRegistered), card("B", pipeline.StageRegistered), card("C", pipeline.StageCalled)
	board := kanban.NewBoard([]kanban.Card{a, b, c})
	sel := kanban.NewSelection()
	d := kanban.NewDrag(sel, board)

	sel.Toggle(a.Ref())
	sel.Toggle(b.Ref())
	p := d.Start(c)

	if sel.Len() != 0 {
		t.Errorf("selection Len() = %d, want 0", sel.Len())
	}
	if p.Mode != kanban.Individual {
		t.Errorf("Mode = %s, want individual", p.Mode)
	}
	if got := p.Keys(); len(got) != 1 || got[0] != "C" {
		t.Errorf("Keys() = %v, want [C]", got)
	}
	if p.Source != pipeline.StageCalled {
		t.Errorf("Source = %s, want CALLED", p.Source)
	}
	if p.Indicator() != "" {
		t.Errorf("individual drag must not show an indicator, got %q", p.Indicator())
	}
}

func TestDrag_SelectedCardCarriesSelection(t *testing.T) {
	a, b := card("A", pipeline.StageRegistered), card("B", pipeline.StageRegistered)
	sel := kanban.NewSelection()
	d := kanban.NewDrag(sel, kanban.NewBoard([]kanban.Card{a, b}))

	sel.Toggle(a.Ref())
	sel.Toggle(b.Ref())
	p := d.Start(b)

	if p.Mode != kanban.Bulk || p.Count() != 2 {
		t.Fatalf("payload = %+v, want bulk of 2", p)
	}
	if p.Indicator() != "Moving 2 candidates" {
		t.Errorf("Indicator() = %q", p.Indicator())
	}
	if p.Session == "" {
		t.Error("payload must carry a session id")
	}
}

func TestDrag_EmptySelectionIsIndividual(t *testing.T) {
	sel := kanban.NewSelection()
	d := kanban.NewDrag(sel, kanban.NewBoard(nil))
	p := d.Start(card("A", pipeline.StageTheoryTraining))
	if p.Mode != kanban.Individual || p.Count() != 1 {
		t.Errorf("payload = %+v, want individual of 1", p)
	}
}

// ── Drop ───────────────────────────────────────────────────────────────────

func TestDrag_IndividualSameColumnIsNoop(t *testing.T) {
	d := kanban.NewDrag(kanban.NewSelection(), kanban.NewBoard(nil))
	d.Start(card("A", pipeline.StageCalled))
	if _, ok := d.Drop(pipeline.StageCalled); ok {
		t.Error("dropping a card on its own column must be a no-op")
	}
	if _, active := d.Active(); active {
		t.Error("drop must end the session")
	}
}

func TestDrag_IndividualDrop(t *testing.T) {
	d := kanban.NewDrag(kanban.NewSelection(), kanban.NewBoard(nil))
	d.Start(card("A", pipeline.StageCalled))
	req, ok := d.Drop(pipeline.StageTheoryTraining)
	if !ok {
		t.Fatal("expected a request")
	}
	if req.Bulk || req.From != pipeline.StageCalled || req.To != pipeline.StageTheoryTraining {
		t.Errorf("request = %+v", req)
	}
}

func TestDrag_BulkSourceResolvedAtDrop(t *testing.T) {
	a, b := card("A", pipeline.StageRegistered), card("B", pipeline.StageRegistered)
	sel := kanban.NewSelection()
	d := kanban.NewDrag(sel, kanban.NewBoard([]kanban.Card{a, b}))
	sel.Toggle(a.Ref())
	sel.Toggle(b.Ref())
	d.Start(a)

	// The board reloads mid-drag and the lead card has moved on.
	a.Stage = pipeline.StageCalled
	d.SetBoard(kanban.NewBoard([]kanban.Card{a, b}))

	req, ok := d.Drop(pipeline.StageTheoryTraining)
	if !ok {
		t.Fatal("expected a request")
	}
	if req.From != pipeline.StageCalled {
		t.Errorf("From = %s, want CALLED", req.From)
	}
	if !req.Bulk || req.Count() != 2 {
		t.Errorf("request = %+v", req)
	}
}

func TestDrag_BulkMissingLeadAborts(t *testing.T) {
	a, b := card("A", pipeline.StageRegistered), card("B", pipeline.StageRegistered)
	sel := kanban.NewSelection()
	d := kanban.NewDrag(sel, kanban.NewBoard([]kanban.Card{a, b}))
	sel.Toggle(a.Ref())
	sel.Toggle(b.Ref())
	d.Start(b)

	d.SetBoard(kanban.NewBoard([]kanban.Card{b}))
	if _, ok := d.Drop(pipeline.StageCalled); ok {
		t.Error("drop must abort when the lead card left the board")
	}
	if sel.Len() != 2 {
		t.Errorf("selection Len() = %d, want 2", sel.Len())
	}
}

func TestDrag_DropWithoutSession(t *testing.T) {
	d := kanban.NewDrag(kanban.NewSelection(), kanban.NewBoard(nil))
	if _, ok := d.Drop(pipeline.StageHired); ok {
		t.Error("drop without a session must be a no-op")
	}
}
