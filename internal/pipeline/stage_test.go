package pipeline_test

import (
	"testing"

	"jobmate/recruiting-board/internal/pipeline"
)

// ── ParseStage ─────────────────────────────────────────────────────────────

func TestParseStage_ValidValues(t *testing.T) {
	for _, st := range pipeline.All() {
		got, err := pipeline.ParseStage(string(st))
		if err != nil {
			t.Errorf("ParseStage(%q) returned unexpected error: %v", st, err)
		}
		if got != st {
			t.Errorf("ParseStage(%q) = %q, want %q", st, got, st)
		}
	}
}

func TestParseStage_InvalidValues(t *testing.T) {
	for _, s := range []string{"", "UNKNOWN", "hired", " HIRED", "CONTRATADO"} {
		if _, err := pipeline.ParseStage(s); err == nil {
			t.Errorf("ParseStage(%q) expected error, got nil", s)
		}
	}
}

// ── Wire codes ─────────────────────────────────────────────────────────────

func TestCode_RoundTrip(t *testing.T) {
	for _, st := range pipeline.All() {
		got, err := pipeline.FromCode(st.Code())
		if err != nil {
			t.Errorf("FromCode(%q) unexpected error: %v", st.Code(), err)
			continue
		}
		if got != st {
			t.Errorf("FromCode(%q) = %s, want %s", st.Code(), got, st)
		}
	}
}

func TestFromCode_ConfirmedIsCalled(t *testing.T) {
	got, err := pipeline.FromCode("CONFIRMADO")
	if err != nil {
		t.Fatalf("FromCode(CONFIRMADO) unexpected error: %v", err)
	}
	if got != pipeline.StageCalled {
		t.Errorf("FromCode(CONFIRMADO) = %s, want CALLED", got)
	}
	if pipeline.StageCalled.Code() != "CONVOCADO" {
		t.Errorf("CALLED must encode as CONVOCADO, got %q", pipeline.StageCalled.Code())
	}
}

func TestFromCode_Unknown(t *testing.T) {
	for _, s := range []string{"", "REGISTERED", "registrado", "ABANDONO"} {
		if _, err := pipeline.FromCode(s); err == nil {
			t.Errorf("FromCode(%q) expected error, got nil", s)
		}
	}
}

// ── Column ids ─────────────────────────────────────────────────────────────

func TestColumnID_RoundTrip(t *testing.T) {
	for _, st := range pipeline.BoardStages() {
		id := st.ColumnID()
		got, err := pipeline.FromColumn(id)
		if err != nil {
			t.Errorf("FromColumn(%q) unexpected error: %v", id, err)
			continue
		}
		if got != st {
			t.Errorf("FromColumn(%q) = %s, want %s", id, got, st)
		}
	}
	if id := pipeline.StageTheoryTraining.ColumnID(); id != "column-CAPACITACION_TEORICA" {
		t.Errorf("ColumnID(THEORY_TRAINING) = %q", id)
	}
}

func TestFromColumn_Malformed(t *testing.T) {
	for _, id := range []string{"", "REGISTRADO", "col-REGISTRADO", "column-", "column-FOO"} {
		if _, err := pipeline.FromColumn(id); err == nil {
			t.Errorf("FromColumn(%q) expected error, got nil", id)
		}
	}
}

func TestBoardStages_HidesFinalStates(t *testing.T) {
	for _, st := range pipeline.BoardStages() {
		if st == pipeline.StageWithdrawn || st == pipeline.StageNotSuitable {
			t.Errorf("BoardStages() must not include %s", st)
		}
	}
	if pipeline.StageWithdrawn.OnBoard() || pipeline.StageNotSuitable.OnBoard() {
		t.Error("hidden final states must not report OnBoard")
	}
	if !pipeline.StageHired.OnBoard() {
		t.Error("HIRED must be on the board")
	}
}

// ── IsTransitionAllowed — forward moves ───────────────────────────────────

func TestIsTransitionAllowed_Forward(t *testing.T) {
	cases := []struct {
		from pipeline.Stage
		to   pipeline.Stage
	}{
		{pipeline.StageRegistered, pipeline.StageCalled},
		{pipeline.StageCalled, pipeline.StageTheoryTraining},
		{pipeline.StageTheoryTraining, pipeline.StagePracticeTraining},
		{pipeline.StagePracticeTraining, pipeline.StageHired},
		{pipeline.StageRegistered, pipeline.StageTheoryTraining}, // skip
		{pipeline.StageCalled, pipeline.StagePracticeTraining},   // skip
	}
	for _, c := range cases {
		if !pipeline.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed — backward and out of final stages ────────────────

func TestIsTransitionAllowed_Backward(t *testing.T) {
	cases := []struct {
		from pipeline.Stage
		to   pipeline.Stage
	}{
		{pipeline.StageCalled, pipeline.StageRegistered},
		{pipeline.StagePracticeTraining, pipeline.StageTheoryTraining},
		{pipeline.StagePracticeTraining, pipeline.StageRegistered},
	}
	for _, c := range cases {
		if !pipeline.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true (backward)", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_EveryDistinctPair(t *testing.T) {
	for _, from := range pipeline.All() {
		for _, to := range pipeline.All() {
			if got := pipeline.IsTransitionAllowed(from, to); got != (from != to) {
				t.Errorf("IsTransitionAllowed(%s → %s) = %v", from, to, got)
			}
		}
	}
}

// ── IsTransitionAllowed — rejected pairs ───────────────────────────────────

func TestIsTransitionAllowed_SameStage(t *testing.T) {
	for _, st := range pipeline.All() {
		if pipeline.IsTransitionAllowed(st, st) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", st, st)
		}
	}
}

func TestIsTransitionAllowed_InvalidStage(t *testing.T) {
	if pipeline.IsTransitionAllowed("", pipeline.StageCalled) {
		t.Error("empty source stage must not be allowed")
	}
	if pipeline.IsTransitionAllowed(pipeline.StageRegistered, "BOGUS") {
		t.Error("unknown target stage must not be allowed")
	}
}

// ── ParseProcessID ─────────────────────────────────────────────────────────

func TestParseProcessID(t *testing.T) {
	valid := map[string]int{"1": 1, "42": 42, " 7 ": 7}
	for raw, want := range valid {
		got, err := pipeline.ParseProcessID(raw)
		if err != nil {
			t.Errorf("ParseProcessID(%q) unexpected error: %v", raw, err)
		}
		if got != want {
			t.Errorf("ParseProcessID(%q) = %d, want %d", raw, got, want)
		}
	}
	for _, raw := range []string{"", "None", "null", "abc", "0", "-3", "1.5"} {
		if _, err := pipeline.ParseProcessID(raw); err == nil {
			t.Errorf("ParseProcessID(%q) expected error, got nil", raw)
		}
	}
}

// ── Discard reasons ────────────────────────────────────────────────────────

func TestParseDiscardReason(t *testing.T) {
	for _, r := range pipeline.DiscardReasons() {
		got, err := pipeline.ParseDiscardReason(string(r))
		if err != nil || got != r {
			t.Errorf("ParseDiscardReason(%q) = %q, %v", r, got, err)
		}
		if r.Label() == string(r) {
			t.Errorf("DiscardReason %q has no label", r)
		}
	}
	if _, err := pipeline.ParseDiscardReason("CAMBIO_DE_OPINION"); err == nil {
		t.Error("unknown discard reason should be rejected")
	}
}
