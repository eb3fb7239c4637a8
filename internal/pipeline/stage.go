// Package pipeline defines the hiring pipeline a candidate moves through.
//
// Stage order on the board:
//
//	REGISTERED ──► CALLED ──► THEORY_TRAINING ──► PRACTICE_TRAINING ──► HIRED
//	                                                  (hidden) WITHDRAWN | NOT_SUITABLE
//
// The client does not police the graph. Any move between two distinct known
// stages is sent; the backend decides whether it sticks.
package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage is one node of the hiring pipeline.
type Stage string

const (
	StageRegistered       Stage = "REGISTERED"
	StageCalled           Stage = "CALLED"
	StageTheoryTraining   Stage = "THEORY_TRAINING"
	StagePracticeTraining Stage = "PRACTICE_TRAINING"
	StageHired            Stage = "HIRED"
	StageWithdrawn        Stage = "WITHDRAWN"
	StageNotSuitable      Stage = "NOT_SUITABLE"
)

// columnPrefix is prepended to the wire code to build a board column id.
const columnPrefix = "column-"

type stageInfo struct {
	code  string
	label string
}

// stages is the single source of the wire mapping.
var stages = map[Stage]stageInfo{
	StageRegistered:       {code: "REGISTRADO", label: "Registrado"},
	StageCalled:           {code: "CONVOCADO", label: "Convocado"},
	StageTheoryTraining:   {code: "CAPACITACION_TEORICA", label: "En Capacitación Teórica"},
	StagePracticeTraining: {code: "CAPACITACION_PRACTICA", label: "En Capacitación Práctica"},
	StageNotSuitable:      {code: "NO_APTO", label: "No Apto (Descarte por rendimiento)"},
	StageWithdrawn:        {code: "DESISTE", label: "Desiste / No Confirmó / Abandona"},
	StageHired:            {code: "CONTRATADO", label: "Contratado"},
}

// byCode is the reverse table. CONFIRMADO is a legacy master state the
// backend still emits for candidates confirmed after a call; it shares the
// CALLED column.
var byCode = map[string]Stage{
	"REGISTRADO":            StageRegistered,
	"CONVOCADO":             StageCalled,
	"CONFIRMADO":            StageCalled,
	"CAPACITACION_TEORICA":  StageTheoryTraining,
	"CAPACITACION_PRACTICA": StagePracticeTraining,
	"CONTRATADO":            StageHired,
	"DESISTE":               StageWithdrawn,
	"NO_APTO":               StageNotSuitable,
}

// boardStages are the columns rendered on the board, left to right.
// WITHDRAWN and NOT_SUITABLE are hidden final states.
var boardStages = []Stage{
	StageRegistered,
	StageCalled,
	StageTheoryTraining,
	StagePracticeTraining,
	StageHired,
}

// All returns every stage in pipeline order.
func All() []Stage {
	return []Stage{
		StageRegistered, StageCalled, StageTheoryTraining, StagePracticeTraining,
		StageHired, StageWithdrawn, StageNotSuitable,
	}
}

// BoardStages returns the visible columns in display order.
func BoardStages() []Stage {
	out := make([]Stage, len(boardStages))
	copy(out, boardStages)
	return out
}

// ParseStage converts a stage name (e.g. "HIRED") to a Stage.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if _, ok := stages[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// FromCode decodes a backend wire code (e.g. "CONTRATADO").
func FromCode(code string) (Stage, error) {
	if st, ok := byCode[strings.TrimSpace(code)]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown stage code %q", code)
}

// FromColumn decodes a board column id ("column-REGISTRADO").
func FromColumn(id string) (Stage, error) {
	code, ok := strings.CutPrefix(id, columnPrefix)
	if !ok {
		return "", fmt.Errorf("malformed column id %q", id)
	}
	return FromCode(code)
}

// Valid reports whether s is a member of the enumeration.
func (s Stage) Valid() bool {
	_, ok := stages[s]
	return ok
}

// Code returns the backend wire code, empty for an invalid stage.
func (s Stage) Code() string { return stages[s].code }

// ColumnID returns the board column id bound to s.
func (s Stage) ColumnID() string {
	if !s.Valid() {
		return ""
	}
	return columnPrefix + s.Code()
}

// Label returns the human-readable stage name shown to recruiters.
func (s Stage) Label() string {
	if info, ok := stages[s]; ok {
		return info.label
	}
	return string(s)
}

func (s Stage) String() string { return string(s) }

// OnBoard reports whether s is rendered as a board column.
func (s Stage) OnBoard() bool {
	for _, b := range boardStages {
		if b == s {
			return true
		}
	}
	return false
}

// IsTransitionAllowed reports whether from → to can be sent: both stages are
// known and distinct. Backward moves and moves out of a final stage are
// allowed. Same-stage moves are not transitions; callers treat them as no-ops.
func IsTransitionAllowed(from, to Stage) bool {
	return from.Valid() && to.Valid() && from != to
}

// ParseProcessID validates a process identifier as carried on a card.
// Empty values and the backend's "None" rendering count as missing.
func ParseProcessID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "None" || raw == "null" {
		return 0, fmt.Errorf("process id is missing")
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("process id %q is not a number", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("process id %d is not positive", id)
	}
	return id, nil
}
