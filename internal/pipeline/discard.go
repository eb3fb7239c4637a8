package pipeline

import "fmt"

// DiscardReason explains why a candidate left the pipeline as WITHDRAWN.
type DiscardReason string

const (
	ReasonNoConfirmation DiscardReason = "NO_CONFIRMA"
	ReasonNoShow         DiscardReason = "NO_SE_PRESENTE"
	ReasonSalary         DiscardReason = "SALARIO_NO_CONVENIENTE"
	ReasonPersonal       DiscardReason = "PROBLEMAS_PERSONALES"
	ReasonOther          DiscardReason = "OTRO"
)

var discardLabels = map[DiscardReason]string{
	ReasonNoConfirmation: "No Confirma Asistencia",
	ReasonNoShow:         "No Se Presentó",
	ReasonSalary:         "Salario No Conveniente",
	ReasonPersonal:       "Problemas Personales",
	ReasonOther:          "Otro Motivo",
}

// DiscardReasons returns the reasons in the order they are offered.
func DiscardReasons() []DiscardReason {
	return []DiscardReason{ReasonNoConfirmation, ReasonNoShow, ReasonSalary, ReasonPersonal, ReasonOther}
}

// ParseDiscardReason validates a reason code.
func ParseDiscardReason(s string) (DiscardReason, error) {
	r := DiscardReason(s)
	if _, ok := discardLabels[r]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown discard reason %q", s)
}

// Label returns the text shown in the discard form.
func (r DiscardReason) Label() string {
	if l, ok := discardLabels[r]; ok {
		return l
	}
	return string(r)
}
