package kanban

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"jobmate/recruiting-board/internal/pipeline"
)

// Ref identifies a candidate card: the DNI plus the active process, if any.
type Ref struct {
	DNI       string
	ProcessID string
}

// Card is the read model of one candidate on the board.
type Card struct {
	DNI           string
	Name          string
	Phone         string
	Stage         pipeline.Stage
	ProcessID     string
	ProcessStatus string
	Company       string
	Supervisor    string
	Site          string
	StartDate     *time.Time
	RegisteredAt  time.Time
}

func (c Card) Ref() Ref { return Ref{DNI: c.DNI, ProcessID: c.ProcessID} }

// Locator answers where a candidate currently sits on the live board.
type Locator interface {
	StageOf(dni string) (pipeline.Stage, bool)
}

type position struct {
	stage pipeline.Stage
	index int
}

// Board is an immutable snapshot of the visible columns. It is replaced
// wholesale on every reload.
type Board struct {
	columns  map[pipeline.Stage][]Card
	index    map[string]position
	LoadedAt time.Time
}

// NewBoard groups cards into their columns. Cards in hidden stages are
// dropped; duplicates keep the first occurrence.
func NewBoard(cards []Card) *Board {
	b := &Board{
		columns:  make(map[pipeline.Stage][]Card),
		index:    make(map[string]position, len(cards)),
		LoadedAt: time.Now(),
	}
	for _, c := range cards {
		if !c.Stage.OnBoard() {
			continue
		}
		if _, dup := b.index[c.DNI]; dup {
			continue
		}
		b.index[c.DNI] = position{stage: c.Stage, index: len(b.columns[c.Stage])}
		b.columns[c.Stage] = append(b.columns[c.Stage], c)
	}
	return b
}

// Column returns the cards of one stage in load order.
func (b *Board) Column(st pipeline.Stage) []Card {
	if b == nil {
		return nil
	}
	return b.columns[st]
}

// Locate returns the card with the given DNI.
func (b *Board) Locate(dni string) (Card, bool) {
	if b == nil {
		return Card{}, false
	}
	pos, ok := b.index[dni]
	if !ok {
		return Card{}, false
	}
	return b.columns[pos.stage][pos.index], true
}

// StageOf implements Locator.
func (b *Board) StageOf(dni string) (pipeline.Stage, bool) {
	c, ok := b.Locate(dni)
	return c.Stage, ok
}

// Len is the number of cards on the board.
func (b *Board) Len() int {
	if b == nil {
		return 0
	}
	return len(b.index)
}

// Filter returns a board holding only the cards matching query. A match is a
// substring of the DNI or name, or a name word within one edit of a query
// word, so "perex" still finds "Perez".
func (b *Board) Filter(query string) *Board {
	query = strings.ToLower(strings.TrimSpace(query))
	if b == nil || query == "" {
		return b
	}
	var keep []Card
	for _, st := range pipeline.BoardStages() {
		for _, c := range b.columns[st] {
			if matches(c, query) {
				keep = append(keep, c)
			}
		}
	}
	out := NewBoard(keep)
	out.LoadedAt = b.LoadedAt
	return out
}

func matches(c Card, query string) bool {
	name := strings.ToLower(c.Name)
	if strings.Contains(c.DNI, query) || strings.Contains(name, query) {
		return true
	}
	for _, q := range strings.Fields(query) {
		if len([]rune(q)) < 4 {
			continue
		}
		for _, w := range strings.Fields(name) {
			if levenshtein.ComputeDistance(q, w) <= 1 {
				return true
			}
		}
	}
	return false
}
