// Package messaging models the bulk WhatsApp panel: two lists of contacts
// (available and chosen) with a text filter each, and the message body.
// Delivery itself belongs to the backend.
package messaging

import (
	"fmt"
	"strings"

	"jobmate/recruiting-board/internal/gateway"
)

// Side is one of the two transfer lists.
type Side int

const (
	Available Side = iota
	Chosen
)

// Item is a contact as rendered in a list.
type Item struct {
	Contact gateway.Contact
	Display string
	// Tooltip reports the delivery count, for example "Messages sent: 2".
	Tooltip string
	// Disabled contacts were already messaged and cannot be chosen.
	Disabled bool
	Marked   bool
}

// Transfer holds the panel state for one process filter and date.
type Transfer struct {
	filter  gateway.ProcessFilter
	date    string
	lists   [2][]gateway.Contact
	marked  map[string]bool
	query   [2]string
	message string
}

// NewTransfer starts with every contact available.
func NewTransfer(filter gateway.ProcessFilter, date string, contacts []gateway.Contact) *Transfer {
	t := &Transfer{filter: filter, date: date, marked: map[string]bool{}}
	t.lists[Available] = append([]gateway.Contact(nil), contacts...)
	return t
}

func (t *Transfer) Filter() gateway.ProcessFilter { return t.filter }
func (t *Transfer) Date() string                  { return t.date }
func (t *Transfer) Message() string               { return t.message }
func (t *Transfer) Len(side Side) int             { return len(t.lists[side]) }

// Items returns the visible contacts of side, honouring its text filter.
func (t *Transfer) Items(side Side) []Item {
	out := make([]Item, 0, len(t.lists[side]))
	for _, c := range t.lists[side] {
		it := item(c, t.marked[c.DNI])
		if q := t.query[side]; q != "" && !strings.Contains(strings.ToLower(it.Display), q) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func item(c gateway.Contact, marked bool) Item {
	return Item{
		Contact:  c,
		Display:  fmt.Sprintf("%s (%s) - %s", c.Name, c.DNI, c.Phone),
		Tooltip:  fmt.Sprintf("Messages sent: %d", c.SentCount),
		Disabled: c.SentCount > 0,
		Marked:   marked,
	}
}

// SetQuery filters side by a case-insensitive substring of the display text.
func (t *Transfer) SetQuery(side Side, q string) {
	t.query[side] = strings.ToLower(strings.TrimSpace(q))
}

// SetMessage replaces the message body.
func (t *Transfer) SetMessage(m string) { t.message = m }

// Mark toggles the mark on a contact. Disabled contacts cannot be marked.
func (t *Transfer) Mark(dni string) bool {
	for side := range t.lists {
		for _, c := range t.lists[side] {
			if c.DNI != dni {
				continue
			}
			if c.SentCount > 0 {
				return false
			}
			if t.marked[dni] {
				delete(t.marked, dni)
			} else {
				t.marked[dni] = true
			}
			return true
		}
	}
	return false
}

// MoveMarked moves the marked contacts of from to the other list and clears
// their marks. It returns how many moved.
func (t *Transfer) MoveMarked(from Side) int {
	return t.move(from, func(c gateway.Contact) bool { return t.marked[c.DNI] })
}

// MoveAll moves every enabled contact of from, filtered or not.
func (t *Transfer) MoveAll(from Side) int {
	return t.move(from, func(gateway.Contact) bool { return true })
}

func (t *Transfer) move(from Side, pick func(gateway.Contact) bool) int {
	to := Chosen
	if from == Chosen {
		to = Available
	}
	keep := t.lists[from][:0]
	moved := 0
	for _, c := range t.lists[from] {
		if c.SentCount == 0 && pick(c) {
			t.lists[to] = append(t.lists[to], c)
			delete(t.marked, c.DNI)
			moved++
			continue
		}
		keep = append(keep, c)
	}
	t.lists[from] = keep
	return moved
}

// CanSend reports whether the send action is enabled.
func (t *Transfer) CanSend() bool {
	return len(t.lists[Chosen]) > 0 && strings.TrimSpace(t.message) != ""
}

// Request builds the send request for the chosen contacts.
func (t *Transfer) Request() (gateway.SendRequest, error) {
	if len(t.lists[Chosen]) == 0 {
		return gateway.SendRequest{}, &gateway.ValidationError{Msg: "Choose at least one contact."}
	}
	if strings.TrimSpace(t.message) == "" {
		return gateway.SendRequest{}, &gateway.ValidationError{Msg: "The message cannot be empty."}
	}
	ids := make([]string, len(t.lists[Chosen]))
	for i, c := range t.lists[Chosen] {
		ids[i] = c.DNI
	}
	return gateway.SendRequest{
		Filter:     t.filter,
		Date:       t.date,
		ContactIDs: ids,
		Message:    t.message,
	}, nil
}
