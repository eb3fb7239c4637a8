package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"jobmate/recruiting-board/internal/modal"
)

// formView edits a modal.Form. Select fields cycle through their options;
// free fields use a text input.
type formView struct {
	form   *modal.Form
	inputs []textinput.Model
	choice []int
	field  int
}

func newFormView(f *modal.Form) *formView {
	fields := f.Fields()
	v := &formView{
		form:   f,
		inputs: make([]textinput.Model, len(fields)),
		choice: make([]int, len(fields)),
	}
	for i, fd := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.SetValue(f.Value(fd.Key))
		v.inputs[i] = in
		v.choice[i] = -1
		for j, o := range fd.Options {
			if o.Value == f.Value(fd.Key) {
				v.choice[i] = j
			}
		}
	}
	return v
}

func (v *formView) focus() tea.Cmd {
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	if len(v.inputs) == 0 || len(v.form.Fields()[v.field].Options) > 0 {
		return nil
	}
	return v.inputs[v.field].Focus()
}

func (v *formView) update(m tea.KeyMsg, k keyMap) tea.Cmd {
	if v.form.Submitting() || len(v.inputs) == 0 {
		return nil
	}
	fd := v.form.Fields()[v.field]

	switch {
	case key.Matches(m, k.NextField):
		v.field = (v.field + 1) % len(v.inputs)
		return v.focus()
	case len(fd.Options) > 0 && key.Matches(m, k.PrevOption):
		v.cycle(-1)
		return nil
	case len(fd.Options) > 0 && key.Matches(m, k.NextOption):
		v.cycle(1)
		return nil
	case len(fd.Options) > 0:
		return nil
	}

	var cmd tea.Cmd
	v.inputs[v.field], cmd = v.inputs[v.field].Update(m)
	return cmd
}

func (v *formView) cycle(step int) {
	opts := v.form.Fields()[v.field].Options
	n := len(opts)
	c := v.choice[v.field] + step
	if c < 0 {
		c = n - 1
	}
	v.choice[v.field] = c % n
}

// commit copies the inputs into the form.
func (v *formView) commit() error {
	for i, fd := range v.form.Fields() {
		val := strings.TrimSpace(v.inputs[i].Value())
		if len(fd.Options) > 0 {
			val = ""
			if c := v.choice[i]; c >= 0 {
				val = fd.Options[c].Value
			}
		}
		if err := v.form.Set(fd.Key, val); err != nil {
			return err
		}
	}
	return nil
}
