package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/controller"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/tui/theme"
)

const (
	fieldTitle = iota
	fieldTime
	fieldDuration
	fieldDescription
	fieldCount
)

var fieldLabels = [fieldCount]string{"Titre", "Heure", "Durée", "Description"}

// form is the creation panel shown for calendar.Creating.
type form struct {
	origin calendar.Creating
	kinds  []item.Kind
	kind   item.Kind
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newForm(c calendar.Creating, kinds []item.Kind) *form {
	f := &form{origin: c, kinds: kinds, kind: kinds[0]}
	placeholders := [fieldCount]string{"Réunion d'équipe", "HH:MM", "1h", "optionnel"}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.VirtualCursor = true
		in.Styles.Cursor.Color = lipgloss.Color("212")
		in.Styles.Cursor.Shape = tea.CursorBar
		in.Styles.Cursor.Blink = false
		f.inputs[i] = in
	}
	f.inputs[fieldTime].SetValue(c.Time)
	f.inputs[fieldTitle].Focus()
	return f
}

func (f *form) draft() item.Draft {
	d := item.Draft{
		Kind:        f.kind,
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
		Date:        f.origin.Date,
		Time:        f.inputs[fieldTime].Value(),
	}
	if f.kind == item.KindEvent {
		d.Duration = f.inputs[fieldDuration].Value()
	}
	return d
}

func (f *form) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	next := (i + fieldCount) % fieldCount
	if f.kind == item.KindTask && next == fieldDuration {
		// Tasks have no duration.
		if i > f.focus {
			next = fieldDescription
		} else {
			next = fieldTime
		}
	}
	f.focus = next
	return f.inputs[f.focus].Focus()
}

func (f *form) toggleKind() {
	if len(f.kinds) < 2 {
		return
	}
	if f.kind == item.KindEvent {
		f.kind = item.KindTask
	} else {
		f.kind = item.KindEvent
	}
	if f.kind == item.KindTask && f.focus == fieldDuration {
		f.setFocus(fieldDescription)
	}
}

// submit validates the inputs. Errors stay on the form.
func (f *form) submit() (item.Draft, bool) {
	d := f.draft()
	if err := d.Validate(); err != nil {
		f.err = err.Error()
		return item.Draft{}, false
	}
	f.err = ""
	return d, true
}

// update handles a key press while the form is open.
func (f *form) update(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return f.setFocus(f.focus - 1)
	case "ctrl+t":
		f.toggleKind()
		return nil
	case "enter":
		d, ok := f.submit()
		if !ok {
			return nil
		}
		return controller.CreateItemCmd(d)
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) view(th theme.Theme, width int) string {
	title := "Nouvel événement"
	if f.kind == item.KindTask {
		title = "Nouvelle tâche"
	}
	date := fmt.Sprintf("%s %d %s %d",
		calendar.WeekdayName(f.origin.Date.Weekday()), f.origin.Date.Day(),
		calendar.MonthName(f.origin.Date.Month()), f.origin.Date.Year())

	lines := []string{th.Modal.Title.Render(title), th.Modal.Label.Render(date), ""}
	for i := range f.inputs {
		if f.kind == item.KindTask && i == fieldDuration {
			continue
		}
		label := fmt.Sprintf("%-12s", fieldLabels[i])
		if i == f.focus {
			label = th.Modal.Selected.Render(label)
		} else {
			label = th.Modal.Label.Render(label)
		}
		lines = append(lines, label+" "+f.inputs[i].View())
	}
	if f.err != "" {
		lines = append(lines, "", th.Modal.Error.Render(f.err))
	}
	hints := []string{"entrée enregistrer", "tab champ suivant", "échap annuler"}
	if len(f.kinds) > 1 {
		hints = append(hints, "ctrl+t événement/tâche")
	}
	lines = append(lines, "", th.Footer.Help.Render(strings.Join(hints, " · ")))

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return th.Modal.Frame.Width(width).Render(body)
}
