// Package theme centralizes the Lip Gloss styles of the calendar UI.
package theme

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme groups the styles used across the UI.
type Theme struct {
	Header HeaderTheme
	Grid   GridTheme
	Footer FooterTheme
	Toast  ToastTheme
	Modal  ModalTheme

	// Dark selects the item palette lightness.
	Dark bool
}

// HeaderTheme styles the title row and mode tabs.
type HeaderTheme struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Loading   lipgloss.Style
}

// GridTheme styles month cells and time slots.
type GridTheme struct {
	Weekday   lipgloss.Style
	Day       lipgloss.Style
	Blank     lipgloss.Style
	Today     lipgloss.Style
	Selected  lipgloss.Style
	SlotLabel lipgloss.Style
	Slot      lipgloss.Style
	Task      lipgloss.Style
	More      lipgloss.Style
}

// FooterTheme styles the key hints.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
}

// ToastTheme styles transient notifications.
type ToastTheme struct {
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// ModalTheme styles overlays drawn above the grid.
type ModalTheme struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Body     lipgloss.Style
	Label    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
}

// Default returns the built-in theme. dark reports a dark terminal
// background.
func Default(dark bool) Theme {
	accent := lipgloss.Color("212")
	muted := lipgloss.Color("244")
	if !dark {
		muted = lipgloss.Color("240")
	}

	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(muted)

	return Theme{
		Dark: dark,
		Header: HeaderTheme{
			Title:     lipgloss.NewStyle().Bold(true),
			Tab:       tab,
			ActiveTab: tab.Foreground(accent).Bold(true).Underline(true),
			Loading:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		},
		Grid: GridTheme{
			Weekday:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
			Day:       lipgloss.NewStyle(),
			Blank:     lipgloss.NewStyle().Foreground(muted),
			Today:     lipgloss.NewStyle().Underline(true).Bold(true),
			Selected:  lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("0")),
			SlotLabel: lipgloss.NewStyle().Foreground(muted),
			Slot:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
			Task:      lipgloss.NewStyle().Italic(true),
			More:      lipgloss.NewStyle().Foreground(muted),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(muted),
		},
		Toast: ToastTheme{
			Info:    lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")),
			Success: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("78")),
			Error:   lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(accent).
				Padding(1, 2),
			Title:    lipgloss.NewStyle().Bold(true),
			Body:     lipgloss.NewStyle(),
			Label:    lipgloss.NewStyle().Foreground(muted),
			Selected: lipgloss.NewStyle().Reverse(true),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		},
	}
}

// ItemHex picks a stable color for an item id. Hues are spread by hashing the
// id; lightness depends on the background.
func ItemHex(id string, dark bool) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	hue := float64(h.Sum32()%360) + 0.5

	l := 0.45
	if dark {
		l = 0.72
	}
	return colorful.Hcl(hue, 0.55, l).Clamped().Hex()
}

// Item returns the style used to draw the item with id.
func (t Theme) Item(id string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ItemHex(id, t.Dark)))
}
