package options

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/timeutil"
)

// InteractiveOptions
type InteractiveOptions struct {
	Interactive bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", false,
		`Prompt for the fields not given as flags.`)
}

// DraftOptions are the creation flags shared by events and tasks.
type DraftOptions struct {
	At          string
	For         string
	Location    string
	Description string
}

func AddDraftArgs(cmd *cobra.Command, o *DraftOptions, kind item.Kind) {
	cmd.Flags().StringVar(&o.At, "at", "",
		`Start time as HH:MM, example: --at=09:30. Without it the item takes the whole day.`)
	cmd.Flags().StringVar(&o.Description, "description", "",
		"Optional notes.")
	if kind == item.KindEvent {
		cmd.Flags().StringVar(&o.For, "for", "",
			`Length, example: --for=1h30m. Defaults to 1h.`)
		cmd.Flags().StringVar(&o.Location, "location", "",
			"Optional place.")
	}
}

// Prompter asks for missing draft fields.
type Prompter struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
	Now    time.Time
	Loc    *time.Location
}

var templates = &promptui.PromptTemplates{
	Prompt:  "{{ . }} : ",
	Valid:   "{{ . | green }} : ",
	Invalid: "{{ . | red }} : ",
	Success: "{{ . | bold }} : ",
}

func (p Prompter) ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Templates: templates,
		Validate:  validate,
		Stdin:     p.Stdin,
		Stdout:    p.Stdout,
	}
	return prompt.Run()
}

// Fill prompts for the fields of d that are still empty.
func (p Prompter) Fill(d *item.Draft) error {
	var err error
	if strings.TrimSpace(d.Title) == "" {
		d.Title, err = p.ask("Titre", "", func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("titre requis")
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	def := ""
	if !d.Date.IsZero() {
		def = calendar.FormatISODate(d.Date)
	}
	raw, err := p.ask("Date", def, func(s string) error {
		_, err := ParseDay(s, p.Now, p.Loc)
		return err
	})
	if err != nil {
		return err
	}
	if d.Date, err = ParseDay(raw, p.Now, p.Loc); err != nil {
		return err
	}

	if d.Time == "" {
		d.Time, err = p.ask("Heure (HH:MM, vide pour la journée)", "", func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
				return fmt.Errorf("heure invalide")
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if d.Kind == item.KindEvent && d.Duration == "" && strings.TrimSpace(d.Time) != "" {
		d.Duration, err = p.ask("Durée", "1h", func(s string) error {
			_, _, err := timeutil.ParseDuration(s)
			return err
		})
		if err != nil {
			return err
		}
	}
	return d.Validate()
}
