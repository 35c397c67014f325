package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/backend"
	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/commands/options"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/printers"
)

func addEvents(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event", "ev"},
		Short:   "list, add and delete events",
	}
	addListEvents(cmd, e)
	addCreate(cmd, e, item.KindEvent)
	addDelete(cmd, e, item.KindEvent)
	topLevel.AddCommand(cmd)
}

func addTasks(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "taches"},
		Short:   "list, add and delete tasks",
	}
	addListTasks(cmd, e)
	addCreate(cmd, e, item.KindTask)
	addDelete(cmd, e, item.KindTask)
	topLevel.AddCommand(cmd)
}

func addListEvents(parent *cobra.Command, e *env) {
	oo := &options.OutputOptions{}
	on := &options.OnOptions{}
	mo := &options.ModeOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list the events of the month, week or day around a date",
		Example: `
hubz events list
hubz events list --mode=jour --on=demain -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return oo.HandleError(func() error {
				format, err := oo.Format()
				if err != nil {
					return err
				}
				loc, err := e.location()
				if err != nil {
					return err
				}
				anchor, err := on.GetOn(time.Now(), loc)
				if err != nil {
					return err
				}
				mode, err := mo.GetMode()
				if err != nil {
					return err
				}
				b, closeBackend, err := e.openBackend(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = closeBackend() }()

				from, to := calendar.RangeOf(mode, anchor)
				events, err := b.ListEvents(cmd.Context(), from, to)
				if err != nil {
					return err
				}
				for i := range events {
					events[i].StartTime = events[i].StartTime.In(loc)
					if !events[i].EndTime.IsZero() {
						events[i].EndTime = events[i].EndTime.In(loc)
					}
				}

				if format != printers.FormatText {
					return printers.Encode(cmd.OutOrStdout(), format, events)
				}
				pp := &printers.PrettyPrint{ShowID: oo.IDs, Out: cmd.OutOrStdout()}
				pp.TitleWithCount(calendar.Header(mode, anchor), len(events))
				pp.Events(events...)
				return nil
			}())
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddOnArgs(cmd, on)
	options.AddModeArgs(cmd, mo, calendar.ModeWeek)
	_ = cmd.RegisterFlagCompletionFunc("mode", modeCompletions)

	parent.AddCommand(cmd)
}

func addListTasks(parent *cobra.Command, e *env) {
	oo := &options.OutputOptions{}
	var undated bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list tasks",
		Example: `
hubz tasks list
hubz tasks list --undated -o json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return oo.HandleError(func() error {
				format, err := oo.Format()
				if err != nil {
					return err
				}
				loc, err := e.location()
				if err != nil {
					return err
				}
				b, closeBackend, err := e.openBackend(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = closeBackend() }()

				tasks, err := b.ListTasks(cmd.Context())
				if err != nil {
					return err
				}
				shown := tasks[:0]
				for _, t := range tasks {
					if undated && t.DueDate != nil {
						continue
					}
					if t.DueDate != nil {
						due := t.DueDate.In(loc)
						t.DueDate = &due
					}
					shown = append(shown, t)
				}

				if format != printers.FormatText {
					return printers.Encode(cmd.OutOrStdout(), format, shown)
				}
				pp := &printers.PrettyPrint{ShowID: oo.IDs, Out: cmd.OutOrStdout()}
				pp.TitleWithCount("Tâches", len(shown))
				pp.Tasks(shown...)
				return nil
			}())
		},
	}

	options.AddOutputArg(cmd, oo)
	cmd.Flags().BoolVar(&undated, "undated", false, "Only tasks without a due date.")

	parent.AddCommand(cmd)
}

func addCreate(parent *cobra.Command, e *env, kind item.Kind) {
	oo := &options.OutputOptions{}
	on := &options.OnOptions{}
	do := &options.DraftOptions{}
	ia := &options.InteractiveOptions{}

	noun := "event"
	if kind == item.KindTask {
		noun = "task"
	}

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: base.Wrap80(fmt.Sprintf("Add a %s. Without --at it lasts the whole day.", noun)),
		Example: fmt.Sprintf(`
hubz %[1]ss add Réunion d'équipe --on=demain --at=09:30
hubz %[1]ss add -i
`, noun),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !ia.Interactive {
				return fmt.Errorf("requires a title, or -i to be prompted")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return oo.HandleError(func() error {
				loc, err := e.location()
				if err != nil {
					return err
				}
				now := time.Now().In(loc)
				d := item.Draft{
					Kind:        kind,
					Title:       strings.Join(args, " "),
					Description: do.Description,
					Location:    do.Location,
					Time:        do.At,
					Duration:    do.For,
				}
				if on.OnString != "" || !ia.Interactive {
					if d.Date, err = on.GetOn(now, loc); err != nil {
						return err
					}
				}
				if ia.Interactive {
					p := options.Prompter{Stdin: os.Stdin, Stdout: os.Stdout, Now: now, Loc: loc}
					if err := p.Fill(&d); err != nil {
						return err
					}
				}
				if err := d.Validate(); err != nil {
					return err
				}

				b, closeBackend, err := e.openBackend(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = closeBackend() }()

				created, err := backend.Create(cmd.Context(), b, d)
				if err != nil {
					return err
				}
				created = created.In(loc)
				if oo.Structured() {
					f, _ := oo.Format()
					return printers.Encode(cmd.OutOrStdout(), f, created)
				}
				pp := &printers.PrettyPrint{ShowID: true, Out: cmd.OutOrStdout()}
				pp.Items(created)
				return nil
			}())
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddOnArgs(cmd, on)
	options.AddDraftArgs(cmd, do, kind)
	options.InteractiveArgs(cmd, ia)

	parent.AddCommand(cmd)
}

func addDelete(parent *cobra.Command, e *env, kind item.Kind) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "delete id...",
		Aliases: []string{"rm", "supprimer"},
		Short:   "delete by identifier, see list --ids",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return oo.HandleError(func() error {
				b, closeBackend, err := e.openBackend(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = closeBackend() }()

				var errs []error
				var deleted []string
				for _, id := range args {
					if err := backend.Delete(cmd.Context(), b, kind, id); err != nil {
						if errors.Is(err, backend.ErrNotFound) {
							err = fmt.Errorf("%s: not found", id)
						}
						errs = append(errs, err)
						continue
					}
					deleted = append(deleted, id)
				}
				if oo.Structured() {
					f, _ := oo.Format()
					if err := printers.Encode(cmd.OutOrStdout(), f, map[string][]string{"deleted": deleted}); err != nil {
						return err
					}
				} else {
					for _, id := range deleted {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "supprimé %s\n", id)
					}
				}
				return errors.Join(errs...)
			}())
		},
	}

	options.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}
