package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/commands/options"
	"tableflip.dev/hubz/pkg/controller"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/printers"
	"tableflip.dev/hubz/pkg/store"
)

func addCalendar(topLevel *cobra.Command, e *env) {
	oo := &options.OutputOptions{}
	on := &options.OnOptions{}
	mo := &options.ModeOptions{}

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal", "calendrier"},
		Short:   "print the month, week or day around a date",
		Example: `
hubz calendar
hubz calendar --mode=semaine --on=demain
hubz cal -m day --on=2024-3-15 -o json
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			return oo.HandleError(runCalendar(cmd, e, oo, on, mo))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddOnArgs(cmd, on)
	options.AddModeArgs(cmd, mo, calendar.ModeMonth)
	_ = cmd.RegisterFlagCompletionFunc("mode", modeCompletions)

	topLevel.AddCommand(cmd)
}

func runCalendar(cmd *cobra.Command, e *env, oo *options.OutputOptions, on *options.OnOptions, mo *options.ModeOptions) error {
	format, err := oo.Format()
	if err != nil {
		return err
	}
	loc, err := e.location()
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	anchor, err := on.GetOn(now, loc)
	if err != nil {
		return err
	}

	mode, err := e.calendarMode(cmd.Flags().Changed("mode"), mo)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	b, closeBackend, err := e.openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeBackend() }()

	from, to := calendar.RangeOf(mode, anchor)
	items, err := controller.Fetch(ctx, b, []item.Kind{item.KindEvent, item.KindTask}, from, to, loc)
	if err != nil {
		return err
	}

	if format != printers.FormatText {
		return printers.Encode(cmd.OutOrStdout(), format, printers.NewCalendarDoc(mode, anchor, items))
	}
	pp := &printers.PrettyPrint{ShowID: oo.IDs, Out: cmd.OutOrStdout()}
	pp.Calendar(mode, anchor, now, items)
	pp.Legend()
	return nil
}

// calendarMode is the --mode flag when given, else the mode last chosen in
// the full screen view.
func (e *env) calendarMode(modeSet bool, mo *options.ModeOptions) (calendar.Mode, error) {
	if !modeSet {
		if prefs, err := store.Load(e.settings); err == nil {
			if saved, ok := prefs.ViewMode(e.scope); ok {
				if m, err := calendar.ParseMode(saved); err == nil {
					return m, nil
				}
			}
		}
	}
	return mo.GetMode()
}

func modeCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, m := range calendar.Modes {
		out = append(out, string(m)+"\t"+m.Label())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
