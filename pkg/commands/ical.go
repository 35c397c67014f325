package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/calendar"
	"tableflip.dev/hubz/pkg/commands/options"
	"tableflip.dev/hubz/pkg/ical"
	"tableflip.dev/hubz/pkg/printers"
)

func addExport(topLevel *cobra.Command, e *env) {
	on := &options.OnOptions{}
	mo := &options.ModeOptions{}
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "write the events of a month, week or day as iCalendar",
		Example: `
hubz export > mars.ics
hubz export --mode=semaine --on=2024-3-11 --file=semaine.ics
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			var w io.Writer = cmd.OutOrStdout()
			if file != "" && file != "-" {
				f, err := os.Create(file)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := ical.Export(w, events, time.Now().UTC()); err != nil {
				return err
			}
			slog.Info("exported events", "count", len(events), "from", from, "to", to)
			return nil
		},
	}

	options.AddOnArgs(cmd, on)
	options.AddModeArgs(cmd, mo, calendar.ModeMonth)
	_ = cmd.RegisterFlagCompletionFunc("mode", modeCompletions)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Write to this file instead of stdout.")

	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command, e *env) {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import file.ics",
		Short: "create the events of an iCalendar file",
		Example: `
hubz import agenda.ics
hubz import --dry-run - < agenda.ics
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := e.location()
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				r = f
			}
			events, err := ical.Import(r, loc)
			if err != nil {
				return err
			}

			pp := &printers.PrettyPrint{Out: cmd.OutOrStdout()}
			if dryRun {
				pp.TitleWithCount("À importer", len(events))
				pp.Events(events...)
				return nil
			}

			b, closeBackend, err := e.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeBackend() }()

			created := 0
			for _, ev := range events {
				ev.ID = ""
				if _, err := b.CreateEvent(cmd.Context(), ev); err != nil {
					return fmt.Errorf("import %q: %w", ev.Title, err)
				}
				created++
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d événement(s) importé(s)\n", created)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the events without creating them.")

	topLevel.AddCommand(cmd)
}
