package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/controller"
	"tableflip.dev/hubz/pkg/item"
	"tableflip.dev/hubz/pkg/store"
	teaui "tableflip.dev/hubz/pkg/tui/app"
)

func addUI(topLevel *cobra.Command, e *env) {
	var (
		eventsOnly bool
		tasksOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the calendar in full screen",
		Example: `
hubz ui
hubz ui --events-only --backend=sqlite
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			fd := os.Stdout.Fd()
			if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				return errors.New("ui needs a terminal, try hubz calendar instead")
			}
			if eventsOnly && tasksOnly {
				return errors.New("--events-only and --tasks-only are exclusive")
			}

			closeLog, err := e.logFile()
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			prefs, err := store.Load(e.settings)
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

			kinds := []item.Kind{item.KindEvent, item.KindTask}
			switch {
			case eventsOnly:
				kinds = []item.Kind{item.KindEvent}
			case tasksOnly:
				kinds = []item.Kind{item.KindTask}
			}

			page := controller.New(b, prefs,
				controller.WithScope(e.scope),
				controller.WithLocation(loc),
				controller.WithKinds(kinds...),
			)
			return teaui.Run(cmd.Context(), page, teaui.Options{
				Prefs: prefs,
				Dark:  termenv.HasDarkBackground(),
			})
		},
	}

	cmd.Flags().BoolVar(&eventsOnly, "events-only", false, "Hide tasks.")
	cmd.Flags().BoolVar(&tasksOnly, "tasks-only", false, "Hide events.")

	topLevel.AddCommand(cmd)
}
