package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/remind"
	"tableflip.dev/hubz/pkg/store"
	"tableflip.dev/hubz/pkg/timeutil"
)

func addRemind(topLevel *cobra.Command, e *env) {
	var (
		lead     string
		schedule string
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "print the events and tasks starting soon",
		Long: `Print each item starting within the lead time once. Shown items are
remembered so the next run stays quiet. With --watch the check repeats on a
cron schedule until interrupted.`,
		Example: `
hubz remind
hubz remind --lead=30m
hubz remind --watch --schedule="*/5 * * * *"
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if lead == "" {
				lead = e.settings.Remind.Lead
			}
			if schedule == "" {
				schedule = e.settings.Remind.Schedule
			}
			d, _, err := timeutil.ParseDuration(lead)
			if err != nil {
				return err
			}
			loc, err := e.location()
			if err != nil {
				return err
			}
			prefs, err := store.Load(e.settings)
			if err != nil {
				return err
			}
			b, closeBackend, err := e.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closeBackend() }()

			svc := remind.NewService(b, prefs, d, loc)
			notifier := remind.WriterNotifier{Out: cmd.OutOrStdout()}
			if !watch {
				return svc.Check(cmd.Context(), time.Now(), notifier)
			}
			s, err := remind.NewScheduler(svc, notifier, schedule, loc)
			if err != nil {
				return err
			}
			return s.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&lead, "lead", "", "How long before the start to remind, example: --lead=15m.")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule for --watch, five fields.")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and check on the schedule.")

	topLevel.AddCommand(cmd)
}
