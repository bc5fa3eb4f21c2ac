package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/app"
	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/screens/drill"
	"github.com/abhisek/pathwise/internal/screens/home"
	"github.com/abhisek/pathwise/internal/screens/path"
)

var learnCmd = &cobra.Command{
	Use:   "learn <goal-id>",
	Short: "Start the learning path for a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}

// runApp opens the store, builds dependencies, and launches the TUI. A
// non-empty goalID opens that goal's path directly.
func runApp(cmd *cobra.Command, goalID string) error {
	ctx := cmd.Context()
	rt, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if goalID != "" {
		if _, err := rt.goal(goalID); err != nil {
			return err
		}
	}

	gw, err := rt.gateway(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Gateway not configured:", err)
		fmt.Fprintln(os.Stderr, "Set an LLM API key or --gateway-url (see pathwise --help).")
		return err
	}

	// One slot for the whole app: opening a path or a drill invalidates
	// whatever session came before it.
	slot := &guard.Slot{}
	events := rt.store.EventRepo()

	opts := app.Options{
		Log:       rt.log,
		StartGoal: goalID,
		Home: home.Deps{
			Library:  rt.library,
			Progress: rt.store.ProgressRepo(),
			Events:   events,
			Path: path.Deps{
				Gateway:  gw,
				Entries:  rt.library,
				Progress: rt.progress(ctx),
				Attempts: events,
				Slot:     slot,
				Options:  rt.cfg.EngineOptions(),
				Log:      rt.log,
			},
			Drill: drill.Deps{
				Gateway: gw,
				Slot:    slot,
				Log:     rt.log,
			},
			Log: rt.log,
		},
	}
	return app.Run(opts)
}
