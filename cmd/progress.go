package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/report"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect, reset or export learner progress",
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded progress per goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		rows, err := rt.store.ProgressRepo().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list progress: %w", err)
		}
		if len(rows) == 0 {
			fmt.Println("No progress recorded yet.")
			return nil
		}

		fmt.Printf("%-24s  %-10s  %4s  %11s  %s\n", "Goal", "Status", "%", "Completions", "Updated")
		fmt.Println(strings.Repeat("─", 80))
		for _, r := range rows {
			fmt.Printf("%-24s  %-10s  %4d  %11d  %s\n",
				truncate(r.GoalID, 24), r.Status, r.Percentage, r.Completions,
				r.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset [goal-id]",
	Short: "Delete recorded progress for one goal, or all goals",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		goalID := ""
		if len(args) == 1 {
			goalID = args[0]
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			target := "ALL goals"
			if goalID != "" {
				target = goalID
			}
			fmt.Printf("Reset progress for %s? [y/N] ", target)
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		ctx := cmd.Context()
		n, err := rt.store.ProgressRepo().Reset(ctx, goalID)
		if err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}

		if url := rt.cfg.RedisURL; url != "" {
			t, err := progress.NewRedisTracker(ctx, url)
			if err != nil {
				rt.log.Warn("redis progress mirror not reset", "error", err)
			} else {
				defer t.Close()
				if err := t.Reset(ctx, goalID); err != nil {
					rt.log.Warn("redis progress mirror not reset", "error", err)
				}
			}
		}

		fmt.Printf("Removed %d progress row(s).\n", n)
		return nil
	},
}

var progressExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export progress, attempts and LLM usage as a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := report.SaveFile(cmd.Context(), args[0], rt.store, rt.library.Goals()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Println("Wrote", args[0])
		return nil
	},
}

func init() {
	progressResetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressResetCmd)
	progressCmd.AddCommand(progressExportCmd)
}
