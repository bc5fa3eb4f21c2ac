package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/store"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "List the goals in the content library",
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
		done := make(map[string]store.GoalProgress, len(rows))
		for _, r := range rows {
			done[r.GoalID] = r
		}

		goals := rt.library.Goals()
		if len(goals) == 0 {
			fmt.Println("No goals found.")
			return nil
		}

		fmt.Printf("%-24s  %-44s  %5s  %5s  %s\n", "ID", "Title", "Steps", "Entry", "Status")
		fmt.Println(strings.Repeat("─", 100))
		for _, g := range goals {
			status := "-"
			if p, ok := done[g.ID]; ok {
				status = fmt.Sprintf("%s (%d×)", p.Status, p.Completions)
			}
			fmt.Printf("%-24s  %-44s  %5d  %5d  %s\n",
				truncate(g.ID, 24), truncate(g.Title, 44), len(g.Refs), len(g.Entry), status)
		}
		return nil
	},
}
