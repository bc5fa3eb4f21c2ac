package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/practice"
)

var drillCmd = &cobra.Command{
	Use:   "drill <goal-id>",
	Short: "Answer generated practice questions for a goal on the command line",
	Long: `Generate and interactively answer practice questions over a goal's content.

Questions rotate through segments of the goal text; the next one is
generated while you answer. Nothing is recorded as progress.`,
	Args: cobra.ExactArgs(1),
	RunE: runDrill,
}

func init() {
	drillCmd.Flags().IntP("count", "n", 5, "Number of questions to ask")
}

func runDrill(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		return fmt.Errorf("--count must be positive, got %d", count)
	}

	rt, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	goal, err := rt.goal(args[0])
	if err != nil {
		return err
	}
	gw, err := rt.gateway(cmd.Context())
	if err != nil {
		return err
	}

	slot := &guard.Slot{}
	token, ctx := slot.Acquire(cmd.Context())
	defer slot.Release(token)

	d := practice.New(ctx, practice.Config{Gateway: gw, Log: rt.log}, goal, rt.library.GoalText(goal), slot, token)
	defer d.Close()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("Goal: %s (%d segments)\n", goal.Title, d.Segments())
	fmt.Printf("Answering %d questions...\n\n", count)

	for i := 1; i <= count; i++ {
		item, err := d.Next(ctx)
		if err != nil {
			fmt.Printf("Question %d: generation failed: %v\n\n", i, err)
			continue
		}

		q := item.Question
		fmt.Printf("── Question %d/%d (segment %d) ──\n", i, count, item.Segment+1)
		fmt.Println(q.Stem)
		for j, o := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, o.Text)
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		sel := -1
		if n, err := strconv.Atoi(answer); err == nil {
			sel = n - 1
		}

		correct, err := d.Answer(sel)
		if err != nil {
			return err
		}
		if correct {
			fmt.Println("\033[32m✓ Correct!\033[0m")
		} else if c := q.CorrectOption(); c >= 0 {
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %d) %s\n", c+1, q.Options[c].Text)
		}
		fmt.Println()
	}

	st := d.Stats()
	fmt.Printf("── Summary: %d/%d correct ──\n", st.Correct, st.Answered)
	return nil
}
