package cmd

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/report"
	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Audit model calls made by the gateway",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		events, err := rt.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if failedOnly {
			events = slices.DeleteFunc(events, func(e store.LLMRequestEvent) bool { return e.Success })
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No model calls recorded.")
			return nil
		}

		t := grid("ID", "When", "Purpose", "Model", "Tokens", "Latency", "")
		for _, e := range events {
			status := theme.Correct.Render("ok")
			if !e.Success {
				status = theme.Incorrect.Render("fail")
			}
			t.Row(
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format("01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				fmt.Sprintf("%d→%d", e.InputTokens, e.OutputTokens),
				fmt.Sprintf("%dms", e.LatencyMs),
				status,
			)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var llmShowCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"view"},
	Short:   "Show the prompt and reply of one model call",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("event id must be a number, got %q", args[0])
		}

		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		e, err := rt.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no model call with id %d", id)
		}
		writeEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

func writeEvent(w io.Writer, e *store.LLMRequestEvent) {
	label := theme.Subtitle.Width(10)
	field := func(name, value string) {
		fmt.Fprintln(w, label.Render(name)+value)
	}
	field("call", fmt.Sprintf("#%d at %s", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05")))
	field("purpose", e.Purpose)
	field("model", e.Provider+"/"+e.Model)
	field("tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens))
	field("latency", fmt.Sprintf("%dms", e.LatencyMs))
	if e.Success {
		field("result", theme.Correct.Render("ok"))
	} else {
		field("result", theme.Incorrect.Render(e.ErrorMessage))
	}

	for _, part := range []struct{ title, body string }{
		{"request", e.RequestBody},
		{"response", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Title.Render("── "+part.title+" "+strings.Repeat("─", 40)))
		if part.body == "" {
			fmt.Fprintln(w, theme.Hint.Render("(not captured)"))
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost per purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		events, err := rt.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		usage := report.Summarize(events)
		if len(usage) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No model calls recorded.")
			return nil
		}

		var (
			calls, in, out int
			cost           float64
			unpriced       []string
		)
		t := grid("Purpose", "Model", "Calls", "Failed", "In", "Out", "Avg", "Cost")
		for _, u := range usage {
			price := "?"
			if llm.LookupCost(u.Model) != nil {
				price = formatCost(u.CostUSD)
				cost += u.CostUSD
			} else if !slices.Contains(unpriced, u.Model) {
				unpriced = append(unpriced, u.Model)
			}
			t.Row(u.Purpose, truncate(u.Model, 28),
				strconv.Itoa(u.Calls), strconv.Itoa(u.Failures),
				strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens),
				fmt.Sprintf("%dms", u.AvgLatencyMs), price)
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}

		total := formatCost(cost)
		if len(unpriced) > 0 {
			total += "+"
		}
		t.Row(theme.Title.Render("total"), "", strconv.Itoa(calls), "",
			strconv.Itoa(in), strconv.Itoa(out), "", total)
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())

		if len(unpriced) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), theme.Hint.Render("no price known for "+strings.Join(unpriced, ", ")))
		}
		return nil
	},
}

// grid returns a borderless table with a bold header row.
func grid(headers ...string) *table.Table {
	head := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).PaddingRight(2)
	cell := lipgloss.NewStyle().PaddingRight(2)
	return table.New().
		Headers(headers...).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			return cell
		})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	f := llmListCmd.Flags()
	f.IntP("limit", "n", 20, "Number of calls to show")
	f.StringP("purpose", "p", "", "Only calls for this purpose (entry-grade, reflection-question, final-test, ...)")
	f.Bool("failed", false, "Only failed calls")

	llmCmd.AddCommand(llmListCmd, llmShowCmd, llmStatsCmd)
}
