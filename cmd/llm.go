package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/llm"
	"github.com/abhisek/examiz/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded question-generation and evaluation calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	Args:  cobra.NoArgs,
	RunE:  withEventStore(runLLMList),
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Print the full prompt and reply of one call",
	Args:  cobra.ExactArgs(1),
	RunE:  withEventStore(runLLMView),
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Token usage per purpose and estimated cost per model",
	Args:  cobra.NoArgs,
	RunE:  withEventStore(runLLMStats),
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "",
		"only calls made for this purpose ("+strings.Join([]string{
			llm.PurposeQuestionGen, llm.PurposeQuestionVariations, llm.PurposeAnswerEval,
		}, ", ")+")")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

// withEventStore opens the configured database for the duration of run.
func withEventStore(run func(*cobra.Command, []string, store.EventRepo) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		driver, dsn, err := resolveDB(cmd)
		if err != nil {
			return fmt.Errorf("resolve database: %w", err)
		}
		s, err := store.OpenDriver(driver, dsn)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()
		return run(cmd, args, s.EventRepo())
	}
}

func runLLMList(cmd *cobra.Command, _ []string, events store.EventRepo) error {
	limit, _ := cmd.Flags().GetInt("limit")
	purpose, _ := cmd.Flags().GetString("purpose")

	list, err := events.QueryLLMEvents(contextOf(cmd), store.QueryOpts{Limit: limit, Purpose: purpose})
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No LLM calls recorded.")
		return nil
	}

	const row = "%-5v  %-14v  %-20v  %-28v  %7v  %7v  %7v  %v\n"
	fmt.Fprintf(out, row, "ID", "When", "Purpose", "Model", "In", "Out", "Ms", "OK")
	rule(out, 102)
	for _, e := range list {
		status := "✓"
		if !e.Success {
			status = "✗"
		}
		fmt.Fprintf(out, row, e.ID, humanize.Time(e.Timestamp), e.Purpose, truncate(e.Model, 28),
			e.InputTokens, e.OutputTokens, e.LatencyMs, status)
	}
	return nil
}

func runLLMView(cmd *cobra.Command, args []string, events store.EventRepo) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("event id %q is not a number", args[0])
	}
	e, err := events.GetLLMEvent(contextOf(cmd), id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if e == nil {
		return fmt.Errorf("event %d: %w", id, exam.ErrNotFound)
	}

	out := cmd.OutOrStdout()
	fields := [][2]string{
		{"ID", strconv.Itoa(e.ID)},
		{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Purpose", e.Purpose},
		{"Tokens", fmt.Sprintf("%s in / %s out", humanize.Comma(int64(e.InputTokens)), humanize.Comma(int64(e.OutputTokens)))},
		{"Latency", fmt.Sprintf("%d ms", e.LatencyMs)},
		{"Success", strconv.FormatBool(e.Success)},
	}
	if e.ErrorMessage != "" {
		fields = append(fields, [2]string{"Error", e.ErrorMessage})
	}
	for _, f := range fields {
		fmt.Fprintf(out, "%-9s %s\n", f[0]+":", f[1])
	}

	for _, part := range [][2]string{{"REQUEST", e.RequestBody}, {"RESPONSE", e.ResponseBody}} {
		fmt.Fprintln(out)
		rule(out, 60)
		fmt.Fprintln(out, part[0])
		rule(out, 60)
		body := part[1]
		if body == "" {
			body = "(not captured)"
		}
		fmt.Fprintln(out, body)
	}
	return nil
}

func runLLMStats(cmd *cobra.Command, _ []string, events store.EventRepo) error {
	ctx := contextOf(cmd)
	out := cmd.OutOrStdout()

	byPurpose, err := events.LLMUsageByPurpose(ctx)
	if err != nil {
		return fmt.Errorf("query usage: %w", err)
	}
	if len(byPurpose) == 0 {
		fmt.Fprintln(out, "No LLM calls recorded.")
		return nil
	}

	const prow = "%-22v  %6v  %10v  %10v  %10v  %8v\n"
	fmt.Fprintln(out, "Usage by purpose")
	rule(out, 76)
	fmt.Fprintf(out, prow, "Purpose", "Calls", "Input", "Output", "Total", "Avg ms")
	rule(out, 76)
	var calls, in, outTok int
	for _, st := range byPurpose {
		fmt.Fprintf(out, prow, st.Purpose, st.Calls, comma(st.InputTokens), comma(st.OutputTokens),
			comma(st.InputTokens+st.OutputTokens), st.AvgLatencyMs)
		calls, in, outTok = calls+st.Calls, in+st.InputTokens, outTok+st.OutputTokens
	}
	rule(out, 76)
	fmt.Fprintf(out, prow, "TOTAL", calls, comma(in), comma(outTok), comma(in+outTok), "")

	byModel, err := events.LLMUsageByModel(ctx)
	if err != nil {
		return fmt.Errorf("query model usage: %w", err)
	}
	if len(byModel) == 0 {
		return nil
	}

	const mrow = "%-32v  %6v  %10v  %10v  %10v\n"
	fmt.Fprintln(out, "\nEstimated cost (USD)")
	rule(out, 76)
	fmt.Fprintf(out, mrow, "Model", "Calls", "Input", "Output", "Cost")
	rule(out, 76)
	var total float64
	var unpriced []string
	for _, mu := range byModel {
		cost := "?"
		if price := llm.LookupCost(mu.Model); price != nil {
			usd := price.Cost(mu.InputTokens, mu.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Fprintf(out, mrow, truncate(mu.Model, 32), mu.Calls, comma(mu.InputTokens), comma(mu.OutputTokens), cost)
	}
	rule(out, 76)
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(out, mrow, label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
	return nil
}

func rule(w io.Writer, n int) { fmt.Fprintln(w, strings.Repeat("─", n)) }

func comma(n int) string { return humanize.Comma(int64(n)) }

// truncate cuts s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// formatCost keeps four decimals for sub-cent amounts.
func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
