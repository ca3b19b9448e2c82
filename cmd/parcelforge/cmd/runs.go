package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcelforge/internal/core/config"
	"github.com/parcelforge/parcelforge/internal/correction"
	"github.com/parcelforge/parcelforge/internal/schema"
	"github.com/parcelforge/parcelforge/internal/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded correction runs",
	RunE:  runListRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one correction run with its attempt trail",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.Flags().Int("limit", 50, "maximum number of runs to list")
}

func runListRuns(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	limit, _ := cmd.Flags().GetInt("limit")
	summaries, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	for _, s := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %d attempt(s)  %s  %s\n",
			s.CreatedAt.Format("2006-01-02 15:04:05"), s.Outcome, s.Attempts, s.ID, s.TemplateName)
	}
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runID, err := types.ParseRunID(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:      %s\n", run.ID)
	fmt.Fprintf(out, "Template: %s\n", run.TemplateName)
	fmt.Fprintf(out, "Outcome:  %s after %d attempt(s)\n", run.Outcome, len(run.Attempts))
	fmt.Fprintf(out, "Recorded: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))

	for _, a := range run.Attempts {
		fmt.Fprintf(out, "\nAttempt %d:", a.Number)
		if a.Succeeded {
			fmt.Fprintln(out, " succeeded")
			continue
		}
		fmt.Fprintf(out, " %d violation(s), repaired=%v\n", len(a.Errors), a.HasOutput)
		fmt.Fprintln(out, schema.FormatErrors(schema.ValidationResult{Errors: a.Errors}))
	}

	if run.Outcome == correction.OutcomeEscalated && len(run.Errors) > 0 {
		fmt.Fprintln(out, "\nFinal violations:")
		fmt.Fprintln(out, schema.FormatErrors(schema.ValidationResult{Errors: run.Errors}))
	}
	return nil
}
