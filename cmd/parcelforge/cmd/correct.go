package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parcelforge/parcelforge/internal/core/config"
	"github.com/parcelforge/parcelforge/internal/correction"
	"github.com/parcelforge/parcelforge/internal/llm"
	"github.com/parcelforge/parcelforge/internal/render"
	"github.com/parcelforge/parcelforge/internal/schema"
	"github.com/parcelforge/parcelforge/internal/types"
)

var correctCmd = &cobra.Command{
	Use:   "correct --schema <schema-file> <template-file>",
	Short: "Render, validate, and repair a mapping template",
	Long: `Correct runs the self-correction loop: render the template against a
sample record, validate the output against the carrier schema, and on
failure ask the repair collaborator for a fixed template, up to the
configured attempt ceiling. Every run is recorded in the audit store.

The OpenAI API key is read from the PF_OPENAI_API_KEY environment variable.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

func init() {
	rootCmd.AddCommand(correctCmd)
	correctCmd.Flags().String("schema", "", "carrier schema file (JSON or YAML)")
	correctCmd.Flags().String("sample", "", "sample record file (JSON); synthesized from the schema when omitted")
	correctCmd.Flags().Int("max-attempts", 0, "attempt ceiling (1-5, overrides config)")
	correctCmd.Flags().Bool("auto-accept", false, "accept repaired templates without confirmation")
	correctCmd.Flags().Bool("no-repair", false, "validate only; never call the repair collaborator")
	correctCmd.Flags().Bool("no-audit", false, "skip recording the run in the audit store")
	correctCmd.MarkFlagRequired("schema")
}

func runCorrect(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("max-attempts") {
		cfg.Correction.MaxAttempts, _ = cmd.Flags().GetInt("max-attempts")
	}
	if cmd.Flags().Changed("auto-accept") {
		cfg.Correction.AutoAccept, _ = cmd.Flags().GetBool("auto-accept")
	}
	if noRepair, _ := cmd.Flags().GetBool("no-repair"); noRepair {
		cfg.Correction.Enabled = false
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	schemaPath, _ := cmd.Flags().GetString("schema")
	target, err := loadSchemaFile(schemaPath)
	if err != nil {
		return err
	}

	templateData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", args[0], err)
	}

	sample, err := loadSampleRecord(cmd)
	if err != nil {
		return err
	}

	var repairer correction.Repairer
	if cfg.Correction.Enabled {
		apiKey, err := config.OpenAIAPIKey()
		if err != nil {
			return err
		}
		repairer, err = llm.NewOpenAIRepairer(apiKey, cfg.OpenAI.Model)
		if err != nil {
			return err
		}
	}

	loopCfg := correction.Config{
		MaxAttempts: cfg.Correction.MaxAttempts,
		Enabled:     cfg.Correction.Enabled,
		AutoAccept:  cfg.Correction.AutoAccept,
	}
	loop := correction.NewLoop(render.NewEngine(), repairer, loopCfg, correction.WithLogger(logger))

	// Cancellation takes effect between attempts; an in-flight repair call is
	// never interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := loop.Run(ctx, string(templateData), sample, target)

	if noAudit, _ := cmd.Flags().GetBool("no-audit"); !noAudit {
		store, cleanup, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		runID, err := store.RecordRun(filepath.Base(args[0]), res)
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		logger.Info("correction run recorded", zap.String("run_id", string(runID)))
		fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %s\n", runID)
	}

	return reportResult(cmd, res)
}

func loadSampleRecord(cmd *cobra.Command) (types.Record, error) {
	samplePath, _ := cmd.Flags().GetString("sample")
	if samplePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(samplePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample %s: %w", samplePath, err)
	}

	var sample types.Record
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("failed to parse sample %s: %w", samplePath, err)
	}
	return sample, nil
}

func reportResult(cmd *cobra.Command, res *correction.Result) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Outcome: %s after %d attempt(s)\n", res.Outcome, len(res.Attempts))

	switch res.Outcome {
	case correction.OutcomeSuccess:
		if res.RequiresConfirmation {
			fmt.Fprintln(out, "Template was repaired; review before accepting:")
		}
		fmt.Fprintln(out, res.FinalTemplate)
		return nil

	case correction.OutcomeEscalated:
		fmt.Fprintln(out, schema.FormatErrors(schema.ValidationResult{Errors: res.Errors}))
		return fmt.Errorf("correction escalated after %d attempt(s)", len(res.Attempts))

	default:
		return fmt.Errorf("correction aborted after %d attempt(s)", len(res.Attempts))
	}
}
