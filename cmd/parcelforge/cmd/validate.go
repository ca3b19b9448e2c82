package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcelforge/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate --schema <schema-file> <payload-file>",
	Short: "Validate a payload against a carrier schema",
	Long: `Validate checks a rendered payload against a carrier schema and reports
every violation in one pass: path, expected, actual, and the violated rule
for each. Exits non-zero when the payload is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("schema", "", "carrier schema file (JSON or YAML)")
	validateCmd.MarkFlagRequired("schema")
}

func runValidate(cmd *cobra.Command, args []string) error {
	schemaPath, _ := cmd.Flags().GetString("schema")
	target, err := loadSchemaFile(schemaPath)
	if err != nil {
		return err
	}

	payloadData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read payload %s: %w", args[0], err)
	}

	var payload any
	if err := json.Unmarshal(payloadData, &payload); err != nil {
		return fmt.Errorf("failed to parse payload %s: %w", args[0], err)
	}

	result := schema.Validate(payload, target)
	fmt.Fprintln(cmd.OutOrStdout(), schema.FormatErrors(result))

	if !result.Valid {
		return fmt.Errorf("payload failed validation with %d error(s)", len(result.Errors))
	}
	return nil
}

func loadSchemaFile(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	target, err := schema.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", path, err)
	}
	return target, nil
}
