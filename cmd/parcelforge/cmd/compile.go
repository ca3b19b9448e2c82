package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/parcelforge/parcelforge/internal/filter"
	"github.com/parcelforge/parcelforge/internal/types"
)

var compileCmd = &cobra.Command{
	Use:   "compile [filter-file]",
	Short: "Compile a filter definition into a SQL predicate and explanation",
	Long: `Compile reads a JSON filter definition (a condition tree of AND/OR groups
and field conditions), canonicalizes it, and emits both the SQL WHERE
predicate and a human-readable explanation of the same structure.

Reads from stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("json", false, "emit the compiled filter as JSON")
}

func runCompile(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	node, err := types.DecodeNode(data)
	if err != nil {
		return fmt.Errorf("failed to parse filter definition: %w", err)
	}

	compiled, err := filter.Compile(node)
	if err != nil {
		return fmt.Errorf("failed to compile filter: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		out, err := json.MarshalIndent(compiled, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "SQL:         %s\n", compiled.Predicate)
	fmt.Fprintf(cmd.OutOrStdout(), "Explanation: %s\n", compiled.Explanation)
	fmt.Fprintf(cmd.OutOrStdout(), "Columns:     %v\n", compiled.Columns)
	fmt.Fprintf(cmd.OutOrStdout(), "Conditions:  %d\n", compiled.Conditions)
	return nil
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return data, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}
