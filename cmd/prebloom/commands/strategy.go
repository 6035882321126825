package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/prebloom/internal/strategyconfig"
)

// strategyCmd groups strategy file helpers
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Inspect and validate strategy YAML files",
}

// strategyCheckCmd validates a strategy file without scanning
var strategyCheckCmd = &cobra.Command{
	Use:   "check [FILE]",
	Short: "Validate a strategy file and print warnings and its hash",
	Long: `Decodes the file over the built-in defaults (unknown keys are errors),
runs field and cross-field validation, and prints soft warnings.

Example:
  go run ./cmd/prebloom strategy check strategy.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStrategyCheck,
}

// strategyDefaultCmd prints the built-in strategy
var strategyDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in strategy as YAML (a starting point for your own file)",
	Args:  cobra.NoArgs,
	RunE:  runStrategyDefault,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyCheckCmd)
	strategyCmd.AddCommand(strategyDefaultCmd)
}

func runStrategyCheck(cmd *cobra.Command, args []string) error {
	path := strategyFile
	if len(args) == 1 {
		path = args[0]
	}

	out := cmd.OutOrStdout()
	cfg, _, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		PrintError(out, err.Error())
		return err
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	if path == "" {
		path = "(built-in defaults)"
	}
	PrintKeyValue(out, "File", path, 10)
	PrintKeyValue(out, "Strategy", cfg.Meta.StrategyID, 10)
	PrintKeyValue(out, "Hash", hash, 10)

	warnings := strategyconfig.Warn(cfg)
	for _, w := range warnings {
		PrintWarning(out, fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	PrintSuccess(out, fmt.Sprintf("Valid (%d warning(s))", len(warnings)))
	return nil
}

func runStrategyDefault(cmd *cobra.Command, args []string) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(strategyconfig.Default())
}
