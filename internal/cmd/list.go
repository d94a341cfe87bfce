package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/bwing/internal/observability"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all files of the bucket",
	Long: `List every object key under the b-wing/ prefix, one per line.

Only the first page of results (up to 1000 keys) is returned.

Examples:
  bwing list
  bwing list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, cleanup, err := newService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sum, err := svc.List(ctx)
	if err != nil {
		observability.CLILogger.Error("Failed to list objects", zap.Error(err))
		return operationError(ctx, "Failed to list objects", err)
	}

	observability.CLILogger.Debug("List complete", zap.Int("listed", sum.Listed))
	return nil
}
