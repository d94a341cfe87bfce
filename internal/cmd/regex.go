package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/bwing/internal/observability"
	"github.com/3leaps/bwing/pkg/bucketops"
)

var (
	regexListPattern   string
	regexDeletePattern string
	regexDeleteDryRun  bool
	regexDeleteMaxRPS  float64
)

var regexListCmd = &cobra.Command{
	Use:   "regex-list",
	Short: "List files matching a regex",
	Long: `List keys under b-wing/ that match a regular expression.

The pattern matches anywhere in the full key (including the b-wing/
prefix); anchor it with ^ or $ as needed. Syntax is Go's RE2.

Examples:
  bwing regex-list --regex '\.log$'
  bwing regex-list --regex '^b-wing/report-\d{4}'`,
	Args: cobra.NoArgs,
	RunE: runRegexList,
}

var regexDeleteCmd = &cobra.Command{
	Use:   "regex-delete",
	Short: "Delete files matching a regex",
	Long: `Delete every key under b-wing/ that matches a regular expression.

Keys are deleted one at a time in listing order. The first failed delete
stops the run; keys already deleted stay deleted.

Examples:
  bwing regex-delete --regex '^b-wing/tmp/'
  bwing regex-delete --regex '\.bak$' --dry-run
  bwing regex-delete --regex '.*' --max-rps 5`,
	Args: cobra.NoArgs,
	RunE: runRegexDelete,
}

func init() {
	rootCmd.AddCommand(regexListCmd)
	rootCmd.AddCommand(regexDeleteCmd)

	regexListCmd.Flags().StringVar(&regexListPattern, "regex", "", "Regex to match file names")
	_ = regexListCmd.MarkFlagRequired("regex")

	regexDeleteCmd.Flags().StringVar(&regexDeletePattern, "regex", "", "Regex files for deletion")
	regexDeleteCmd.Flags().BoolVar(&regexDeleteDryRun, "dry-run", false, "Report matches without deleting")
	regexDeleteCmd.Flags().Float64Var(&regexDeleteMaxRPS, "max-rps", 0, "Max delete calls per second (0 = config value or unlimited)")
	_ = regexDeleteCmd.MarkFlagRequired("regex")
}

func runRegexList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, cleanup, err := newService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sum, err := svc.RegexList(ctx, regexListPattern)
	if err != nil {
		observability.CLILogger.Error("Regex list failed", zap.String("regex", regexListPattern), zap.Error(err))
		return operationError(ctx, "Failed to list objects", err)
	}

	observability.CLILogger.Debug("Regex list complete",
		zap.Int("listed", sum.Listed),
		zap.Int("matched", sum.Matched))
	return nil
}

func runRegexDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if regexDeleteMaxRPS < 0 {
		observability.CLILogger.Error("Invalid --max-rps value", zap.Float64("max_rps", regexDeleteMaxRPS))
		return exitError(foundry.ExitInvalidArgument, "Invalid --max-rps value", errNegativeRate)
	}
	maxRPS := regexDeleteMaxRPS
	if maxRPS == 0 && appConfig != nil {
		maxRPS = appConfig.Delete.MaxRPS
	}

	svc, cleanup, err := newService(cmd, bucketops.WithDeleteRate(maxRPS))
	if err != nil {
		return err
	}
	defer cleanup()

	sum, err := svc.RegexDelete(ctx, regexDeletePattern, bucketops.DeleteOptions{DryRun: regexDeleteDryRun})
	if err != nil {
		observability.CLILogger.Error("Regex delete failed",
			zap.String("regex", regexDeletePattern),
			zap.Int("deleted", sum.Deleted),
			zap.Int("matched", sum.Matched),
			zap.Error(err))
		return operationError(ctx, "Failed to delete objects", err)
	}

	observability.CLILogger.Debug("Regex delete complete",
		zap.Int("listed", sum.Listed),
		zap.Int("matched", sum.Matched),
		zap.Int("deleted", sum.Deleted),
		zap.Bool("dry_run", regexDeleteDryRun))
	return nil
}
