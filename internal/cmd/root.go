// Package cmd implements the bwing command tree.
package cmd

import (
	"context"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/3leaps/bwing/internal/config"
	"github.com/3leaps/bwing/internal/observability"
)

const serviceName = "bwing"

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool

	// appConfig is populated by the root PersistentPreRunE.
	appConfig *config.Config
)

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "unknown",
	BuildDate: "unknown",
}

var rootCmd = &cobra.Command{
	Use:   "bwing",
	Short: "Manage objects under b-wing/ in the developer-task bucket",
	Long: `bwing lists, uploads, and regex-deletes objects stored under the
b-wing/ prefix of the developer-task S3 bucket.

Credentials come from the AWS default chain (environment, shared config,
instance roles). A .env file in the working directory is loaded first.

Examples:
  bwing list
  bwing upload --local-file ./report.csv --s3-key reports/report.csv
  bwing regex-list --regex '\.log$'
  bwing regex-delete --regex '^b-wing/tmp/'`,
	// Unknown subcommands, with or without flags, land here and get the
	// help text, not an error.
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  initConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			observability.CLILogger.Debug("Unknown command", zap.Strings("args", args))
		}
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./bwing.yaml or $XDG_CONFIG_HOME/bwing/bwing.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit JSONL records instead of text")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	observability.InitCLILogger(serviceName, false)
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo records build metadata injected via ldflags.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// skipsConfig reports whether cmd runs without loading configuration:
// the bare root, help, and the completion scripts.
func skipsConfig(cmd *cobra.Command) bool {
	if cmd == cmd.Root() || cmd.Name() == "help" {
		return true
	}
	for c := cmd; c.HasParent(); c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}

// initConfig loads .env, the config file and environment overrides, then
// sets the log level. Commands that only print help text skip it, so a
// broken config never hides the usage.
func initConfig(cmd *cobra.Command, args []string) error {
	if skipsConfig(cmd) {
		return nil
	}

	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		observability.CLILogger.Warn("Ignoring unreadable env file", zap.String("path", config.DefaultEnvFile), zap.Error(err))
	}

	cfg, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		observability.CLILogger.Error("Failed to load configuration", zap.String("config", cfgFile), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}
	appConfig = cfg

	level := observability.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = zapcore.DebugLevel
	}
	observability.SetLevel(serviceName, level)

	observability.CLILogger.Debug("Configuration loaded",
		zap.String("bucket", cfg.Bucket()),
		zap.String("prefix", cfg.Prefix()),
		zap.String("region", cfg.Storage.Region),
		zap.String("endpoint", cfg.Storage.Endpoint))
	return nil
}
