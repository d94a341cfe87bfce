package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/bwing/internal/config"
	"github.com/3leaps/bwing/internal/observability"
	"github.com/3leaps/bwing/pkg/preflight"
	"github.com/3leaps/bwing/pkg/provider"
	"github.com/3leaps/bwing/pkg/provider/s3"
)

var (
	doctorSkipBucket bool
	doctorWriteProbe bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the environment and suggest fixes for common issues.

Examples:
  bwing doctor                # Full check, including bucket access
  bwing doctor --write-probe  # Also verify put/delete permissions
  bwing doctor --skip-bucket  # Local and credential checks only`,
	Args: cobra.NoArgs,
	Run:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorSkipBucket, "skip-bucket", false, "Skip the bucket access checks")
	doctorCmd.Flags().BoolVar(&doctorWriteProbe, "write-probe", false, "Also put and delete a probe object under the prefix")
}

func runDoctor(cmd *cobra.Command, args []string) {
	log := observability.CLILogger
	log.Info("=== bwing doctor ===")
	log.Info("")
	log.Info("Running diagnostic checks...")
	log.Info("")

	cfg := appConfig
	if cfg == nil {
		cfg = &config.Config{}
	}

	allChecks := true
	checkNum := 1
	totalChecks := 7
	if !doctorSkipBucket {
		totalChecks = 8
	}

	// Check 1: Go version
	goVersion := runtime.Version()
	if goVersion >= "go1.23" {
		log.Info(fmt.Sprintf("[%d/%d] Checking Go version... ✅ %s", checkNum, totalChecks, goVersion),
			zap.String("go_version", goVersion))
	} else {
		log.Warn(fmt.Sprintf("[%d/%d] Checking Go version... ⚠️  %s (recommended: go1.23+)", checkNum, totalChecks, goVersion),
			zap.String("go_version", goVersion))
		allChecks = false
	}
	checkNum++

	// Check 2: Fulmen libraries (exit code catalog)
	if !checkFulmenLibraries(crucible.GetVersion(), checkNum, totalChecks) {
		allChecks = false
	}
	checkNum++

	// Check 3: Config directory
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Warn(fmt.Sprintf("[%d/%d] Checking config directory... ⚠️  Cannot find config directory", checkNum, totalChecks),
			zap.Error(err))
	} else {
		log.Info(fmt.Sprintf("[%d/%d] Checking config directory... ✅ %s", checkNum, totalChecks, configDir),
			zap.String("config_dir", configDir))
	}
	checkNum++

	// Check 4: .env file
	if _, err := os.Stat(config.DefaultEnvFile); err == nil {
		log.Info(fmt.Sprintf("[%d/%d] Checking %s... ✅ loaded", checkNum, totalChecks, config.DefaultEnvFile))
	} else {
		log.Info(fmt.Sprintf("[%d/%d] Checking %s... ✅ not present (optional)", checkNum, totalChecks, config.DefaultEnvFile))
	}
	checkNum++

	// Check 5: Environment
	log.Info(fmt.Sprintf("[%d/%d] Checking environment... ✅ %s/%s", checkNum, totalChecks, runtime.GOOS, runtime.GOARCH),
		zap.String("os", runtime.GOOS),
		zap.String("arch", runtime.GOARCH))
	checkNum++

	allChecks = runS3Checks(cmd.Context(), cfg, checkNum, totalChecks, allChecks)

	log.Info("")
	if allChecks {
		log.Info("✅ All checks passed! bwing is ready to use.")
	} else {
		log.Warn("⚠️  Some checks failed. Review the output above for details.")
	}
	log.Info("")
	log.Info("=== End Diagnostics ===")
}

// checkFulmenLibraries reports the gofulmen and crucible versions that
// supply the exit code catalog. A missing version means the build lost
// its embedded catalog.
func checkFulmenLibraries(version crucible.Version, checkNum, totalChecks int) bool {
	log := observability.CLILogger
	if version.Gofulmen == "" || version.Crucible == "" {
		log.Error(fmt.Sprintf("[%d/%d] Checking Fulmen libraries... ❌ Version metadata missing", checkNum, totalChecks),
			zap.String("gofulmen_version", version.Gofulmen),
			zap.String("crucible_version", version.Crucible))
		return false
	}
	log.Info(fmt.Sprintf("[%d/%d] Checking Fulmen libraries... ✅ gofulmen v%s, crucible v%s", checkNum, totalChecks, version.Gofulmen, version.Crucible),
		zap.String("gofulmen_version", version.Gofulmen),
		zap.String("crucible_version", version.Crucible))
	return true
}

// runS3Checks runs credential and bucket checks.
func runS3Checks(ctx context.Context, cfg *config.Config, checkNum, totalChecks int, allChecks bool) bool {
	log := observability.CLILogger
	log.Info("")
	log.Info("S3 Checks:", zap.String("bucket", cfg.Bucket()), zap.String("prefix", cfg.Prefix()))

	// Check 6: AWS credentials
	awsCfg, err := s3.LoadAWSConfig(ctx, s3Config(cfg))
	if err != nil {
		log.Error(fmt.Sprintf("[%d/%d] Checking AWS credentials... ❌ Cannot load AWS config", checkNum, totalChecks),
			zap.Error(err))
		printAWSCredentialsHelp()
		return false
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		log.Error(fmt.Sprintf("[%d/%d] Checking AWS credentials... ❌ Cannot retrieve credentials", checkNum, totalChecks),
			zap.Error(err))
		printAWSCredentialsHelp()
		return false
	}

	source := creds.Source
	if source == "" {
		source = "unknown"
	}
	log.Info(fmt.Sprintf("[%d/%d] Checking AWS credentials... ✅ Found credentials", checkNum, totalChecks),
		zap.String("access_key", maskAccessKey(creds.AccessKeyID)),
		zap.String("credential_source", source))
	checkNum++

	// Check 7: Region
	region := awsCfg.Region
	if region == "" {
		region = "(endpoint default)"
	}
	log.Info(fmt.Sprintf("[%d/%d] Checking region... ✅ %s", checkNum, totalChecks, region),
		zap.String("region", region),
		zap.String("endpoint", cfg.Storage.Endpoint))
	checkNum++

	if doctorSkipBucket {
		return allChecks
	}

	// Check 8: Bucket access
	return checkBucketAccess(ctx, cfg, checkNum, totalChecks) && allChecks
}

// checkBucketAccess runs preflight against the configured prefix.
func checkBucketAccess(ctx context.Context, cfg *config.Config, checkNum, totalChecks int) bool {
	log := observability.CLILogger
	mode := preflight.ModeReadSafe
	if doctorWriteProbe {
		mode = preflight.ModeWriteProbe
	}
	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Error(fmt.Sprintf("[%d/%d] Checking bucket access... ❌ %s", checkNum, totalChecks, bucketHint(err)),
			zap.Error(err))
		return false
	}

	rep, err := preflight.Run(ctx, store, preflight.Spec{Mode: mode, Prefix: cfg.Prefix()})
	for _, res := range rep.Results {
		if res.Allowed {
			log.Info(fmt.Sprintf("[%d/%d] Checking %s... ✅ %s", checkNum, totalChecks, res.Capability, res.Method))
			continue
		}
		log.Error(fmt.Sprintf("[%d/%d] Checking %s... ❌ %s", checkNum, totalChecks, res.Capability, bucketHint(err)),
			zap.String("error_code", res.ErrorCode),
			zap.String("detail", res.Detail))
	}
	return err == nil
}

// bucketHint turns a provider error into a short suggestion.
func bucketHint(err error) string {
	switch provider.Classify(err) {
	case provider.ErrBucketNotFound:
		return "Bucket does not exist (check region and endpoint)"
	case provider.ErrAccessDenied:
		return "Access denied (check IAM permissions on the bucket and prefix)"
	case provider.ErrInvalidCredentials:
		return "Credentials rejected"
	case provider.ErrThrottled, provider.ErrProviderUnavailable:
		return "Service busy or unavailable, try again later"
	default:
		return "Cannot list bucket"
	}
}

// maskAccessKey masks all but the last 4 characters of an access key.
func maskAccessKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// printAWSCredentialsHelp prints help for configuring AWS credentials.
func printAWSCredentialsHelp() {
	log := observability.CLILogger
	log.Info("")
	log.Info("To configure AWS credentials:")
	log.Info("  1. Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY (a .env file works), or")
	log.Info("  2. Run 'aws configure' and set AWS_PROFILE or storage.profile, or")
	log.Info("  3. Use an IAM role when running on AWS infrastructure")
	log.Info("")
	log.Info("For S3-compatible storage (MinIO, moto, etc.), also set:")
	log.Info("  - BWING_STORAGE_ENDPOINT or storage.endpoint in bwing.yaml")
	log.Info("")
}
