package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/bwing/internal/observability"
)

var (
	uploadLocalFile string
	uploadS3Key     string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a file to S3",
	Long: `Upload a local file to b-wing/<s3-key>, replacing any existing object.

The key is appended to the prefix as-is: --s3-key sub/dir/file.txt writes
b-wing/sub/dir/file.txt. A failed upload is reported and does not change
the exit status.

Examples:
  bwing upload --local-file ./report.csv --s3-key report.csv
  bwing upload --local-file ./app.log --s3-key logs/2024/app.log`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVar(&uploadLocalFile, "local-file", "", "Path to local file")
	uploadCmd.Flags().StringVar(&uploadS3Key, "s3-key", "", "S3 key (filename) to upload")
	_ = uploadCmd.MarkFlagRequired("local-file")
	_ = uploadCmd.MarkFlagRequired("s3-key")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, cleanup, err := newService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Upload(ctx, uploadLocalFile, uploadS3Key)
	if err != nil {
		observability.CLILogger.Error("Failed to write output", zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to write output", err)
	}
	if res.Err != nil {
		observability.CLILogger.Debug("Upload reported as failed",
			zap.String("local_file", res.LocalFile),
			zap.String("key", res.Key),
			zap.Error(res.Err))
	}
	return nil
}
