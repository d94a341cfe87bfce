package cmd

import (
	"context"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/bwing/internal/config"
	"github.com/3leaps/bwing/internal/observability"
	"github.com/3leaps/bwing/pkg/bucketops"
	"github.com/3leaps/bwing/pkg/output"
	"github.com/3leaps/bwing/pkg/provider"
	"github.com/3leaps/bwing/pkg/provider/file"
	"github.com/3leaps/bwing/pkg/provider/s3"
)

// newStore connects to the configured bucket. Tests swap it for an
// in-memory store.
var newStore = func(ctx context.Context, cfg *config.Config) (provider.ObjectStore, error) {
	if cfg.Storage.Backend == config.BackendFile {
		return file.New(file.Config{BaseDir: cfg.Storage.BaseDir, Bucket: cfg.Bucket()})
	}
	return s3.New(ctx, s3Config(cfg))
}

func s3Config(cfg *config.Config) s3.Config {
	return s3.Config{
		Bucket:   cfg.Bucket(),
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.Storage.Profile,
		// S3-compatible services (moto, MinIO, etc.) need path-style URLs.
		ForcePathStyle: cfg.Storage.ForcePathStyle || cfg.Storage.Endpoint != "",
		Credentials:    s3.AmbientCredentials{},
	}
}

// newService connects to storage and builds the bucket service for cmd.
// The returned cleanup flushes JSONL output and must always be called.
func newService(cmd *cobra.Command, opts ...bucketops.Option) (*bucketops.Service, func(), error) {
	ctx := cmd.Context()
	cfg := appConfig
	if cfg == nil {
		cfg = &config.Config{}
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		observability.CLILogger.Error("Failed to create provider", zap.String("bucket", cfg.Bucket()), zap.Error(err))
		return nil, func() {}, exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}

	cleanup := func() {}
	var reporter bucketops.Reporter
	if jsonOutput {
		runID := uuid.NewString()
		w := output.NewJSONLWriter(cmd.OutOrStdout(), runID, cfg.Bucket())
		reporter = bucketops.NewJSONReporter(w)
		cleanup = func() { _ = w.Close() }
		observability.CLILogger.Debug("JSONL output enabled", zap.String("run_id", runID))
	} else {
		reporter = bucketops.NewTextReporter(cmd.OutOrStdout(), cfg.Bucket())
	}

	opts = append([]bucketops.Option{
		bucketops.WithReporter(reporter),
		bucketops.WithLogger(observability.CLILogger),
	}, opts...)

	svc, err := bucketops.New(store, bucketops.Config{Bucket: cfg.Bucket(), Prefix: cfg.Prefix()}, opts...)
	if err != nil {
		cleanup()
		observability.CLILogger.Error("Invalid bucket configuration", zap.Error(err))
		return nil, func() {}, exitError(foundry.ExitInvalidArgument, "Invalid bucket configuration", err)
	}
	return svc, cleanup, nil
}
