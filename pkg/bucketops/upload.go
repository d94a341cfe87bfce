package bucketops

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/3leaps/bwing/pkg/provider"
)

// UploadResult describes one upload attempt.
type UploadResult struct {
	LocalFile   string
	Key         string
	Size        int64
	ContentType string

	// Err is the failure that stopped the upload, if any. It has already
	// been reported.
	Err error
}

// Upload copies localFile to Key(suffix), overwriting any existing object.
//
// Failures are reported through the Reporter and recorded in the result;
// the returned error is only set when reporting itself fails.
func (s *Service) Upload(ctx context.Context, localFile, suffix string) (UploadResult, error) {
	res := UploadResult{LocalFile: localFile, Key: s.Key(suffix)}

	if err := s.upload(ctx, &res); err != nil {
		res.Err = err
		s.log.Debug("Upload failed",
			zap.String("local_file", localFile),
			zap.String("key", res.Key),
			zap.Error(err))
		return res, s.reporter.UploadFailed(ctx, res, err)
	}
	return res, s.reporter.Uploaded(ctx, res)
}

func (s *Service) upload(ctx context.Context, res *UploadResult) error {
	f, err := os.Open(res.LocalFile)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", res.LocalFile)
	}
	res.Size = info.Size()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("detect content type: %w", err)
	}
	res.ContentType = mt.String()
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	return s.store.PutObject(ctx, res.Key, f, provider.PutOptions{
		ContentLength: res.Size,
		ContentType:   res.ContentType,
	})
}
