package s3

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/3leaps/bwing/pkg/provider"
)

// API is the subset of *s3.Client the provider calls.
type API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Provider implements provider.ObjectStore for AWS S3 and S3-compatible storage.
type Provider struct {
	client API
	bucket string
}

var _ provider.ObjectStore = (*Provider)(nil)

// New creates a new S3 provider with the given configuration.
//
// Credentials are resolved through cfg.Credentials; when that is nil or
// AmbientCredentials the AWS SDK v2 default chain is used.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, &provider.ProviderError{
			Op:       "New",
			Provider: provider.ProviderS3,
			Bucket:   cfg.Bucket,
			Err:      err,
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithClient(client, cfg.Bucket), nil
}

// NewWithClient wraps an existing client. Tests use it to inject fakes.
func NewWithClient(client API, bucket string) *Provider {
	return &Provider{client: client, bucket: bucket}
}

// Bucket returns the bucket the provider is bound to.
func (p *Provider) Bucket() string {
	return p.bucket
}

// LoadAWSConfig resolves the SDK configuration for cfg without building
// a client. The doctor command uses it to inspect credentials.
func LoadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	return loadAWSConfig(ctx, cfg)
}

func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	// Only pin the region when set; otherwise env/profile resolve it first.
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Credentials != nil {
		if creds := cfg.Credentials.AWSCredentials(); creds != nil {
			opts = append(opts, config.WithCredentialsProvider(creds))
		}
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	awsCfg.Region = resolveRegion(cfg.Endpoint, awsCfg.Region)
	return awsCfg, nil
}

// ListObjects returns the keys under prefix from a single ListObjectsV2 call.
// Continuation tokens are not followed.
func (p *Provider) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, p.wrapError("ListObjects", "", err)
	}

	keys := make([]string, 0, len(output.Contents))
	for _, obj := range output.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys, nil
}

// PutObject uploads body to key, overwriting any existing object.
func (p *Provider) PutObject(ctx context.Context, key string, body io.Reader, opts provider.PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if opts.ContentLength >= 0 {
		input.ContentLength = aws.Int64(opts.ContentLength)
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return p.wrapError("PutObject", key, err)
	}
	return nil
}

// DeleteObject deletes the object at key.
func (p *Provider) DeleteObject(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(p.bucket), Key: aws.String(key)})
	if err != nil {
		return p.wrapError("DeleteObject", key, err)
	}
	return nil
}

// wrapError converts S3 errors to provider errors with appropriate sentinel errors.
// The SDK error text stays in the message.
func (p *Provider) wrapError(op, key string, err error) error {
	wrapped := &provider.ProviderError{
		Op:       op,
		Provider: provider.ProviderS3,
		Bucket:   p.bucket,
		Key:      key,
		Err:      err,
	}

	if sentinel := classify(err); sentinel != nil {
		wrapped.Err = &classifiedError{sentinel: sentinel, cause: err}
	}
	return wrapped
}

// classify maps an SDK error to a provider sentinel, or nil when unknown.
func classify(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket

	switch {
	case errors.As(err, &noSuchBucket):
		return provider.ErrBucketNotFound
	case errors.As(err, &notFound), errors.As(err, &noSuchKey):
		return provider.ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return provider.ErrNotFound
		case "NoSuchBucket":
			return provider.ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			return provider.ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return provider.ErrInvalidCredentials
		case "SlowDown", "Throttling", "RequestLimitExceeded":
			return provider.ErrThrottled
		case "ServiceUnavailable", "InternalError":
			return provider.ErrProviderUnavailable
		}
		return nil
	}

	// Credential chain failures surface before any HTTP request is made.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "failed to retrieve credentials"),
		strings.Contains(msg, "no EC2 IMDS role found"):
		return provider.ErrInvalidCredentials
	}
	return nil
}

// classifiedError pairs a sentinel with the SDK error that produced it.
type classifiedError struct {
	sentinel error
	cause    error
}

func (e *classifiedError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

// Unwrap exposes both the sentinel and the SDK error to errors.Is/As.
func (e *classifiedError) Unwrap() []error {
	return []error{e.sentinel, e.cause}
}

// resolveRegion applies the us-east-1 fallback after SDK loading.
//
// sdkRegion already reflects an explicit Config.Region, AWS_REGION /
// AWS_DEFAULT_REGION, or the shared profile. Only when all of those are
// empty and no custom endpoint is set does the fallback apply.
func resolveRegion(endpoint, sdkRegion string) string {
	if sdkRegion != "" {
		return sdkRegion
	}
	if endpoint == "" {
		return DefaultAWSRegion
	}
	return ""
}
