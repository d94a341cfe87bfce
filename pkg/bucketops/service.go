// Package bucketops implements the bwing operations against one bucket
// prefix: list, upload, regex-list and regex-delete.
//
// Every operation makes exactly the backend calls it needs, on the
// calling goroutine, and reports outcomes through a Reporter. Errors from
// listing and deleting are returned to the caller. Upload failures are
// reported and swallowed.
package bucketops

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/3leaps/bwing/pkg/provider"
)

// Config scopes a Service to one bucket and key prefix.
type Config struct {
	// Bucket is the bucket name, used in messages.
	Bucket string

	// Prefix is prepended to every key this service lists or writes.
	Prefix string
}

// ErrInvalidConfig is returned by New for an unusable Config.
var ErrInvalidConfig = errors.New("invalid bucketops config")

// Service runs operations against a provider.ObjectStore.
type Service struct {
	store    provider.ObjectStore
	cfg      Config
	reporter Reporter
	limiter  *rate.Limiter
	log      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithReporter sets where outcomes are reported. Default: discard.
func WithReporter(r Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithDeleteRate caps delete calls per second. Zero or negative means unlimited.
func WithDeleteRate(perSecond float64) Option {
	return func(s *Service) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the diagnostic logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Service bound to store and cfg.
func New(store provider.ObjectStore, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("store is nil"))
	}
	if cfg.Bucket == "" {
		return nil, errors.Join(ErrInvalidConfig, errors.New("bucket is required"))
	}
	if cfg.Prefix == "" {
		return nil, errors.Join(ErrInvalidConfig, errors.New("prefix is required"))
	}

	s := &Service{
		store:    store,
		cfg:      cfg,
		reporter: discardReporter{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the service's bucket and prefix.
func (s *Service) Config() Config {
	return s.cfg
}

// Key returns the full object key for suffix.
//
// This is plain concatenation: "sub/dir/file.txt" becomes
// "b-wing/sub/dir/file.txt", and no cleaning is applied to suffix.
func (s *Service) Key(suffix string) string {
	return s.cfg.Prefix + suffix
}

// ListKeys returns the keys under the prefix from a single list call.
func (s *Service) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.store.ListObjects(ctx, s.cfg.Prefix)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Listed keys",
		zap.String("bucket", s.cfg.Bucket),
		zap.String("prefix", s.cfg.Prefix),
		zap.Int("count", len(keys)))
	return keys, nil
}

// Summary describes what one operation did.
type Summary struct {
	Command string
	Pattern string
	Listed  int
	Matched int
	Deleted int

	// Empty is true when the listing returned no keys.
	Empty bool
}

// List reports every key under the prefix.
func (s *Service) List(ctx context.Context) (Summary, error) {
	sum := Summary{Command: "list"}

	keys, err := s.ListKeys(ctx)
	if err != nil {
		return sum, err
	}
	sum.Listed = len(keys)
	sum.Matched = len(keys)

	if len(keys) == 0 {
		sum.Empty = true
		if err := s.reporter.Empty(ctx); err != nil {
			return sum, err
		}
		return sum, s.reporter.Done(ctx, sum)
	}

	if err := s.reporter.Listed(ctx, keys); err != nil {
		return sum, err
	}
	return sum, s.reporter.Done(ctx, sum)
}
