package bucketops

import (
	"context"

	"go.uber.org/zap"

	"github.com/3leaps/bwing/pkg/match"
)

// matchKeys compiles expr, lists the prefix and filters the keys.
// The pattern is compiled before any backend call is made.
func (s *Service) matchKeys(ctx context.Context, sum *Summary, expr string) ([]string, error) {
	pattern, err := match.Compile(expr)
	if err != nil {
		return nil, err
	}

	keys, err := s.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	sum.Listed = len(keys)
	if len(keys) == 0 {
		sum.Empty = true
		return nil, nil
	}

	matched := pattern.Filter(keys)
	sum.Matched = len(matched)
	return matched, nil
}

// RegexList reports the keys under the prefix that expr matches anywhere.
func (s *Service) RegexList(ctx context.Context, expr string) (Summary, error) {
	sum := Summary{Command: "regex-list", Pattern: expr}

	matched, err := s.matchKeys(ctx, &sum, expr)
	if err != nil {
		return sum, err
	}

	switch {
	case sum.Empty:
		err = s.reporter.Empty(ctx)
	case len(matched) == 0:
		err = s.reporter.NoMatches(ctx, expr)
	default:
		err = s.reporter.Matched(ctx, expr, matched)
	}
	if err != nil {
		return sum, err
	}
	return sum, s.reporter.Done(ctx, sum)
}

// DeleteOptions configures RegexDelete.
type DeleteOptions struct {
	// DryRun reports what would be deleted without calling the backend.
	DryRun bool
}

// RegexDelete deletes every key under the prefix that expr matches.
//
// Keys are deleted one call at a time in listing order. The first failed
// delete stops the run and is returned; keys deleted before it stay deleted.
func (s *Service) RegexDelete(ctx context.Context, expr string, opts DeleteOptions) (Summary, error) {
	sum := Summary{Command: "regex-delete", Pattern: expr}

	matched, err := s.matchKeys(ctx, &sum, expr)
	if err != nil {
		return sum, err
	}

	if sum.Empty {
		if err := s.reporter.Empty(ctx); err != nil {
			return sum, err
		}
		return sum, s.reporter.Done(ctx, sum)
	}
	if len(matched) == 0 {
		if err := s.reporter.NoMatches(ctx, expr); err != nil {
			return sum, err
		}
		return sum, s.reporter.Done(ctx, sum)
	}

	for _, key := range matched {
		if !opts.DryRun {
			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					return sum, err
				}
			}
			if err := s.store.DeleteObject(ctx, key); err != nil {
				s.log.Debug("Delete failed",
					zap.String("key", key),
					zap.Int("deleted_before_failure", sum.Deleted),
					zap.Error(err))
				return sum, err
			}
			sum.Deleted++
		}
		if err := s.reporter.Deleted(ctx, key, opts.DryRun); err != nil {
			return sum, err
		}
	}
	return sum, s.reporter.Done(ctx, sum)
}
