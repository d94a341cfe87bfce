package provider

import (
	"errors"
	"strings"
)

// Backend failures are classified into these sentinels. Providers wrap
// them, together with the raw backend error, in a *ProviderError.
var (
	ErrNotFound            = errors.New("object not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrBucketNotFound      = errors.New("bucket not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrThrottled           = errors.New("request throttled")
)

// sentinels is the order Classify checks in. A bucket miss is reported
// before an object miss.
var sentinels = []error{
	ErrBucketNotFound,
	ErrNotFound,
	ErrAccessDenied,
	ErrInvalidCredentials,
	ErrThrottled,
	ErrProviderUnavailable,
}

// ProviderError records which store call failed and on what.
//
// Error() renders "<provider> <op>: <bucket>/<key>: <err>", dropping the
// key or bucket parts when they are empty.
type ProviderError struct {
	Op       string // ObjectStore method, or "New" for construction
	Provider ProviderType
	Bucket   string
	Key      string
	Err      error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider.String())
	b.WriteByte(' ')
	b.WriteString(e.Op)
	b.WriteString(": ")
	if e.Bucket != "" {
		b.WriteString(e.Bucket)
		if e.Key != "" {
			b.WriteByte('/')
			b.WriteString(e.Key)
		}
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Classify returns the sentinel err carries, or nil when it carries none.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s
		}
	}
	return nil
}

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsAccessDenied(err error) bool        { return errors.Is(err, ErrAccessDenied) }
func IsBucketNotFound(err error) bool      { return errors.Is(err, ErrBucketNotFound) }
func IsInvalidCredentials(err error) bool  { return errors.Is(err, ErrInvalidCredentials) }
func IsProviderUnavailable(err error) bool { return errors.Is(err, ErrProviderUnavailable) }
func IsThrottled(err error) bool           { return errors.Is(err, ErrThrottled) }

// IsRetryable reports whether err is a transient backend condition.
// Nothing in bwing retries automatically.
func IsRetryable(err error) bool {
	return IsThrottled(err) || IsProviderUnavailable(err)
}
