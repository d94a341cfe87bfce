// Package preflight verifies the permissions bwing commands need before
// any real work runs.
package preflight

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/3leaps/bwing/pkg/provider"
)

// Mode defines how aggressive preflight checks are.
type Mode string

const (
	ModePlanOnly   Mode = "plan-only"
	ModeReadSafe   Mode = "read-safe"
	ModeWriteProbe Mode = "write-probe"
)

// Capability names are stable strings used in reports.
const (
	CapList   = "prefix.list"
	CapWrite  = "prefix.write"
	CapDelete = "prefix.delete"
)

// Stable error codes for failed checks.
const (
	ErrCodeAccessDenied = "ACCESS_DENIED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeThrottled    = "THROTTLED"
	ErrCodeCredentials  = "INVALID_CREDENTIALS"
	ErrCodeInternal     = "INTERNAL"
)

// probeDir holds write-probe objects under the checked prefix.
const probeDir = "_bwing/preflight-"

// Spec controls how preflight checks are executed.
type Spec struct {
	Mode   Mode
	Prefix string
}

// Result is the outcome of one capability check.
type Result struct {
	Capability string
	Allowed    bool
	Method     string
	ErrorCode  string
	Detail     string
}

// Report collects check results in the order they ran.
type Report struct {
	Mode    Mode
	Prefix  string
	Results []Result
}

// OK reports whether every check that ran was allowed.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if !res.Allowed {
			return false
		}
	}
	return true
}

// Run executes the checks spec asks for against store.
//
// Checks are fail-fast: list, then (write-probe only) put and delete of a
// one-byte object under Prefix. The first denied check's error is returned.
func Run(ctx context.Context, store provider.ObjectStore, spec Spec) (*Report, error) {
	rep := &Report{Mode: spec.Mode, Prefix: spec.Prefix, Results: []Result{}}
	if spec.Mode == ModePlanOnly {
		return rep, nil
	}

	listMethod := fmt.Sprintf("ListObjects(prefix=%q)", spec.Prefix)
	if _, err := store.ListObjects(ctx, spec.Prefix); err != nil {
		rep.Results = append(rep.Results, denied(CapList, listMethod, err))
		return rep, err
	}
	rep.Results = append(rep.Results, Result{Capability: CapList, Allowed: true, Method: listMethod})

	if spec.Mode != ModeWriteProbe {
		return rep, nil
	}

	probeKey := spec.Prefix + probeDir + uuid.NewString()
	err := store.PutObject(ctx, probeKey, bytes.NewReader([]byte{0}), provider.PutOptions{
		ContentLength: 1,
		ContentType:   "application/octet-stream",
	})
	if err != nil {
		rep.Results = append(rep.Results, denied(CapWrite, "PutObject(probe)", err))
		return rep, err
	}
	rep.Results = append(rep.Results, Result{Capability: CapWrite, Allowed: true, Method: "PutObject(probe)"})

	if err := store.DeleteObject(ctx, probeKey); err != nil {
		r := denied(CapDelete, "DeleteObject(probe)", err)
		r.Detail = fmt.Sprintf("%s (probe object %s left behind)", r.Detail, probeKey)
		rep.Results = append(rep.Results, r)
		return rep, err
	}
	rep.Results = append(rep.Results, Result{Capability: CapDelete, Allowed: true, Method: "DeleteObject(probe)"})

	return rep, nil
}

func denied(capability, method string, err error) Result {
	return Result{
		Capability: capability,
		Allowed:    false,
		Method:     method,
		ErrorCode:  normalizeErrorCode(err),
		Detail:     err.Error(),
	}
}

func normalizeErrorCode(err error) string {
	switch provider.Classify(err) {
	case provider.ErrAccessDenied:
		return ErrCodeAccessDenied
	case provider.ErrBucketNotFound, provider.ErrNotFound:
		return ErrCodeNotFound
	case provider.ErrThrottled:
		return ErrCodeThrottled
	case provider.ErrInvalidCredentials:
		return ErrCodeCredentials
	default:
		return ErrCodeInternal
	}
}
