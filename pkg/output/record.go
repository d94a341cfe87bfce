// Package output provides JSONL output for bwing commands.
//
// Output is structured as typed record envelopes. Each line is a
// self-contained JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: bwing.<type>.v<version>
const (
	// TypeObject identifies a listed or matched key.
	TypeObject = "bwing.object.v1"

	// TypeUpload identifies an upload outcome.
	TypeUpload = "bwing.upload.v1"

	// TypeDelete identifies a delete outcome.
	TypeDelete = "bwing.delete.v1"

	// TypeError identifies error records.
	TypeError = "bwing.error.v1"

	// TypeSummary identifies the final record of a command.
	TypeSummary = "bwing.summary.v1"
)

// Record is the envelope for all JSONL output.
type Record struct {
	// Type identifies the record type (e.g., "bwing.object.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// RunID correlates all records from one invocation.
	RunID string `json:"run_id"`

	// Bucket is the bucket the command ran against.
	Bucket string `json:"bucket"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// ObjectRecord is the payload for a key returned by list or regex-list.
type ObjectRecord struct {
	Key string `json:"key"`

	// Pattern is the regex the key matched; empty for plain listings.
	Pattern string `json:"pattern,omitempty"`
}

// UploadRecord is the payload for an upload outcome.
type UploadRecord struct {
	LocalFile   string `json:"local_file"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

// DeleteRecord is the payload for one deleted (or would-be deleted) key.
type DeleteRecord struct {
	Key    string `json:"key"`
	DryRun bool   `json:"dry_run,omitempty"`
}

// ErrorRecord is the payload for a failure reported without aborting.
type ErrorRecord struct {
	// Op is the operation that failed (e.g., "upload").
	Op string `json:"op"`

	// Key is the object key involved, if any.
	Key string `json:"key,omitempty"`

	// Message is the human-readable error.
	Message string `json:"message"`
}

// SummaryRecord closes a command's output.
type SummaryRecord struct {
	Command string `json:"command"`
	Pattern string `json:"pattern,omitempty"`
	Listed  int    `json:"listed"`
	Matched int    `json:"matched"`
	Deleted int    `json:"deleted,omitempty"`

	// Empty is true when the listing returned no keys at all.
	Empty bool `json:"empty,omitempty"`
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("writer is closed")

// WriteError wraps a failure while producing a record.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
