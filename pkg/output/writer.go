package output

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records.
//
// Each Write* method emits a complete record as a single line of JSON
// followed by a newline.
type Writer interface {
	WriteObject(ctx context.Context, obj *ObjectRecord) error
	WriteUpload(ctx context.Context, up *UploadRecord) error
	WriteDelete(ctx context.Context, del *DeleteRecord) error
	WriteError(ctx context.Context, err *ErrorRecord) error
	WriteSummary(ctx context.Context, sum *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// Writes are serialized with a mutex so lines never interleave.
type JSONLWriter struct {
	w      io.Writer
	runID  string
	bucket string
	mu     sync.Mutex
	closed bool

	// now is swapped in tests for stable timestamps.
	now func() time.Time
}

// NewJSONLWriter creates a new JSONL writer.
//
// Parameters:
//   - w: The underlying writer (usually the command's stdout)
//   - runID: Correlation ID for this invocation
//   - bucket: Bucket name stamped on every record
func NewJSONLWriter(w io.Writer, runID, bucket string) *JSONLWriter {
	return &JSONLWriter{
		w:      w,
		runID:  runID,
		bucket: bucket,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WriteObject emits an object record.
func (jw *JSONLWriter) WriteObject(ctx context.Context, obj *ObjectRecord) error {
	return jw.writeRecord(ctx, TypeObject, obj)
}

// WriteUpload emits an upload record.
func (jw *JSONLWriter) WriteUpload(ctx context.Context, up *UploadRecord) error {
	return jw.writeRecord(ctx, TypeUpload, up)
}

// WriteDelete emits a delete record.
func (jw *JSONLWriter) WriteDelete(ctx context.Context, del *DeleteRecord) error {
	return jw.writeRecord(ctx, TypeDelete, del)
}

// WriteError emits an error record.
func (jw *JSONLWriter) WriteError(ctx context.Context, err *ErrorRecord) error {
	return jw.writeRecord(ctx, TypeError, err)
}

// WriteSummary emits a summary record.
func (jw *JSONLWriter) WriteSummary(ctx context.Context, sum *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, sum)
}

// Close marks the writer as closed.
//
// The underlying writer is NOT closed; that stays with the caller.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}

	record := Record{
		Type:   recordType,
		TS:     jw.now(),
		RunID:  jw.runID,
		Bucket: jw.bucket,
		Data:   dataBytes,
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}

	// io.Writer may return n < len(p) with a nil error; a truncated
	// line would corrupt the stream.
	recordBytes = append(recordBytes, '\n')
	if err := writeAll(jw.w, recordBytes); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

// writeAll writes all bytes to w, handling short writes.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

var _ Writer = (*JSONLWriter)(nil)
