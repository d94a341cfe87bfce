package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTS = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestWriter(w io.Writer) *JSONLWriter {
	jw := NewJSONLWriter(w, "run-123", "developer-task")
	jw.now = func() time.Time { return fixedTS }
	return jw
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []Record {
	t.Helper()
	var records []Record
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var r Record
		require.NoError(t, json.Unmarshal([]byte(line), &r), "line: %s", line)
		records = append(records, r)
	}
	return records
}

func TestNewJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123", "developer-task")

	assert.NotNil(t, w)
	assert.Equal(t, "run-123", w.runID)
	assert.Equal(t, "developer-task", w.bucket)
}

func TestJSONLWriter_RecordTypes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		write    func(w *JSONLWriter) error
		wantType string
		wantData string
	}{
		{
			name: "object",
			write: func(w *JSONLWriter) error {
				return w.WriteObject(ctx, &ObjectRecord{Key: "b-wing/b.log", Pattern: `\.log$`})
			},
			wantType: TypeObject,
			wantData: `{"key":"b-wing/b.log","pattern":"\\.log$"}`,
		},
		{
			name: "object without pattern",
			write: func(w *JSONLWriter) error {
				return w.WriteObject(ctx, &ObjectRecord{Key: "b-wing/a.txt"})
			},
			wantType: TypeObject,
			wantData: `{"key":"b-wing/a.txt"}`,
		},
		{
			name: "upload",
			write: func(w *JSONLWriter) error {
				return w.WriteUpload(ctx, &UploadRecord{LocalFile: "a.txt", Key: "b-wing/a.txt", Size: 3, ContentType: "text/plain"})
			},
			wantType: TypeUpload,
			wantData: `{"local_file":"a.txt","key":"b-wing/a.txt","size":3,"content_type":"text/plain"}`,
		},
		{
			name: "delete dry run",
			write: func(w *JSONLWriter) error {
				return w.WriteDelete(ctx, &DeleteRecord{Key: "b-wing/a.txt", DryRun: true})
			},
			wantType: TypeDelete,
			wantData: `{"key":"b-wing/a.txt","dry_run":true}`,
		},
		{
			name: "error",
			write: func(w *JSONLWriter) error {
				return w.WriteError(ctx, &ErrorRecord{Op: "upload", Message: "no such file"})
			},
			wantType: TypeError,
			wantData: `{"op":"upload","message":"no such file"}`,
		},
		{
			name: "summary",
			write: func(w *JSONLWriter) error {
				return w.WriteSummary(ctx, &SummaryRecord{Command: "regex-delete", Pattern: "^b", Listed: 3, Matched: 1, Deleted: 1})
			},
			wantType: TypeSummary,
			wantData: `{"command":"regex-delete","pattern":"^b","listed":3,"matched":1,"deleted":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := newTestWriter(&buf)

			require.NoError(t, tt.write(w))

			records := decodeLines(t, &buf)
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantType, records[0].Type)
			assert.Equal(t, "run-123", records[0].RunID)
			assert.Equal(t, "developer-task", records[0].Bucket)
			assert.True(t, fixedTS.Equal(records[0].TS))
			assert.JSONEq(t, tt.wantData, string(records[0].Data))
		})
	}
}

func TestJSONLWriter_NewlineTerminated(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriter(&buf)

	require.NoError(t, w.WriteObject(context.Background(), &ObjectRecord{Key: "b-wing/1"}))
	require.NoError(t, w.WriteObject(context.Background(), &ObjectRecord{Key: "b-wing/2"}))

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Len(t, decodeLines(t, &buf), 2)
}

func TestJSONLWriter_Close(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriter(&buf)

	require.NoError(t, w.Close())

	err := w.WriteObject(context.Background(), &ObjectRecord{Key: "b-wing/a.txt"})
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestJSONLWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriter(&buf)

	const numWriters = 10
	const writesPerWriter = 50

	var wg sync.WaitGroup
	wg.Add(numWriters)
	for i := 0; i < numWriters; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < writesPerWriter; j++ {
				_ = w.WriteDelete(context.Background(), &DeleteRecord{Key: "b-wing/x"})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, decodeLines(t, &buf), numWriters*writesPerWriter)
}

func TestJSONLWriter_ContextCancellation(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriter(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteObject(ctx, &ObjectRecord{Key: "b-wing/a.txt"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}

func TestJSONLWriter_WriteFailure(t *testing.T) {
	w := newTestWriter(&failingWriter{err: errors.New("disk full")})

	err := w.WriteObject(context.Background(), &ObjectRecord{Key: "b-wing/a.txt"})
	require.Error(t, err)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "write", writeErr.Op)
}

func TestJSONLWriter_ShortWrite(t *testing.T) {
	sw := &shortWriteWriter{bytesPerWrite: 7}
	w := newTestWriter(sw)

	require.NoError(t, w.WriteObject(context.Background(), &ObjectRecord{Key: "b-wing/report-2024.csv"}))

	records := decodeLines(t, &sw.buf)
	require.Len(t, records, 1)
	assert.Equal(t, TypeObject, records[0].Type)
}

func TestJSONLWriter_ZeroWrite(t *testing.T) {
	w := newTestWriter(zeroWriteWriter{})

	err := w.WriteObject(context.Background(), &ObjectRecord{Key: "b-wing/a.txt"})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestWriteError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &WriteError{Op: "marshal", Err: underlying}

	assert.Equal(t, "output: marshal: underlying error", err.Error())
	assert.ErrorIs(t, err, underlying)
}

type failingWriter struct {
	err error
}

func (f *failingWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

// shortWriteWriter writes at most bytesPerWrite bytes per call with a nil error.
type shortWriteWriter struct {
	buf           bytes.Buffer
	bytesPerWrite int
}

func (sw *shortWriteWriter) Write(p []byte) (int, error) {
	if len(p) > sw.bytesPerWrite {
		p = p[:sw.bytesPerWrite]
	}
	return sw.buf.Write(p)
}

type zeroWriteWriter struct{}

func (zeroWriteWriter) Write(p []byte) (int, error) {
	return 0, nil
}
