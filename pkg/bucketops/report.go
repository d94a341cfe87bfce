package bucketops

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/3leaps/bwing/pkg/output"
)

// Messages printed by TextReporter.
const (
	MsgEmpty     = "No files found or bucket is empty"
	MsgNoMatches = "No files match the regex"
)

// Reporter receives operation outcomes.
type Reporter interface {
	// Empty is called when the listing returned no keys.
	Empty(ctx context.Context) error
	// Listed is called with every key from a plain list.
	Listed(ctx context.Context, keys []string) error
	// NoMatches is called when keys exist but none match pattern.
	NoMatches(ctx context.Context, pattern string) error
	// Matched is called with the keys pattern matched.
	Matched(ctx context.Context, pattern string, keys []string) error
	// Deleted is called after each delete, or per key in a dry run.
	Deleted(ctx context.Context, key string, dryRun bool) error
	// Uploaded is called after a successful upload.
	Uploaded(ctx context.Context, res UploadResult) error
	// UploadFailed is called when an upload could not complete.
	UploadFailed(ctx context.Context, res UploadResult, err error) error
	// Done is called once when an operation finishes without error.
	Done(ctx context.Context, sum Summary) error
}

// TextReporter writes plain lines for humans.
type TextReporter struct {
	w      io.Writer
	bucket string
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer, bucket string) *TextReporter {
	return &TextReporter{w: w, bucket: bucket}
}

func (r *TextReporter) Empty(ctx context.Context) error {
	return r.println(MsgEmpty)
}

func (r *TextReporter) Listed(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := r.println(k); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextReporter) NoMatches(ctx context.Context, pattern string) error {
	return r.println(MsgNoMatches)
}

func (r *TextReporter) Matched(ctx context.Context, pattern string, keys []string) error {
	return r.println("Matching files: " + FormatKeyList(keys))
}

func (r *TextReporter) Deleted(ctx context.Context, key string, dryRun bool) error {
	if dryRun {
		return r.println(fmt.Sprintf("Would delete %s from %s", key, r.bucket))
	}
	return r.println(fmt.Sprintf("Deleted %s from %s", key, r.bucket))
}

func (r *TextReporter) Uploaded(ctx context.Context, res UploadResult) error {
	return r.println(fmt.Sprintf("Uploaded %s to s3", res.LocalFile))
}

func (r *TextReporter) UploadFailed(ctx context.Context, res UploadResult, err error) error {
	return r.println("Failed to upload: " + err.Error())
}

func (r *TextReporter) Done(ctx context.Context, sum Summary) error {
	return nil
}

func (r *TextReporter) println(line string) error {
	_, err := fmt.Fprintln(r.w, line)
	return err
}

// FormatKeyList renders keys as a bracketed, quoted list:
// ['b-wing/a.txt', 'b-wing/b.log'].
//
// Keys are single-quoted unless they contain a single quote and no double
// quote, in which case double quotes are used. Backslashes, the chosen
// quote, and control whitespace are escaped.
func FormatKeyList(keys []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteKey(k))
	}
	b.WriteByte(']')
	return b.String()
}

var (
	singleQuoted = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	doubleQuoted = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
)

func quoteKey(k string) string {
	if strings.Contains(k, "'") && !strings.Contains(k, `"`) {
		return `"` + doubleQuoted.Replace(k) + `"`
	}
	return "'" + singleQuoted.Replace(k) + "'"
}

// JSONReporter emits JSONL records through an output.Writer.
type JSONReporter struct {
	w output.Writer
}

// NewJSONReporter creates a JSONReporter.
func NewJSONReporter(w output.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

func (r *JSONReporter) Empty(ctx context.Context) error {
	return nil
}

func (r *JSONReporter) Listed(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := r.w.WriteObject(ctx, &output.ObjectRecord{Key: k}); err != nil {
			return err
		}
	}
	return nil
}

func (r *JSONReporter) NoMatches(ctx context.Context, pattern string) error {
	return nil
}

func (r *JSONReporter) Matched(ctx context.Context, pattern string, keys []string) error {
	for _, k := range keys {
		if err := r.w.WriteObject(ctx, &output.ObjectRecord{Key: k, Pattern: pattern}); err != nil {
			return err
		}
	}
	return nil
}

func (r *JSONReporter) Deleted(ctx context.Context, key string, dryRun bool) error {
	return r.w.WriteDelete(ctx, &output.DeleteRecord{Key: key, DryRun: dryRun})
}

func (r *JSONReporter) Uploaded(ctx context.Context, res UploadResult) error {
	return r.w.WriteUpload(ctx, &output.UploadRecord{
		LocalFile:   res.LocalFile,
		Key:         res.Key,
		Size:        res.Size,
		ContentType: res.ContentType,
	})
}

func (r *JSONReporter) UploadFailed(ctx context.Context, res UploadResult, err error) error {
	// Reporting must survive a cancelled upload.
	return r.w.WriteError(context.WithoutCancel(ctx), &output.ErrorRecord{
		Op:      "upload",
		Key:     res.Key,
		Message: err.Error(),
	})
}

func (r *JSONReporter) Done(ctx context.Context, sum Summary) error {
	return r.w.WriteSummary(ctx, &output.SummaryRecord{
		Command: sum.Command,
		Pattern: sum.Pattern,
		Listed:  sum.Listed,
		Matched: sum.Matched,
		Deleted: sum.Deleted,
		Empty:   sum.Empty,
	})
}

type discardReporter struct{}

func (discardReporter) Empty(context.Context) error                             { return nil }
func (discardReporter) Listed(context.Context, []string) error                  { return nil }
func (discardReporter) NoMatches(context.Context, string) error                 { return nil }
func (discardReporter) Matched(context.Context, string, []string) error         { return nil }
func (discardReporter) Deleted(context.Context, string, bool) error             { return nil }
func (discardReporter) Uploaded(context.Context, UploadResult) error            { return nil }
func (discardReporter) UploadFailed(context.Context, UploadResult, error) error { return nil }
func (discardReporter) Done(context.Context, Summary) error                     { return nil }

var (
	_ Reporter = (*TextReporter)(nil)
	_ Reporter = (*JSONReporter)(nil)
	_ Reporter = discardReporter{}
)
