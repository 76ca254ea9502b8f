// Package instlog persists the per-instance execution log: one JSON record
// per line, rotated by size. The replay scoring path reads this exact
// format back.
package instlog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"simulscore/internal/instance"
)

// recordHandler is a custom slog handler that writes the value of the
// "record" attribute as one bare JSON object per line — no timestamp, no
// level, nothing besides the record itself, so the file stays directly
// consumable by the replay path.
type recordHandler struct {
	out io.Writer // target writer for JSON record output
}

// NewRecordHandler creates a handler writing instance records to out.
func NewRecordHandler(out io.Writer) *recordHandler {
	return &recordHandler{out: out}
}

// Handle implements the slog.Handler interface: serializes the record
// attribute to JSON and writes it as a separate line (JSONL format).
func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	var payload any
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "record" {
			payload = a.Value.Any()
			return false
		}
		return true
	})

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = h.out.Write(append(data, '\n'))
	return err
}

// WithAttrs is not supported
func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	panic("WithAttrs is not supported by recordHandler")
}

// WithGroup is not supported
func (h *recordHandler) WithGroup(name string) slog.Handler {
	panic("WithGroup is not supported by recordHandler")
}

// Enabled determines whether the handler should process a record of the given level.
// Always returns true — all levels are allowed.
func (h *recordHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Writer appends finished instances to a rotating execution log.
// Thread-safe thanks to lumberjack and slog; suitable for long evaluation
// runs that outgrow a single file.
type Writer struct {
	lumberjack *lumberjack.Logger // rotating file logger
	logger     *slog.Logger       // structured logger with record-only output
}

// NewWriter creates an execution-log writer.
// Parameters:
// - file: path of the log file
// - maxSize: maximum file size in MB before rotation
// - maxBackups: maximum number of rotated files to keep
func NewWriter(file string, maxSize, maxBackups int) *Writer {
	w := Writer{}
	w.lumberjack = &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	}

	w.logger = slog.New(NewRecordHandler(w.lumberjack))
	return &w
}

// Append writes one instance record as a single log line.
func (w *Writer) Append(rec instance.Record) {
	w.logger.Info("", "record", rec)
}

// Close closes the underlying file. Should be called when shutting down
// to ensure write completion and rotation of the last file.
func (w *Writer) Close() {
	w.lumberjack.Close()
}
