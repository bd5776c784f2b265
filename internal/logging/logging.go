// Package logging configures slog for objgen and carries per-run attributes
// through the context.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Handler adds the run group stored in the context to every record.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if rd, ok := ctx.Value(runDataKey{}).(*RunData); ok {
		r.AddAttrs(slog.Group("run",
			slog.String("id", rd.RunID),
			slog.String("type", rd.TypeName),
		))
	}
	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{h.Handler.WithGroup(name)}
}

type runDataKey struct{}

// RunData identifies one generation run.
type RunData struct {
	RunID    string
	TypeName string
}

// WithRun returns a context carrying a new run id for typeName.
func WithRun(ctx context.Context, typeName string) context.Context {
	return context.WithValue(ctx, runDataKey{}, &RunData{RunID: uuid.NewString(), TypeName: typeName})
}

// RunFrom returns the run data stored in ctx, if any.
func RunFrom(ctx context.Context) (*RunData, bool) {
	rd, ok := ctx.Value(runDataKey{}).(*RunData)
	return rd, ok
}

// New creates a logger writing to w. format is "json" or "text"; debug
// lowers the level from WARN to DEBUG.
func New(w io.Writer, format string, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(Handler{h})
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
