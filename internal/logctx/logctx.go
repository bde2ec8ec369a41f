// Package logctx carries per-lookup logging data on a context and renders it
// into every record logged with that context.
package logctx

import (
	"context"
	"log/slog"
)

// Handler adds the lookup and source data found on the record's context.
type Handler struct {
	slog.Handler
}

// Wrap returns l with its handler wrapped in Handler, unless it already is.
func Wrap(l *slog.Logger) *slog.Logger {
	if _, ok := l.Handler().(Handler); ok {
		return l
	}
	return slog.New(Handler{Handler: l.Handler()})
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if ld, ok := ctx.Value(lookupDataKey{}).(*LookupData); ok {
		r.AddAttrs(slog.Group("lookup",
			slog.String("id", ld.ID),
			slog.String("kind", ld.Kind),
		))
	}

	if sd, ok := ctx.Value(sourceDataKey{}).(*SourceData); ok {
		attrs := []any{slog.String("origin", sd.Origin)}
		if sd.Tier > 0 {
			attrs = append(attrs, slog.Int("tier", sd.Tier))
		}
		r.AddAttrs(slog.Group("source", attrs...))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type lookupDataKey struct{}

// LookupData identifies one credential search.
type LookupData struct {
	ID   string
	Kind string
}

func WithLookupData(ctx context.Context, data *LookupData) context.Context {
	return context.WithValue(ctx, lookupDataKey{}, data)
}

type sourceDataKey struct{}

// SourceData names the credential source being examined.
type SourceData struct {
	Origin string
	Tier   int
}

func WithSourceData(ctx context.Context, data *SourceData) context.Context {
	return context.WithValue(ctx, sourceDataKey{}, data)
}
