package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandler(t *testing.T) {
	var buf bytes.Buffer
	log := Wrap(slog.New(slog.NewTextHandler(&buf, nil)))

	ctx := WithLookupData(context.Background(), &LookupData{ID: "abc", Kind: "scitoken"})
	ctx = WithSourceData(ctx, &SourceData{Origin: "SCITOKEN"})
	log.With("k", "v").InfoContext(ctx, "hello")

	out := buf.String()
	for _, want := range []string{"k=v", "lookup.id=abc", "lookup.kind=scitoken", "source.origin=SCITOKEN"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "source.tier") {
		t.Fatalf("zero tier should be omitted: %q", out)
	}

	buf.Reset()
	log.Info("plain")
	if strings.Contains(buf.String(), "lookup") {
		t.Fatalf("unexpected lookup data: %q", buf.String())
	}
}

func TestWrapIdempotent(t *testing.T) {
	log := Wrap(slog.Default())
	if Wrap(log) != log {
		t.Fatalf("Wrap should not double wrap")
	}
}
