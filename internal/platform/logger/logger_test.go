package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"

	kit "shipscan/internal/platform/testkit"
)

func TestLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":  zerolog.TraceLevel,
		" INFO ": zerolog.InfoLevel,
		"warn":   zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.DebugLevel,
		"chatty": zerolog.DebugLevel,
		"loud":   zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := level(in); got != want {
			t.Fatalf("level(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestChildren(t *testing.T) {
	kit.Serial(t)
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Service: "shipscan-api", Writer: &buf})
	t.Cleanup(func() { root.Store(nil) })

	Named("journal").Info().Msg("flushed")
	ctx := WithRequest(context.Background(), "req-1", "sess-1")
	C(ctx).Info().Msg("packet")
	C(WithSession(context.Background(), "sess-2")).Warn().Msg("blocked")
	C(context.Background()).Debug().Msg("hidden")

	out := buf.String()
	kit.MustContain(t, out, `"service":"shipscan-api"`)
	kit.MustContain(t, out, `"component":"journal"`)
	kit.MustContain(t, out, `"request_id":"req-1","session_id":"sess-1"`)
	kit.MustContain(t, out, `"session_id":"sess-2"`)
	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Fatal("debug line written at info level")
	}
}

func TestWithRequest_SkipsEmpty(t *testing.T) {
	ctx := WithRequest(context.Background(), "", "")
	if ctx != context.Background() {
		t.Fatal("empty ids should not wrap the context")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_SERVICE", "shipscan-console")
	t.Setenv("LOG_CALLER", "true")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "shipscan-console" || !opt.Caller {
		t.Fatalf("opt = %+v", opt)
	}
}
