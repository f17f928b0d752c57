package logger

import (
	"bytes"
	"encoding/json"
	stdlog "log"
	"os"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(b, &entry); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, b)
	}
	return entry
}

func TestNew_AttachesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Service: "storefront", Env: "test", Version: "1.2.0", Output: &buf})
	log.Info().Msg("hello")

	entry := decode(t, buf.Bytes())
	if entry["service"] != "storefront" || entry["env"] != "test" || entry["version"] != "1.2.0" || entry["message"] != "hello" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNew_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})
	log.Info().Msg("bare")

	entry := decode(t, buf.Bytes())
	if _, ok := entry["service"]; ok {
		t.Fatalf("empty service attached: %v", entry)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf})
	log.Info().Msg("dropped")

	if buf.Len() != 0 {
		t.Fatalf("info entry written at warn level: %s", buf.String())
	}
}

func TestInit_RoutesGlobalLoggers(t *testing.T) {
	prev := zlog.Logger
	defer func() {
		zlog.Logger = prev
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
		stdlog.SetOutput(os.Stderr)
		stdlog.SetFlags(stdlog.LstdFlags)
	}()

	var buf bytes.Buffer
	Init(Options{Service: "storefront", Output: &buf})

	stdlog.Print("from stdlib")
	entry := decode(t, buf.Bytes())
	if entry["source"] != "stdlog" || entry["service"] != "storefront" {
		t.Fatalf("stdlib output not routed: %v", entry)
	}

	buf.Reset()
	zlog.Info().Msg("from package logger")
	if decode(t, buf.Bytes())["message"] != "from package logger" {
		t.Fatalf("package logger not replaced: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
