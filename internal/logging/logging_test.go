package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	f()

	defaultLogger = oldLogger
	return buf.String()
}

// captureLogOutputWithInit exercises InitLogger itself, including the
// timestamp ReplaceAttr hook.
func captureLogOutputWithInit(t *testing.T, level Level, format Format, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	InitLogger(level, format)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		InitLogger(LevelWarn, FormatText)
	})
	f()
	return buf.String()
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		format    Format
		logFunc   func()
		wantEmpty bool
		wantText  string
	}{
		{"debug json", LevelDebug, FormatJSON, func() { Debug("dbg") }, false, `"msg":"dbg"`},
		{"info text", LevelInfo, FormatText, func() { Info("hello") }, false, "msg=hello"},
		{"warn filters info", LevelWarn, FormatJSON, func() { Info("hidden") }, true, ""},
		{"error passes error", LevelError, FormatText, func() { Error("bad") }, false, "msg=bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureLogOutputWithInit(t, tt.level, tt.format, tt.logFunc)
			if tt.wantEmpty {
				if out != "" {
					t.Errorf("expected no output, got %q", out)
				}
				return
			}
			if !strings.Contains(out, tt.wantText) {
				t.Errorf("output %q does not contain %q", out, tt.wantText)
			}
		})
	}
}

func TestReplaceAttrTimestamp(t *testing.T) {
	out := captureLogOutputWithInit(t, LevelInfo, FormatJSON, func() { Info("stamp") })
	// RFC3339 timestamps carry a 'T' separator and no fractional seconds.
	if !strings.Contains(out, `"time":"`) || strings.Contains(out, ".000") {
		t.Errorf("unexpected timestamp format in %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestOperationContext(t *testing.T) {
	ctx := WithOperation(context.Background(), "compile")
	if got := GetOperation(ctx); got != "compile" {
		t.Errorf("GetOperation() = %q, want compile", got)
	}
	if got := GetOperation(context.Background()); got != "" {
		t.Errorf("GetOperation(empty) = %q, want empty", got)
	}

	out := captureLogOutput(func() {
		InfoContext(ctx, "with op")
		InfoContext(context.Background(), "without op")
	})
	if !strings.Contains(out, `"operation":"compile"`) {
		t.Errorf("expected operation attribute in %q", out)
	}
}

func TestLoggingFunctions(t *testing.T) {
	out := captureLogOutput(func() {
		Debug("d", "k", 1)
		Info("i")
		Warn("w")
		Error("e")
	})
	for _, want := range []string{`"msg":"d"`, `"k":1`, `"msg":"i"`, `"msg":"w"`, `"msg":"e"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %q", want, out)
		}
	}
}

func TestRegionCompiled(t *testing.T) {
	out := captureLogOutput(func() {
		RegionCompiled("44", 2, 5, "main", "GB")
	})
	for _, want := range []string{`"msg":"region_compiled"`, `"country_code":"44"`, `"territories":2`, `"formats":5`, `"main":"GB"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %q", want, out)
		}
	}
}

func TestDatabaseLoaded(t *testing.T) {
	out := captureLogOutput(func() {
		DatabaseLoaded("db.json", 3, "abc123")
		DatabaseLoaded("records", 1, "")
	})
	if !strings.Contains(out, `"blake3":"abc123"`) {
		t.Errorf("expected fingerprint attribute in %q", out)
	}
	if strings.Count(out, "blake3") != 1 {
		t.Errorf("empty fingerprint should be omitted: %q", out)
	}
}

func TestDatabaseError(t *testing.T) {
	out := captureLogOutput(func() {
		DatabaseError("db.json", errors.New("boom"))
	})
	if !strings.Contains(out, `"error":"boom"`) || !strings.Contains(out, `"level":"ERROR"`) {
		t.Errorf("unexpected output %q", out)
	}
}
