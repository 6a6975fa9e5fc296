package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at LogInfo", LogInfo, func(l *log.Logger) { l.Info("planned") }, true},
		{"debug at LogInfo", LogInfo, func(l *log.Logger) { l.Debug("planned") }, false},
		{"debug at LogDebug", LogDebug, func(l *log.Logger) { l.Debug("planned") }, true},
		{"warn at LogInfo", LogInfo, func(l *log.Logger) { l.Warn("engine failed") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")

	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output after SetLogLevel:\n%s", out)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))

	time.Sleep(10 * time.Millisecond)
	prog.done("Laid out 2 document(s)")

	out := buf.String()
	if !strings.Contains(out, "Laid out 2 document(s)") {
		t.Errorf("progress output lacks message:\n%s", out)
	}
	if !strings.Contains(out, "document(s) (") {
		t.Errorf("progress output lacks elapsed time:\n%s", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestRunLayoutLogsThroughContext(t *testing.T) {
	dir := t.TempDir()
	good := writeDocument(t, dir, "good.yaml")
	missing := filepath.Join(dir, "missing.yaml")

	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, LogDebug))

	err := newTestCLI(t).runLayout(ctx, []string{good, missing}, layoutFlags{timeout: 5, jobs: 1})
	if err == nil {
		t.Fatal("runLayout() error = nil, want a failed document")
	}

	out := buf.String()
	for _, want := range []string{
		"Laid out 1 of 2 document(s)",
		"layout failed",
		"missing.yaml",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("context logger output lacks %q:\n%s", want, out)
		}
	}
}
