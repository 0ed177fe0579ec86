// log/log_test.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNilLogger(t *testing.T) {
	// None of these should crash.
	var lg *Logger
	lg.Debug("debug")
	lg.Debugf("debug %d", 1)
	lg.Info("info")
	lg.Infof("info %d", 2)
	if lg.With("a", 1) != nil {
		t.Errorf("With on nil logger should return nil")
	}
}

func TestParseLevel(t *testing.T) {
	for s, expected := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		if l := ParseLevel(s); l != expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", s, l, expected)
		}
	}
}

func TestLogFile(t *testing.T) {
	dir := t.TempDir()
	lg := New(Options{Level: "debug", Dir: dir})
	lg.Infof("rendered %d panels", 3)
	lg.Debug("details", slog.String("moment", "DBZ"))

	b, err := os.ReadFile(filepath.Join(dir, "mdvplot.slog"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(b), "rendered 3 panels") {
		t.Errorf("log file missing message; contents:\n%s", b)
	}
	if !strings.Contains(string(b), "callstack") {
		t.Errorf("debug message missing callstack; contents:\n%s", b)
	}
}

func TestCallstack(t *testing.T) {
	fr := func() []StackFrame { return Callstack(nil) }()
	if len(fr) == 0 {
		t.Fatalf("empty callstack")
	}
	if fr[0].File != "log_test.go" {
		t.Errorf("expected first frame in log_test.go, got %s", fr[0])
	}
}
