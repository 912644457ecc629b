package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestTextFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "transcript missing",
		Data: logrus.Fields{
			"component": "transcript-watcher",
			"session":   "abc",
		},
	}

	f := &TextFormatter{}
	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	line := string(out)

	if !strings.Contains(line, "2026-03-14 09:26:53") {
		t.Errorf("expected timestamp in output, got %q", line)
	}
	if !strings.Contains(line, "[WARN]") {
		t.Errorf("expected short level name, got %q", line)
	}
	if !strings.Contains(line, "[transcript-watcher]") {
		t.Errorf("expected component tag, got %q", line)
	}
	if !strings.Contains(line, "session=abc") {
		t.Errorf("expected extra fields appended, got %q", line)
	}
}

func TestTextFormatterDisables(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "ready",
		Data:    logrus.Fields{"component": "daemon"},
	}

	f := &TextFormatter{Config: FormatConfig{DisableTimestamp: true, DisableComponent: true}}
	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if got, want := string(out), "[INFO] ready\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
