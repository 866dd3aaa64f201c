package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDDHandler_Handle(t *testing.T) {
	ts := time.Date(2025, 1, 3, 10, 30, 45, 0, time.UTC)

	tests := []struct {
		name      string
		sessionID string
		level     slog.Level
		message   string
		attrs     []slog.Attr
		want      string
	}{
		{
			name:      "basic info message",
			sessionID: "s-123",
			level:     slog.LevelInfo,
			message:   "diagram loaded",
			want:      "2025-01-03T10:30:45Z\tINFO\ts-123\tdiagram loaded\n",
		},
		{
			name:      "warn level",
			sessionID: "s-456",
			level:     slog.LevelWarn,
			message:   "session expired",
			want:      "2025-01-03T10:30:45Z\tWARN\ts-456\tsession expired\n",
		},
		{
			name:      "with record attrs",
			sessionID: "s-789",
			level:     slog.LevelInfo,
			message:   "request",
			attrs:     []slog.Attr{slog.String("path", "/superdomains"), slog.Int("status", 200)},
			want:      "2025-01-03T10:30:45Z\tINFO\ts-789\trequest\tpath=/superdomains\tstatus=200\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := newDDHandler(&buf, slog.LevelDebug, tt.sessionID)

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestDDHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newDDHandler(&buf, nil, "s-1")

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "transport")}).(*ddHandler)

	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "request", 0)
	r.AddAttrs(slog.String("method", "GET"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=transport") {
		t.Errorf("expected pre-set attr component=transport, got: %q", got)
	}
	if !strings.Contains(got, "method=GET") {
		t.Errorf("expected record attr method=GET, got: %q", got)
	}
}

func TestDDHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	h := newDDHandler(&bytes.Buffer{}, nil, "s-1")
	h.attrs = []slog.Attr{slog.String("a", "1")}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*ddHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestDDHandler_Enabled(t *testing.T) {
	h := newDDHandler(&bytes.Buffer{}, slog.LevelInfo, "s-1")

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, true},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	logger, f, err := newLogger(dir, "test-session", false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Debug("hidden")
	logger.Info("visible", "k", "v")
	f.Close()

	data, err := os.ReadFile(filepath.Join(dir, "dd.log"))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "hidden") {
		t.Errorf("debug record written without verbose: %q", got)
	}
	if !strings.Contains(got, "\ttest-session\tvisible\tk=v\n") {
		t.Errorf("log line = %q", got)
	}
}
