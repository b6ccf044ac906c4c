package loghandler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestCompactHandlerTagAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Info("turn resolved", "tag", "room", "turn", 3)

	line := buf.String()
	if !strings.Contains(line, "[room] turn resolved turn=3") {
		t.Errorf("unexpected line: %q", line)
	}
	if strings.Contains(line, "tag=") {
		t.Errorf("tag should not be repeated as key=value: %q", line)
	}
}

func TestCompactHandlerBoundAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo)).With("tag", "room", "room", "ABCDE")

	logger.Info("game started", "players", 3)

	line := buf.String()
	if !strings.Contains(line, "[room] game started room=ABCDE players=3") {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record should be filtered, got %q", buf.String())
	}
	logger.Warn("careful")
	if !strings.Contains(buf.String(), "WARN: careful") {
		t.Errorf("expected WARN marker, got %q", buf.String())
	}
}

func TestCompactHandlerGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(&buf, slog.LevelInfo)).WithGroup("bot")

	logger.Info("decided", "card", 12)

	if !strings.Contains(buf.String(), "decided bot.card=12") {
		t.Errorf("unexpected line: %q", buf.String())
	}
}
