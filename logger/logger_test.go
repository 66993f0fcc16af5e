package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("warn", &buf)

	Info("hidden info line")
	Warnf("visible %s", "warning")
	Sync()

	out := buf.String()
	if strings.Contains(out, "hidden info line") {
		t.Errorf("Expected info line to be filtered at warn level, got %s", out)
	}
	if !strings.Contains(out, "visible warning") {
		t.Errorf("Expected warning to be logged, got %s", out)
	}
	if !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("Expected JSON encoded level, got %s", out)
	}

	// Subsequent Init calls are no-ops
	Init("debug")
	Debug("still hidden")
	if strings.Contains(buf.String(), "still hidden") {
		t.Error("Expected logger to keep the first configuration")
	}
}
