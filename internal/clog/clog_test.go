package clog

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

// newPipeLogger returns a Logger writing to a pipe (never a terminal, so
// New always selects the JSON encoder) and a reader to drain it.
func newPipeLogger(t *testing.T, runID string) (*Logger, *bufio.Reader) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() { r.Close(); w.Close() })
	return New(w, runID), bufio.NewReader(r)
}

func readLine(t *testing.T, r *bufio.Reader) map[string]any {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read log line: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	return decoded
}

func TestNewAttachesRunIDToEveryLine(t *testing.T) {
	logger, r := newPipeLogger(t, "run-123")
	logger.Info("starting compile")

	entry := readLine(t, r)
	if entry["run_id"] != "run-123" {
		t.Fatalf("expected run_id run-123, got %v", entry["run_id"])
	}
}

func TestPhaseAttachesPhaseAndPosition(t *testing.T) {
	logger, r := newPipeLogger(t, "run-1")
	phaseLogger := logger.Phase(PhaseCodegen, Position{File: "main.py", Line: 4, Col: 2})
	phaseLogger.Info("emitting instruction")

	entry := readLine(t, r)
	if entry["phase"] != string(PhaseCodegen) {
		t.Fatalf("expected phase codegen, got %v", entry["phase"])
	}
	if entry["file"] != "main.py" || entry["line"].(float64) != 4 || entry["col"].(float64) != 2 {
		t.Fatalf("expected position fields preserved, got %v", entry)
	}
}

func TestPhaseWithoutPositionOmitsPositionFields(t *testing.T) {
	logger, r := newPipeLogger(t, "run-1")
	logger.Phase(PhaseAnalyse, Position{}).Info("analysing")

	entry := readLine(t, r)
	if _, ok := entry["file"]; ok {
		t.Fatalf("expected no file field when position is empty, got %v", entry)
	}
}

func TestDurationLogsMillisecondsAndPhase(t *testing.T) {
	logger, r := newPipeLogger(t, "run-1")
	logger.Duration(PhaseFinalise, 250*time.Millisecond)

	entry := readLine(t, r)
	if entry["phase"] != string(PhaseFinalise) {
		t.Fatalf("expected phase finalise, got %v", entry["phase"])
	}
	if entry["duration_ms"].(float64) != 250 {
		t.Fatalf("expected duration_ms 250, got %v", entry["duration_ms"])
	}
}

func TestRunIDAccessorMatchesConstructionValue(t *testing.T) {
	logger, _ := newPipeLogger(t, "abc-def")
	if logger.RunID() != "abc-def" {
		t.Fatalf("expected RunID() to return abc-def, got %q", logger.RunID())
	}
}

func TestErrorLevelLineIsMarkedError(t *testing.T) {
	logger, r := newPipeLogger(t, "run-1")
	logger.Error("compile failed", "reason", "unresolved reference")

	entry := readLine(t, r)
	if !strings.EqualFold(entry["level"].(string), "error") {
		t.Fatalf("expected level error, got %v", entry["level"])
	}
}
