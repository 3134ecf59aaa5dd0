package adapters

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestZerologWrapper_WithAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologWrapperWithWriter(&buf, "info")

	logger.Debug("hidden")
	logger.With(map[string]interface{}{"run_id": "run-1"}).ErrorWithFields(errors.New("boom"), "stage failed", map[string]interface{}{
		"stage": "assembling",
	})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one entry, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatal(err)
	}
	if entry["run_id"] != "run-1" || entry["stage"] != "assembling" || entry["error"] != "boom" || entry["level"] != "error" {
		t.Errorf("unexpected entry %v", entry)
	}
}
