package analysis

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEventSSEFraming(t *testing.T) {
	frame := LogEvent("extracting text").SSE()

	if !strings.HasPrefix(frame, "data: ") {
		t.Fatalf("frame missing data prefix: %q", frame)
	}
	if !strings.HasSuffix(frame, "\n\n") {
		t.Fatalf("frame missing terminator: %q", frame)
	}

	var ev Event
	if err := json.Unmarshal([]byte(strings.TrimSuffix(strings.TrimPrefix(frame, "data: "), "\n\n")), &ev); err != nil {
		t.Fatalf("frame body is not JSON: %v", err)
	}
	if ev.Type != EventLog || ev.Message != "extracting text" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestProgressEventShape(t *testing.T) {
	ev := ProgressEvent("compliance", 3, 10, "question 3")
	if ev.Type != EventProgress {
		t.Fatalf("expected progress type, got %q", ev.Type)
	}
	if ev.Data == nil || ev.Data.Current != 3 || ev.Data.Total != 10 || ev.Data.Step != "compliance" {
		t.Fatalf("unexpected progress payload %+v", ev.Data)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"data":{"step":"compliance"`) {
		t.Fatalf("progress counters not nested under data: %s", data)
	}
}

func TestStreamEndEvent(t *testing.T) {
	ev := StreamEndEvent()
	if ev.Type != EventStreamEnd {
		t.Fatalf("expected stream_end, got %q", ev.Type)
	}
}
