package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type capture struct {
	mu      sync.Mutex
	batches [][]AggregatedLogEntry
}

func (c *capture) PublishMessage(_ context.Context, _ string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestLevelFilterAndFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "info", Format: "json", Writer: &buf, Component: "finsim"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hidden")
	l.With(String("agent_id", "a-1")).Warn("skipped", Int("tick", 4), Error(errors.New("bad")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one entry, got %q", buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["agent_id"] != "a-1" || entry["tick"] != float64(4) || entry["error"] != "bad" || entry["component"] != "finsim" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestCollectorFoldsRepeats(t *testing.T) {
	pub := &capture{}
	l := Nop()
	child := l.With(String("agent_id", "a-1"))
	l.AddCollector(&CollectionConfig{
		TimeInterval: time.Hour,
		GroupBy:      []string{"reason"},
		Publisher:    pub,
	})

	for i := 0; i < 3; i++ {
		child.Warn("decision skipped", String("reason", "numerical"), Int("tick", i))
	}
	child.Warn("decision skipped", String("reason", "degenerate"))
	l.Info("not collected")
	l.RemoveCollector()

	if len(pub.batches) != 1 || len(pub.batches[0]) != 2 {
		t.Fatalf("batches = %+v", pub.batches)
	}
	var first AggregatedLogEntry
	for _, e := range pub.batches[0] {
		if e.Fields["reason"] == "numerical" {
			first = e
		}
	}
	if first.Count != 3 || first.Fields["reason"] != "numerical" || first.Fields["tick"] != 0 {
		t.Fatalf("first aggregate = %+v", first)
	}
	if !strings.HasPrefix(first.Caller, "logger/logger_test.go:") {
		t.Fatalf("caller = %q", first.Caller)
	}
}

func TestErrorFieldNil(t *testing.T) {
	k, v := Error(nil).GetKeyValue()
	if k != "error" || v != nil {
		t.Fatalf("nil error field = %s:%v", k, v)
	}
}
