// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"testing"
)

func line(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	return append(data, '\n')
}

func TestChannelSink_Write(t *testing.T) {
	sink := NewChannelSink(4)
	defer func() { _ = sink.Close() }()

	data := line(t, map[string]any{
		"level":  "warn",
		"ts":     1700000000.5,
		"logger": "editor",
		"msg":    "no version resource",
		"exe":    "/opt/Unity",
	})
	if n, err := sink.Write(data); err != nil || n != len(data) {
		t.Fatalf("Write() = %d, %v", n, err)
	}

	got := <-sink.Entries()
	if got.Level != "WARN" || got.Scope != "editor" || got.Message != "no version resource" {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.Fields["exe"] != "/opt/Unity" {
		t.Errorf("Fields = %v", got.Fields)
	}
	if got.Time.Unix() != 1700000000 {
		t.Errorf("Time = %v", got.Time)
	}
}

func TestChannelSink_DropsOldestWhenFull(t *testing.T) {
	sink := NewChannelSink(2)
	defer func() { _ = sink.Close() }()

	for _, msg := range []string{"one", "two", "three"} {
		if _, err := sink.Write(line(t, map[string]any{"msg": msg})); err != nil {
			t.Fatal(err)
		}
	}

	first := <-sink.Entries()
	second := <-sink.Entries()
	if first.Message != "two" || second.Message != "three" {
		t.Errorf("got %q, %q; want two, three", first.Message, second.Message)
	}
}

func TestChannelSink_IgnoresGarbage(t *testing.T) {
	sink := NewChannelSink(1)
	defer func() { _ = sink.Close() }()

	if n, err := sink.Write([]byte("not json")); err != nil || n != 8 {
		t.Errorf("Write() = %d, %v", n, err)
	}
	select {
	case e := <-sink.Entries():
		t.Errorf("unexpected entry %+v", e)
	default:
	}
}

func TestChannelSink_WriteAfterClose(t *testing.T) {
	sink := NewChannelSink(1)
	_ = sink.Close()
	_ = sink.Close()

	if _, err := sink.Write(line(t, map[string]any{"msg": "late"})); err == nil {
		t.Error("expected error writing to a closed sink")
	}
}
