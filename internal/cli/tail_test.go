// pattern: Imperative Shell
package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func logLine(msg string) string {
	return `{"level":"info","ts":1700000000,"logger":"editor","msg":"` + msg + `"}` + "\n"
}

func appendFile(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, have %q", want, out.String())
}

func TestTailLog_MissingFile(t *testing.T) {
	err := TailLog(context.Background(), TailConfig{
		Path:   filepath.Join(t.TempDir(), "none.log"),
		Writer: &bytes.Buffer{},
	})
	if !os.IsNotExist(err) {
		t.Errorf("error = %v, want not-exist", err)
	}
}

func TestTailLog_SkipsGarbageAndPartialLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unityhub.log")
	appendFile(t, path, logLine("first")+"not json\n"+`{"level":"info","msg":"unfinished`)

	var out bytes.Buffer
	if err := TailLog(context.Background(), TailConfig{Path: path, NoColor: true, Writer: &out}); err != nil {
		t.Fatalf("TailLog() error = %v", err)
	}
	if got := strings.Count(out.String(), "\n"); got != 1 || !strings.Contains(out.String(), "[editor] first") {
		t.Errorf("output = %q", out.String())
	}
}

func TestTailLog_FollowAndRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unityhub.log")
	appendFile(t, path, logLine("before"))

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- TailLog(ctx, TailConfig{
			Path:     path,
			Follow:   true,
			Interval: 10 * time.Millisecond,
			NoColor:  true,
			Writer:   out,
		})
	}()

	waitFor(t, out, "before")
	appendFile(t, path, logLine("appended"))
	waitFor(t, out, "appended")

	// Rotation replaces the file with a shorter one.
	if err := os.Rename(path, path+".1"); err != nil {
		t.Fatal(err)
	}
	appendFile(t, path, logLine("new"))
	waitFor(t, out, "new")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("TailLog() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("TailLog did not stop after cancel")
	}
}
