// pattern: Imperative Shell
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"unityhub/internal/logging"
)

// TailConfig configures printing the JSON log file.
type TailConfig struct {
	Path     string
	Level    string // minimum level shown
	Follow   bool
	Interval time.Duration
	NoColor  bool
	Writer   io.Writer
}

var levelColors = map[string]*color.Color{
	"DEBUG": color.New(color.FgHiBlack),
	"WARN":  color.New(color.FgYellow),
	"ERROR": color.New(color.FgRed, color.Bold),
}

// TailLog prints decoded entries from the log file. With Follow set it keeps
// polling until ctx is cancelled, reopening the file after rotation.
func TailLog(ctx context.Context, cfg TailConfig) error {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}

	t := &tailer{cfg: cfg}
	if err := t.open(); err != nil {
		return err
	}
	defer t.close()

	if err := t.drain(); err != nil || !cfg.Follow {
		return err
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if t.rotated() {
				if err := t.drain(); err != nil {
					return err
				}
				t.close()
				if err := t.open(); err != nil {
					if errors.Is(err, os.ErrNotExist) {
						continue
					}
					return err
				}
			}
			if err := t.drain(); err != nil {
				return err
			}
		}
	}
}

type tailer struct {
	cfg     TailConfig
	file    *os.File
	reader  *bufio.Reader
	offset  int64
	pending []byte
}

func (t *tailer) open() error {
	f, err := os.Open(t.cfg.Path)
	if err != nil {
		return err
	}
	t.file = f
	t.reader = bufio.NewReader(f)
	t.offset = 0
	t.pending = nil
	return nil
}

func (t *tailer) close() {
	if t.file != nil {
		_ = t.file.Close()
		t.file = nil
	}
}

// rotated reports whether the path no longer names the open file, or the
// file was truncated below what has been read.
func (t *tailer) rotated() bool {
	if t.file == nil {
		return true
	}
	current, err := os.Stat(t.cfg.Path)
	if err != nil {
		return true
	}
	open, err := t.file.Stat()
	if err != nil {
		return true
	}
	return !os.SameFile(current, open) || current.Size() < t.offset
}

// drain prints every complete line available. A trailing partial line is kept
// for the next call.
func (t *tailer) drain() error {
	if t.file == nil {
		return nil
	}
	for {
		chunk, err := t.reader.ReadBytes('\n')
		t.offset += int64(len(chunk))
		t.pending = append(t.pending, chunk...)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		t.print(t.pending)
		t.pending = t.pending[:0]
	}
}

func (t *tailer) print(line []byte) {
	entry, ok := logging.DecodeEntry(line)
	if !ok {
		return
	}
	if t.cfg.Level != "" && !entry.AtLeast(t.cfg.Level) {
		return
	}
	text := entry.String()
	if c, ok := levelColors[entry.Level]; ok {
		text = c.Sprint(text)
	}
	if t.cfg.NoColor {
		text = StripANSI(text)
	}
	_, _ = fmt.Fprintln(t.cfg.Writer, text)
}
