// Package runlog writes the per-run text log kept in the output directory.
//
// Each run gets its own file named log_<YYYYMMDD_HHMMSS>.txt. Stage progress
// lines and the raw output of every external tool end up in it, in the order
// they happened. A second run started in the same second gets a numbered name
// (log_<YYYYMMDD_HHMMSS>_2.txt and so on) instead of sharing the first run's file.
package runlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// TimestampLayout is the time format embedded in log file names.
const TimestampLayout = "20060102_150405"

// maxAttempts bounds the numbered names tried when runs collide on a timestamp.
const maxAttempts = 100

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("log_%s.txt", t.Format(TimestampLayout))
}

func numberedName(t time.Time, n int) string {
	if n < 2 {
		return FileName(t)
	}
	return fmt.Sprintf("log_%s_%d.txt", t.Format(TimestampLayout), n)
}

// Log is an open run log. It is safe for concurrent writes, since a tool's
// stdout and stderr may both be wired to it.
type Log struct {
	mu   sync.Mutex
	f    afero.File
	path string
}

// Create opens a new log for a run started at t inside dir on fs. An existing
// log is never reused.
func Create(fs afero.Fs, dir string, t time.Time) (*Log, error) {
	for n := 1; n <= maxAttempts; n++ {
		path := filepath.Join(dir, numberedName(t, n))
		f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		return &Log{f: f, path: path}, nil
	}
	return nil, fmt.Errorf("failed to create log file: %d logs already exist for %s in %s",
		maxAttempts, t.Format(TimestampLayout), dir)
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Write appends raw bytes. It lets the log stand in as a tool's output stream.
func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return 0, os.ErrClosed
	}
	return l.f.Write(p)
}

// Line appends one formatted line.
func (l *Log) Line(format string, args ...any) error {
	_, err := fmt.Fprintf(l, format+"\n", args...)
	return err
}

// Close flushes and closes the file. Calling Close more than once is harmless.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
