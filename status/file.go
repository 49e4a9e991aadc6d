// Package status keeps the small JSON file shared with the out-of-process
// monitor. The bot raises flags; the monitor reads and clears them.
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Soypete/mathy-bot/metrics"
)

// Status is the file content. Timestamp is unix seconds of the last write.
type Status struct {
	Error     bool    `json:"error"`
	FlashBoth bool    `json:"flash_both"`
	Timestamp float64 `json:"timestamp"`
}

// File is a Status persisted at a path. Writes replace the file atomically
// so the monitor never reads a partial document.
type File struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFile(path string) *File {
	return &File{path: path, now: time.Now}
}

func (f *File) Path() string {
	return f.path
}

// Read returns the current status. A missing file is a zero Status.
func (f *File) Read() (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// SetError raises or clears the error flag.
func (f *File) SetError(value bool) error {
	err := f.update(func(s *Status) {
		s.Error = value
	})
	if err == nil {
		if value {
			metrics.StatusError.Set(1)
		} else {
			metrics.StatusError.Set(0)
		}
	}
	return err
}

// Flash asks the monitor to signal that Mathy was pinged.
func (f *File) Flash() error {
	return f.update(func(s *Status) {
		s.FlashBoth = true
	})
}

// ClearFlash acknowledges a flash request.
func (f *File) ClearFlash() error {
	return f.update(func(s *Status) {
		s.FlashBoth = false
	})
}

// Reset clears every flag. Called at startup.
func (f *File) Reset() error {
	err := f.update(func(s *Status) {
		s.Error = false
		s.FlashBoth = false
	})
	if err == nil {
		metrics.StatusError.Set(0)
	}
	return err
}

func (f *File) update(change func(*Status)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.read()
	if err != nil {
		// an unreadable file is replaced rather than blocking the flag
		s = Status{}
	}
	change(&s)
	s.Timestamp = float64(f.now().UnixMilli()) / 1000
	return f.write(s)
}

func (f *File) read() (Status, error) {
	var s Status
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("error reading status file: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Status{}, fmt.Errorf("error decoding status file: %w", err)
	}
	return s, nil
}

func (f *File) write(s Status) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error encoding status: %w", err)
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".status-*")
	if err != nil {
		return fmt.Errorf("error creating status file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("error writing status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error writing status file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error replacing status file: %w", err)
	}
	return nil
}
