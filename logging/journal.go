package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// InteractionJournal appends one JSON line per answered prompt.
type InteractionJournal struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	log    *slog.Logger
}

// OpenJournal opens path for appending, creating it if needed.
func OpenJournal(path string) (*InteractionJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening interaction journal %s: %w", path, err)
	}
	j := NewJournal(f)
	j.closer = f
	return j, nil
}

// NewJournal writes journal lines to out.
func NewJournal(out io.Writer) *InteractionJournal {
	return &InteractionJournal{
		out: out,
		log: slog.New(slog.NewJSONHandler(out, nil)),
	}
}

// Record writes a single interaction entry.
func (j *InteractionJournal) Record(user, userMessage, botResponse string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.log.Info("interaction",
		"user", user,
		"user_message", userMessage,
		"bot_response", botResponse)
}

// Close releases the underlying file, if any.
func (j *InteractionJournal) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}
