package ai

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// DefaultHistorySize is how many prompts are remembered per user.
	DefaultHistorySize = 10
	// NoPreviousReply stands in for the last reply of a new user.
	NoPreviousReply = "(No previous reply)"
)

// Turn is one remembered user prompt.
type Turn struct {
	Username string
	Prompt   string
}

// Memory keeps the most recent prompts of each user and Mathy's last reply to
// them. Only user prompts are kept in the history. Safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	capacity  int
	history   map[string][]Turn
	lastReply map[string]string
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &Memory{
		capacity:  capacity,
		history:   make(map[string][]Turn),
		lastReply: make(map[string]string),
	}
}

// AddPrompt appends a prompt, evicting the oldest once the user is at capacity.
func (m *Memory) AddPrompt(userID, username, prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns := append(m.history[userID], Turn{Username: username, Prompt: prompt})
	if len(turns) > m.capacity {
		turns = append([]Turn(nil), turns[len(turns)-m.capacity:]...)
	}
	m.history[userID] = turns
}

// History returns a copy of the user's remembered prompts, oldest first.
func (m *Memory) History(userID string) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Turn(nil), m.history[userID]...)
}

// Transcript renders the history as "username: prompt" lines.
func (m *Memory) Transcript(userID string) string {
	turns := m.History(userID)
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Username, t.Prompt))
	}
	return strings.Join(lines, "\n")
}

func (m *Memory) LastReply(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	reply, ok := m.lastReply[userID]
	if !ok {
		return NoPreviousReply
	}
	return reply
}

func (m *Memory) SetLastReply(userID, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReply[userID] = reply
}
