package daily

import (
	"context"
	"fmt"
	"time"

	"github.com/Soypete/mathy-bot/types"
)

// Generator turns a prompt into text. Implemented by the language model client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Channel is the chat channel the daily problem is posted to.
type Channel interface {
	Publish(ctx context.Context, text string) (messageID string, err error)
	AddReaction(ctx context.Context, messageID, symbol string) error
	// FetchReactions must read the message from the chat service, not a cache,
	// since votes arrive after posting.
	FetchReactions(ctx context.Context, messageID string) (map[string]int, error)
}

// Store persists one problem per calendar date. GetDailyProblem and
// LatestDailyProblem return database.ErrNotFound when there is no row.
type Store interface {
	UpsertDailyProblem(ctx context.Context, problem types.DailyProblem) error
	GetDailyProblem(ctx context.Context, date time.Time) (types.DailyProblem, error)
	LatestDailyProblem(ctx context.Context) (types.DailyProblem, error)
}

// StatusSink is the shared error flag watched by the status monitor.
type StatusSink interface {
	SetError(value bool) error
}

// Stage names the step of a daily operation that failed.
type Stage string

const (
	StageLookup   Stage = "lookup"
	StageGenerate Stage = "generate"
	StagePublish  Stage = "publish"
	StageStore    Stage = "store"
	StageReact    Stage = "react"
	StageFetch    Stage = "fetch"
	StageSummary  Stage = "summary"
)

// StageError is returned by scheduler operations. It records the stage and the
// problem date so the log line is enough to diagnose the failure.
type StageError struct {
	Stage Stage
	Date  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("daily problem %s failed for %s: %v", e.Stage, e.Date, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
