package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Soypete/mathy-bot/types"
)

// ErrNotFound is returned when no row matches a lookup.
var ErrNotFound = errors.New("not found")

const dailyProblemColumns = "id, date, problem_text, correct_answer_letter, correct_answer_option, message_id, created_at"

// UpsertDailyProblem stores the problem for its date. A second call for the
// same date replaces the text, answer and message id of the existing row.
func (s *Store) UpsertDailyProblem(ctx context.Context, problem types.DailyProblem) error {
	query := `INSERT INTO daily_problems (date, problem_text, correct_answer_letter, correct_answer_option, message_id)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (date) DO UPDATE SET
	problem_text = excluded.problem_text,
	correct_answer_letter = excluded.correct_answer_letter,
	correct_answer_option = excluded.correct_answer_option,
	message_id = excluded.message_id`

	_, err := s.connections.ExecContext(ctx, s.connections.Rebind(query),
		problem.DateKey(),
		problem.ProblemText,
		problem.CorrectAnswerLetter,
		problem.CorrectAnswerOption,
		problem.MessageID,
	)
	if err != nil {
		s.logger.Error("error upserting daily problem", "date", problem.DateKey(), "error", err.Error())
		return fmt.Errorf("error upserting daily problem for %s: %w", problem.DateKey(), err)
	}
	s.logger.Debug("daily problem stored", "date", problem.DateKey(), "messageID", problem.Message())
	return nil
}

// GetDailyProblem returns the problem stored for the calendar date of date,
// taken in date's own location.
func (s *Store) GetDailyProblem(ctx context.Context, date time.Time) (types.DailyProblem, error) {
	key := date.Format(time.DateOnly)
	query := "SELECT " + dailyProblemColumns + " FROM daily_problems WHERE date = ?"

	var problem types.DailyProblem
	err := s.connections.GetContext(ctx, &problem, s.connections.Rebind(query), key)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DailyProblem{}, ErrNotFound
	}
	if err != nil {
		return types.DailyProblem{}, fmt.Errorf("error getting daily problem for %s: %w", key, err)
	}
	return problem, nil
}

// LatestDailyProblem returns the most recent stored problem.
func (s *Store) LatestDailyProblem(ctx context.Context) (types.DailyProblem, error) {
	query := "SELECT " + dailyProblemColumns + " FROM daily_problems ORDER BY date DESC LIMIT 1"

	var problem types.DailyProblem
	err := s.connections.GetContext(ctx, &problem, query)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DailyProblem{}, ErrNotFound
	}
	if err != nil {
		return types.DailyProblem{}, fmt.Errorf("error getting latest daily problem: %w", err)
	}
	return problem, nil
}
