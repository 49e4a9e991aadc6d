package types

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// Letter is one of the four answer choices of a daily problem.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
)

// Letters is the fixed answer order. Reactions are attached and tallies are
// displayed in this order.
var Letters = []Letter{LetterA, LetterB, LetterC, LetterD}

var letterSymbols = map[Letter]string{
	LetterA: "🇦",
	LetterB: "🇧",
	LetterC: "🇨",
	LetterD: "🇩",
}

// Valid reports whether l is one of A, B, C or D.
func (l Letter) Valid() bool {
	_, ok := letterSymbols[l]
	return ok
}

// Symbol returns the reaction glyph for the letter, or "" for an unknown letter.
func (l Letter) Symbol() string {
	return letterSymbols[l]
}

// OptionSymbols returns the four reaction glyphs in answer order.
func OptionSymbols() []string {
	symbols := make([]string, 0, len(Letters))
	for _, l := range Letters {
		symbols = append(symbols, l.Symbol())
	}
	return symbols
}

// LetterForSymbol maps a reaction glyph back to its letter.
func LetterForSymbol(symbol string) (Letter, bool) {
	for l, s := range letterSymbols {
		if s == symbol {
			return l, true
		}
	}
	return "", false
}

// IsOptionSymbol reports whether symbol is one of the four answer glyphs.
func IsOptionSymbol(symbol string) bool {
	_, ok := LetterForSymbol(symbol)
	return ok
}

// DailyProblem is the persisted problem for one calendar date.
// CorrectAnswerOption is always derived from CorrectAnswerLetter, so either
// both are set or neither is.
type DailyProblem struct {
	ID                  int64          `db:"id"`
	Date                time.Time      `db:"date"`
	ProblemText         string         `db:"problem_text"`
	CorrectAnswerLetter sql.NullString `db:"correct_answer_letter"`
	CorrectAnswerOption sql.NullString `db:"correct_answer_option"`
	MessageID           sql.NullInt64  `db:"message_id"`
	CreatedAt           time.Time      `db:"created_at"`
}

// NewDailyProblem builds a row for date. An empty or invalid letter leaves the
// answer columns null. messageID may be empty until the post succeeds.
func NewDailyProblem(date time.Time, text string, letter Letter, messageID string) (DailyProblem, error) {
	p := DailyProblem{
		Date:        date,
		ProblemText: text,
	}
	if letter.Valid() {
		p.CorrectAnswerLetter = sql.NullString{String: string(letter), Valid: true}
		p.CorrectAnswerOption = sql.NullString{String: letter.Symbol(), Valid: true}
	}
	if messageID != "" {
		id, err := strconv.ParseInt(messageID, 10, 64)
		if err != nil {
			return DailyProblem{}, fmt.Errorf("invalid message id %q: %w", messageID, err)
		}
		p.MessageID = sql.NullInt64{Int64: id, Valid: true}
	}
	return p, nil
}

// Letter returns the stored answer letter, or "" when the generator output had none.
func (p DailyProblem) Letter() Letter {
	if !p.CorrectAnswerLetter.Valid {
		return ""
	}
	return Letter(p.CorrectAnswerLetter.String)
}

// Option returns the stored answer symbol, or "".
func (p DailyProblem) Option() string {
	if !p.CorrectAnswerOption.Valid {
		return ""
	}
	return p.CorrectAnswerOption.String
}

// Message returns the posted message id in the string form the chat API uses.
func (p DailyProblem) Message() string {
	if !p.MessageID.Valid {
		return ""
	}
	return strconv.FormatInt(p.MessageID.Int64, 10)
}

// DateKey is the calendar date formatted as the storage key.
func (p DailyProblem) DateKey() string {
	return p.Date.Format(time.DateOnly)
}
