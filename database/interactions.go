package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Soypete/mathy-bot/types"
)

// InteractionWriter records answered prompts.
type InteractionWriter interface {
	InsertInteraction(ctx context.Context, interaction types.Interaction) error
}

// InsertInteraction appends one answered prompt to interaction_logs.
func (s *Store) InsertInteraction(ctx context.Context, interaction types.Interaction) error {
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now().UTC()
	}
	query := "INSERT INTO interaction_logs (user_id, username, question, response, timestamp) VALUES (:user_id, :username, :question, :response, :timestamp)"
	_, err := s.connections.NamedExecContext(ctx, query, interaction)
	if err != nil {
		s.logger.Error("error inserting interaction", "user", interaction.Username, "error", err.Error())
		return fmt.Errorf("error inserting interaction: %w", err)
	}
	return nil
}
