package watchdog

import (
	"context"
	"fmt"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/bwmarrin/discordgo"
)

// messageSender is implemented by *discordgo.Session.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAlerter sends alerts to a Discord channel
type DiscordAlerter struct {
	sender    messageSender
	channelID string
	userID    string // mentioned in every alert
	logger    *logging.Logger
}

// NewDiscordAlerter posts through a REST-only session; the watchdog never
// opens a gateway connection.
func NewDiscordAlerter(token, channelID, userID string, logger *logging.Logger) (*DiscordAlerter, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	logger.Info("Discord alerter initialized", "channelID", channelID, "userID", userID)
	return newDiscordAlerter(session, channelID, userID, logger), nil
}

func newDiscordAlerter(sender messageSender, channelID, userID string, logger *logging.Logger) *DiscordAlerter {
	return &DiscordAlerter{
		sender:    sender,
		channelID: channelID,
		userID:    userID,
		logger:    logger,
	}
}

// SendAlert sends an alert message to the configured Discord channel
func (da *DiscordAlerter) SendAlert(ctx context.Context, checkName string, message string) error {
	alertMessage := fmt.Sprintf("**Alert:** %s", message)
	if da.userID != "" {
		alertMessage = fmt.Sprintf("<@%s> %s", da.userID, alertMessage)
	}

	_, err := da.sender.ChannelMessageSend(da.channelID, alertMessage, discordgo.WithContext(ctx))
	if err != nil {
		da.logger.Error("failed to send Discord alert",
			"error", err.Error(),
			"check", checkName,
			"channel_id", da.channelID)
		return fmt.Errorf("failed to send Discord message: %w", err)
	}

	da.logger.Info("Discord alert sent",
		"check", checkName,
		"channel_id", da.channelID)
	return nil
}
