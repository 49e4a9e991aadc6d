package discord

import (
	"context"
	"time"

	"github.com/Soypete/mathy-bot/metrics"
	"github.com/bwmarrin/discordgo"
)

const (
	helpText = "**Mathy commands**\n" +
		"Mention me with any math question and I'll cook up an answer.\n" +
		"`/votes` shows the live votes on today's daily problem.\n" +
		"`/restart` restarts me (owner only).\n\n" +
		"A new daily problem drops every morning. React with 🇦 🇧 🇨 🇩 to vote; results land at midnight."
	restartDenied   = "🚫 You don't have permission to restart the bot."
	restartAccepted = "🔁 Restarting Mathy..."
)

// SlashCommands are registered globally when the session opens.
func SlashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "How to use Mathy",
		},
		{
			Name:        "votes",
			Description: "Show the live votes on today's daily problem",
		},
		{
			Name:        "restart",
			Description: "Restart Mathy (owner only)",
		},
	}
}

func (c *Client) onInteraction(ctx context.Context, api API, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name

	start := time.Now()
	metrics.DiscordCommandTotal.WithLabelValues(name).Inc()
	defer func() {
		metrics.DiscordCommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	var (
		content string
		restart bool
	)
	switch name {
	case "help":
		content = helpText
	case "votes":
		content = c.votesText(ctx, name)
	case "restart":
		content, restart = c.restartReply(interactionUserID(i))
	default:
		c.logger.Warn("unknown command", "command", name)
		return
	}

	err := api.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		c.logger.Error("error responding to command", "command", name, "error", err.Error())
		metrics.DiscordCommandErrors.WithLabelValues(name).Inc()
	} else {
		metrics.DiscordMessageSent.Add(1)
	}

	if restart {
		c.shutdown("restart requested by owner")
	}
}

func (c *Client) votesText(ctx context.Context, command string) string {
	text, err := c.votes.Votes(ctx)
	if err != nil {
		c.logger.Error("error fetching votes", "error", err.Error())
		metrics.DiscordCommandErrors.WithLabelValues(command).Inc()
		return "❌ Could not fetch votes right now. Try again in a bit."
	}
	return text
}

// restartReply reports whether userID may restart the bot. Without a
// configured owner nobody may.
func (c *Client) restartReply(userID string) (string, bool) {
	if c.ownerID == "" || userID != c.ownerID {
		c.logger.Warn("restart denied", "user", userID)
		return restartDenied, false
	}
	c.logger.Info("restart requested by owner")
	return restartAccepted, true
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
