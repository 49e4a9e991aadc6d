package discord

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/Soypete/mathy-bot/metrics"
	"github.com/Soypete/mathy-bot/types"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// BotDisplayName replaces the bot's own mention in logged questions.
const BotDisplayName = "Mathy"

func (c *Client) onMessage(ctx context.Context, api API, bot *discordgo.User, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == bot.ID || m.Author.Bot {
		return
	}
	if !mentions(m.Mentions, bot.ID) {
		return
	}
	metrics.DiscordMessageReceived.Add(1)

	prompt := stripMention(m.Content, bot.ID)
	switch strings.ToLower(prompt) {
	case "votes":
		c.sendChunks(api, m.ChannelID, c.votesText(ctx, "mention_votes"))
		return
	case "restart":
		reply, ok := c.restartReply(m.Author.ID)
		c.sendChunks(api, m.ChannelID, reply)
		if ok {
			c.shutdown("restart requested by owner")
		}
		return
	}

	c.handleMention(ctx, api, bot, m, prompt)
}

func (c *Client) handleMention(ctx context.Context, api API, bot *discordgo.User, m *discordgo.MessageCreate, prompt string) {
	traceID := uuid.New()
	ctx = logging.ContextWithTrace(ctx, traceID.String())
	logger := c.logger.WithContext(ctx)

	if c.status != nil {
		if err := c.status.Flash(); err != nil {
			logger.Warn("failed to set flash flag", "error", err.Error())
		}
	}
	if err := api.ChannelTyping(m.ChannelID); err != nil {
		logger.Debug("failed to send typing indicator", "error", err.Error())
	}

	ask := types.AskMessage{
		UserID:    m.Author.ID,
		Username:  m.Author.String(),
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Text:      prompt,
		Timestamp: time.Now(),
		TraceID:   traceID,
	}

	response, err := c.llm.Respond(ctx, ask.UserID, ask.Username, ask.Text)
	if err != nil {
		logger.Error("error generating mention response", "user", ask.Username, "error", err.Error())
		response = "❌ Error generating response: " + err.Error()
		c.raiseError()
	} else {
		c.recordInteraction(ctx, logger, ask, cleanQuestion(m, bot), response)
	}

	c.sendChunks(api, m.ChannelID, response)
	if c.journal != nil {
		c.journal.Record(ask.Username, ask.Text, response)
	}
	logger.Info("responded to mention", "user", ask.Username, "prompt", ask.Text)
}

func (c *Client) recordInteraction(ctx context.Context, logger *logging.Logger, ask types.AskMessage, question, response string) {
	if c.db == nil {
		return
	}
	userID, err := strconv.ParseInt(ask.UserID, 10, 64)
	if err != nil {
		logger.Warn("user id is not numeric, interaction not stored", "userID", ask.UserID)
		return
	}
	err = c.db.InsertInteraction(ctx, types.Interaction{
		UserID:    userID,
		Username:  ask.Username,
		Question:  question,
		Response:  response,
		Timestamp: ask.Timestamp.UTC(),
	})
	if err != nil {
		logger.Error("failed to store interaction", "error", err.Error())
		c.raiseError()
	}
}

func (c *Client) sendChunks(api API, channelID, text string) {
	for _, chunk := range ChunkMessage(text, MessageLimit) {
		if chunk == "" {
			continue
		}
		if _, err := api.ChannelMessageSend(channelID, chunk); err != nil {
			c.logger.Error("error sending message to channel", "channelID", channelID, "error", err.Error())
			return
		}
		metrics.DiscordMessageSent.Add(1)
	}
}

func mentions(users []*discordgo.User, id string) bool {
	for _, u := range users {
		if u != nil && u.ID == id {
			return true
		}
	}
	return false
}

func stripMention(content, botID string) string {
	content = strings.ReplaceAll(content, "<@"+botID+">", "")
	content = strings.ReplaceAll(content, "<@!"+botID+">", "")
	return strings.TrimSpace(content)
}

// cleanQuestion is the stored form of the question: mentions as usernames,
// the bot as BotDisplayName, no markdown marks.
func cleanQuestion(m *discordgo.MessageCreate, bot *discordgo.User) string {
	content := strings.ReplaceAll(m.Content, "<@"+bot.ID+">", "@"+BotDisplayName)
	content = strings.ReplaceAll(content, "<@!"+bot.ID+">", "@"+BotDisplayName)
	return ReplaceMentions(content, m.Mentions)
}
