package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/Soypete/mathy-bot/metrics"
	"github.com/bwmarrin/discordgo"
)

// DailyChannel is the channel the daily problem and its summary are posted to.
type DailyChannel struct {
	api       API
	channelID string
}

func NewDailyChannel(api API, channelID string) *DailyChannel {
	return &DailyChannel{api: api, channelID: channelID}
}

// Publish sends text, split to fit the message limit, and returns the id of
// the first message. Reactions go on that message.
func (c *DailyChannel) Publish(ctx context.Context, text string) (string, error) {
	var firstID string
	for _, chunk := range ChunkMessage(text, MessageLimit) {
		if chunk == "" {
			continue
		}
		msg, err := c.api.ChannelMessageSend(c.channelID, chunk, discordgo.WithContext(ctx))
		if err != nil {
			return firstID, fmt.Errorf("error sending message to channel %s: %w", c.channelID, err)
		}
		metrics.DiscordMessageSent.Add(1)
		if firstID == "" {
			firstID = msg.ID
		}
	}
	if firstID == "" {
		return "", errors.New("refusing to send an empty message")
	}
	return firstID, nil
}

func (c *DailyChannel) AddReaction(ctx context.Context, messageID, symbol string) error {
	if err := c.api.MessageReactionAdd(c.channelID, messageID, symbol, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("error adding reaction %s to message %s: %w", symbol, messageID, err)
	}
	return nil
}

// FetchReactions reads the message over REST so the counts are current, not
// whatever the gateway state cached.
func (c *DailyChannel) FetchReactions(ctx context.Context, messageID string) (map[string]int, error) {
	msg, err := c.api.ChannelMessage(c.channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("error fetching message %s: %w", messageID, err)
	}
	counts := make(map[string]int, len(msg.Reactions))
	for _, r := range msg.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		counts[r.Emoji.Name] = r.Count
	}
	return counts, nil
}
