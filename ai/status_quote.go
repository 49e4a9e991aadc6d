package ai

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Activity is the presence verb shown before the status text.
type Activity string

const (
	ActivityListening Activity = "Listening to"
	ActivityPlaying   Activity = "Playing"
	ActivityWatching  Activity = "Watching"
)

var Activities = []Activity{ActivityListening, ActivityPlaying, ActivityWatching}

// SystemUserID is the memory slot used for prompts Mathy sends itself.
const SystemUserID = "000000000000000000"

func RandomActivity() Activity {
	return Activities[rand.IntN(len(Activities))]
}

func statusQuotePrompt(activity Activity) string {
	return fmt.Sprintf("%s, %s _____. Give the answer related to math and directly without any explanation or additional text and be creative not dull answers and in plain text no bold or any formatting, can add emojis.",
		StatusQuotePrefix, activity)
}

// StatusQuote asks for a short math themed presence text completing activity.
func (c *Client) StatusQuote(ctx context.Context, activity Activity) (string, error) {
	text, err := c.Respond(ctx, SystemUserID, "Mathy", statusQuotePrompt(activity))
	if err != nil {
		return "", fmt.Errorf("error generating status quote: %w", err)
	}
	text = strings.NewReplacer(string(activity), "", "*", "", ".", "").Replace(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
