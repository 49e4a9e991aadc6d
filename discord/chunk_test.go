package discord

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestChunkMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		limit   int
		want    []string
	}{
		{name: "short", message: "hi", limit: 10, want: []string{"hi"}},
		{name: "exact limit", message: "0123456789", limit: 10, want: []string{"0123456789"}},
		{name: "splits at last newline", message: "line one\nline two\nline three", limit: 20, want: []string{"line one\nline two", "line three"}},
		{name: "hard split without newline", message: "abcdefghij", limit: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "drops leading whitespace", message: "abcd    efgh", limit: 4, want: []string{"abcd", "efgh"}},
		{name: "counts characters not bytes", message: "🇦🇦🇦🇦🇦🇦", limit: 4, want: []string{"🇦🇦🇦🇦", "🇦🇦"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkMessage(tt.message, tt.limit))
		})
	}
}

func TestChunkMessageDiscordLimit(t *testing.T) {
	long := strings.Repeat("math is mathing\n", 300)
	chunks := ChunkMessage(long, MessageLimit)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), MessageLimit)
	}
	assert.Equal(t, strings.TrimSpace(long), strings.TrimSpace(strings.Join(chunks, "\n")))
}

func TestReplaceMentions(t *testing.T) {
	mentions := []*discordgo.User{{ID: "123456789012345678", Username: "gauss"}}
	got := ReplaceMentions("hey <@123456789012345678> and <@!876543210987654321>, **solve** `x`", mentions)
	assert.Equal(t, "hey @gauss and @user, solve x", got)
}
