package discord

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

// MessageLimit is the maximum message length Discord accepts.
const MessageLimit = 2000

// ChunkMessage splits message into parts of at most limit characters,
// preferring to break at the last newline inside the limit. Leading
// whitespace of each following part is dropped.
func ChunkMessage(message string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	runes := []rune(message)
	var chunks []string
	for len(runes) > limit {
		split := lastNewline(runes[:limit])
		if split <= 0 {
			split = limit
		}
		chunks = append(chunks, string(runes[:split]))
		rest := strings.TrimLeftFunc(string(runes[split:]), unicode.IsSpace)
		runes = []rune(rest)
	}
	return append(chunks, string(runes))
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

var userMention = regexp.MustCompile(`<@!?(\d{17,20})>`)

// ReplaceMentions turns user mentions into @username using the users the
// message mentions, then strips markdown emphasis and code marks so the text
// can be stored plainly.
func ReplaceMentions(content string, mentions []*discordgo.User) string {
	names := make(map[string]string, len(mentions))
	for _, u := range mentions {
		if u != nil {
			names[u.ID] = u.Username
		}
	}
	content = userMention.ReplaceAllStringFunc(content, func(m string) string {
		id := userMention.FindStringSubmatch(m)[1]
		if name, ok := names[id]; ok {
			return "@" + name
		}
		return "@user"
	})
	return strings.NewReplacer("*", "", "`", "").Replace(content)
}
