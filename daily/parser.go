package daily

import (
	"regexp"
	"strings"

	"github.com/Soypete/mathy-bot/types"
)

// ProblemHeader opens every generated problem. Anything the model writes
// before it is chatter and gets dropped.
const ProblemHeader = "📘 **Daily Math Challenge**"

var (
	answerMarker = regexp.MustCompile(`(?i)Correct Answer:[ \t]*([A-D])\b`)

	// answerLine is the whole line holding the marker, decorations included.
	answerLine = regexp.MustCompile(`(?im)^[^\n]*Correct Answer:[ \t]*[A-D]\b[^\n]*(?:\n|$)`)
)

// ParseProblem extracts the answer letter and removes the line holding the
// marker from the displayable text. A missing marker is not an error: the letter is empty and
// the text is returned trimmed.
func ParseProblem(raw string) (string, types.Letter) {
	match := answerMarker.FindStringSubmatch(raw)
	if match == nil {
		return strings.TrimSpace(raw), ""
	}
	letter := types.Letter(strings.ToUpper(match[1]))
	text := answerLine.ReplaceAllString(raw, "")
	return strings.TrimSpace(text), letter
}

// TrimToHeader drops any preamble before ProblemHeader.
func TrimToHeader(raw string) string {
	idx := strings.Index(raw, ProblemHeader)
	if idx == -1 {
		return raw
	}
	return strings.TrimLeft(raw[idx:], " \t\r\n")
}
