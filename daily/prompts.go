package daily

import (
	"fmt"
	"strings"
)

const problemPrompt = `Your job:
✅ Generate a unique, engaging math problem suitable for high school students (class 11) that encourages critical thinking.
✅ Avoid repetition or common textbook-style phrasing.
✅ Format it like:

` + ProblemHeader + `

_Problem_: ...
Correct Answer: <correct_option eg A, B, C, D>
✅ Include 4 options at the end vertically and in seperate inline code blocks.

Style rules:
– Use Gen Z humor and goofy slang.
– Be accurate, but never boring.
– Use Discord formatting: **bold**, ` + "`inline code`" + `, and code blocks.
– NEVER be formal. NEVER be dry. NEVER be a textbook.
– Keep it under 60 words.

Main Rule:
– Be completely related to math.
`

// buildProblemPrompt appends the previous problem so the model does not repeat it.
func buildProblemPrompt(previous string) string {
	if strings.TrimSpace(previous) == "" {
		return problemPrompt
	}
	return problemPrompt + "\nDo NOT repeat or closely paraphrase yesterday's problem:\n" + previous + "\n"
}

func buildSummaryPrompt(problem, scoreCard string) string {
	return fmt.Sprintf(`%s

%s

Roast them if bad or solve the problem. Keep under 1000 chars.`, problem, scoreCard)
}
