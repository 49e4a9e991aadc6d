package daily

import (
	"context"
	"fmt"
	"strings"

	"github.com/Soypete/mathy-bot/types"
)

const (
	// NoVotesMessage is posted instead of a generated summary when nobody voted.
	NoVotesMessage = "No votes data available for midnight summary."
	// NoActiveProblemMessage answers the votes command when nothing was posted.
	NoActiveProblemMessage = "No active daily problem message found."
	// NoVotesYetMessage answers the votes command before anyone reacted.
	NoVotesYetMessage = "No votes yet!"
)

// Summary is the outcome of composing the daily vote summary.
type Summary struct {
	// Text is the message to post.
	Text string
	// Breakdown is the raw score card the text was generated from.
	Breakdown string
	// NoVotes is set when every option had zero votes; Text is NoVotesMessage.
	NoVotes bool
}

// Composer writes the scored summary, delegating the wording to a Generator.
type Composer struct {
	gen Generator
}

func NewComposer(gen Generator) *Composer {
	return &Composer{gen: gen}
}

// Compose never calls the generator when all counts are zero.
func (c *Composer) Compose(ctx context.Context, problem types.DailyProblem, tally Tally) (Summary, error) {
	card := scoreCard(problem.Option(), tally)
	if tally.Total() == 0 {
		return Summary{Text: NoVotesMessage, Breakdown: card, NoVotes: true}, nil
	}

	text, err := c.gen.Generate(ctx, buildSummaryPrompt(problem.ProblemText, card))
	if err != nil {
		return Summary{}, fmt.Errorf("error generating vote summary: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = card
	}
	return Summary{Text: text, Breakdown: card}, nil
}

func scoreCard(option string, tally Tally) string {
	var b strings.Builder
	b.WriteString("📊 **Daily problem voting summary:**\n")
	fmt.Fprintf(&b, "Total votes: %d\n", tally.Total())
	if option != "" {
		fmt.Fprintf(&b, "Correct votes (%s): %d\n", option, tally.Votes(option))
	} else {
		b.WriteString("Correct votes: no answer key\n")
	}
	b.WriteString("Votes breakdown:\n")
	b.WriteString(tally.Breakdown())
	return b.String()
}

// Standings formats the live votes for the votes command.
func Standings(option string, tally Tally) string {
	var b strings.Builder
	b.WriteString("**Current votes:**\n")
	for _, l := range types.Letters {
		count, ok := tally[l.Symbol()]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s : %d\n", l.Symbol(), count)
	}
	if option != "" {
		fmt.Fprintf(&b, "\n✅ Correct option %s has %d/%d votes.", option, tally.Votes(option), tally.Total())
	}
	return b.String()
}
