package daily

import (
	"fmt"
	"strings"

	"github.com/Soypete/mathy-bot/types"
)

// Tally is the number of votes per answer symbol, excluding the bot's own
// reaction. Only the four option symbols ever appear as keys.
type Tally map[string]int

// NewTally converts raw reaction counts into votes. Unknown symbols are
// ignored. A count that would go negative (the bot reaction was removed by
// someone) is clamped to zero.
func NewTally(raw map[string]int) Tally {
	t := make(Tally, len(types.Letters))
	for symbol, count := range raw {
		if !types.IsOptionSymbol(symbol) {
			continue
		}
		votes := count - 1
		if votes < 0 {
			votes = 0
		}
		t[symbol] = votes
	}
	return t
}

// Total sums all votes.
func (t Tally) Total() int {
	total := 0
	for _, v := range t {
		total += v
	}
	return total
}

// Votes returns the votes for one symbol.
func (t Tally) Votes(symbol string) int {
	return t[symbol]
}

// Breakdown lists present symbols in answer order, one per line.
func (t Tally) Breakdown() string {
	var b strings.Builder
	for _, l := range types.Letters {
		count, ok := t[l.Symbol()]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %d\n", l.Symbol(), count)
	}
	return b.String()
}
