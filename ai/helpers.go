package ai

import (
	"regexp"
	"strings"
)

// RedactedOwner replaces the owner id wherever the model repeats it.
const RedactedOwner = "`redacted`"

var backtickedMention = regexp.MustCompile("`<@(\\d{17,20})>`")

// CleanResponse strips chat template tokens, hides the owner id and unwraps
// user mentions the model put in inline code so Discord renders them.
func CleanResponse(resp, ownerID string) string {
	resp = strings.ReplaceAll(resp, "<|im_start|>", "")
	resp = strings.ReplaceAll(resp, "<|im_end|>", "")
	if ownerID != "" {
		resp = strings.ReplaceAll(resp, ownerID, RedactedOwner)
	}
	resp = backtickedMention.ReplaceAllString(resp, "<@$1>")
	return strings.TrimSpace(resp)
}
