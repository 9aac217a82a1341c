package modelhost

import (
	"regexp"
	"strings"
)

// specialTokens matches the T5 sentinel and control tokens a runtime may
// leave in decoded text when it does not skip special tokens itself.
var specialTokens = regexp.MustCompile(`<pad>|</s>|<s>|<unk>|<extra_id_\d+>`)

// StripSpecialTokens removes special tokens and collapses the whitespace
// they leave behind.
func StripSpecialTokens(text string) string {
	s := specialTokens.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(s), " ")
}
