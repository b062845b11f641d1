package memory

import "unicode/utf8"

// estimateTokens approximates the token count of text. Two runes per
// token is a workable average across English prose and CJK text; the
// budget check only needs the right order of magnitude.
func estimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 2
}

func estimateMessages(msgs []Message) int {
	var total int
	for _, m := range msgs {
		total += estimateTokens(m.Content)
	}
	return total
}
