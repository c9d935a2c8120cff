package validate

import (
	"strings"
	"unicode"
)

// blockedTerms rejects a submission when any of them appears as a whole
// word (or consecutive word sequence) in the title plus artist. The
// matched term is never echoed back to the caller.
var blockedTerms = []string{
	"porn", "porno", "pornhub", "xvideos", "xnxx", "xhamster", "redtube",
	"hentai", "onlyfans", "brazzers", "bangbros", "naughtyamerica",
	"xxx", "sexvideo", "sextape", "sex tape",
	"leaked nudes", "nude video", "naked video",
}

// WordFilter matches denylisted terms against tokenized text. Matching is
// case-insensitive and whole-word: "xxx" inside a longer word does not
// trigger, "sex tape" matches across whitespace and punctuation.
type WordFilter struct {
	words        map[string]struct{}
	phrases      map[string]struct{}
	maxPhraseLen int
}

// NewWordFilter builds a filter from a list of terms. Multi-word terms are
// matched as consecutive token sequences.
func NewWordFilter(terms []string) *WordFilter {
	f := &WordFilter{
		words:   make(map[string]struct{}),
		phrases: make(map[string]struct{}),
	}
	for _, term := range terms {
		tokens := tokenize(term)
		switch len(tokens) {
		case 0:
		case 1:
			f.words[tokens[0]] = struct{}{}
		default:
			f.phrases[strings.Join(tokens, " ")] = struct{}{}
			if len(tokens) > f.maxPhraseLen {
				f.maxPhraseLen = len(tokens)
			}
		}
	}
	return f
}

// Match reports whether the text contains a denylisted term and returns
// the term that matched.
func (f *WordFilter) Match(text string) (string, bool) {
	tokens := tokenize(text)
	for i, token := range tokens {
		if _, ok := f.words[token]; ok {
			return token, true
		}
		for n := 2; n <= f.maxPhraseLen && i+n <= len(tokens); n++ {
			phrase := strings.Join(tokens[i:i+n], " ")
			if _, ok := f.phrases[phrase]; ok {
				return phrase, true
			}
		}
	}
	return "", false
}

// tokenize lowercases the text and splits it into runs of letters and
// digits, discarding everything else.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
