// Package matching scores a resume against a job posting by keyword overlap.
package matching

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the minimum rune length of a keyword.
const MinTokenLength = 3

// stopWords are dropped from both sides before matching: common English
// function words plus filler that appears in nearly every job posting.
var stopWords = toSet(
	// function words
	"and", "the", "for", "with", "you", "are", "have", "will", "this", "that",
	"from", "our", "your", "their", "they", "about", "which", "what", "who",
	"how", "can", "not", "but", "all", "also", "more", "than", "into", "has",
	"its", "was", "were", "been", "each", "any", "per", "via", "etc",
	"whom", "would", "should", "could", "must", "may", "might", "other",
	"some", "such", "both", "across", "within", "over", "under", "out",
	"like", "just", "very", "well", "one", "two", "three",
	// posting filler
	"looking", "seeking", "hiring", "join", "team", "role", "job", "work",
	"working", "engineer", "engineers", "developer", "developers", "experience",
	"experienced", "candidate", "candidates", "position", "years", "year",
	"strong", "knowledge", "ability", "able", "required", "requirements",
	"preferred", "plus", "bonus", "ideal", "ideally", "responsibilities",
	"opportunity", "company", "new", "use", "using", "used", "good", "great",
	"excellent", "high", "get", "set", "day", "including", "include",
	"understanding", "familiarity", "familiar", "proficiency", "proficient",
	"skills", "environment", "help", "make", "based",
)

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// IsStopWord reports whether w is filtered out during tokenization.
func IsStopWord(w string) bool {
	return stopWords[strings.ToLower(w)]
}

// Keywords tokenizes text into distinct lowercase keywords in order of first
// appearance. Letters, digits, '+', '#' and '.' are word characters so
// "c++", "c#" and "node.js" survive; trailing dots are trimmed. Tokens
// shorter than MinTokenLength runes and stop words are dropped.
func Keywords(text string) []string {
	seen := make(map[string]bool)
	var out []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if utf8.RuneCountInString(w) < MinTokenLength || stopWords[w] || seen[w] {
			return
		}
		seen[w] = true
		out = append(out, w)
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// KeywordSet is Keywords as a set.
func KeywordSet(text string) map[string]bool {
	kws := Keywords(text)
	set := make(map[string]bool, len(kws))
	for _, k := range kws {
		set[k] = true
	}
	return set
}
