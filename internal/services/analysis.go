package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/yungbote/edumentor-backend/internal/types"
)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "have": true, "been": true, "were": true, "they": true,
	"their": true, "this": true, "that": true, "with": true, "from": true,
	"will": true, "would": true, "there": true, "what": true, "about": true,
	"which": true, "when": true, "into": true, "more": true, "other": true,
	"some": true, "such": true, "only": true, "over": true, "also": true,
	"than": true, "then": true, "them": true, "these": true, "those": true,
	"each": true, "between": true, "both": true, "being": true, "because": true,
	"where": true, "while": true, "during": true, "through": true, "most": true,
	"upon": true, "very": true, "after": true, "before": true, "should": true,
	"could": true, "does": true, "doing": true, "itself": true, "within": true,
	"however": true, "therefore": true, "thus": true, "many": true, "must": true,
	"used": true, "using": true, "may": true, "might": true, "often": true,
	"called": true, "known": true, "example": true, "including": true,
}

// extractTopics ranks stopword-filtered words of four or more letters by
// frequency and returns up to max of them, title-cased. Ties break
// alphabetically so the result is deterministic.
func extractTopics(text string, max int) []string {
	counts := wordCounts(text)
	type wc struct {
		word  string
		count int
	}
	ranked := make([]wc, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, wc{w, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})
	if max > len(ranked) {
		max = len(ranked)
	}
	topics := make([]string, 0, max)
	for _, r := range ranked[:max] {
		topics = append(topics, titleCase(r.word))
	}
	return topics
}

// extractKeywords is extractTopics without the casing, used to key short
// answers against reference material.
func extractKeywords(text string, max int) []string {
	counts := wordCounts(text)
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if max > len(words) {
		max = len(words)
	}
	return words[:max]
}

func wordCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if len(w) < 4 || stopwords[w] {
			continue
		}
		counts[w]++
	}
	return counts
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// splitSentences breaks text on terminal punctuation. Good enough for pulling
// leading sentences out of prose chunks; abbreviations will occasionally
// split early.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(b.String())
			if len([]rune(s)) > 3 {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); len([]rune(s)) > 3 {
		out = append(out, s)
	}
	return out
}

func firstSentences(text string, n int) []string {
	s := splitSentences(text)
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// reconstructText rebuilds the normalized document text from its overlapping
// chunks using their rune offsets.
func reconstructText(chunks []types.Chunk) string {
	var b strings.Builder
	prevEnd := 0
	for _, c := range chunks {
		if c.End <= prevEnd {
			continue
		}
		runes := []rune(c.Text)
		skip := prevEnd - c.Start
		if skip < 0 || skip > len(runes) {
			skip = 0
		}
		b.WriteString(string(runes[skip:]))
		prevEnd = c.End
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
