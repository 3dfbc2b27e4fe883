package batch

import "strings"

// sentenceEdits counts the sentence-level edit distance between two
// guidelines: insertions, deletions, and substitutions of whole
// sentences each cost one. The reflection stage is asked to change at
// most one sentence; the runner rejects updates that drift further.
func sentenceEdits(before, after string) int {
	a := sentences(before)
	b := sentences(after)

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, min(prev[j]+1, curr[j-1]+1))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// sentences splits free text on sentence boundaries, normalizing
// whitespace and trailing periods.
func sentences(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ". ") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "."))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
