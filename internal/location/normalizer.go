package location

import (
	"sort"
	"strings"

	"github.com/dayplan/itinerary-backend-go/internal/knowledge"
)

// Normalizer canonicalizes free-text location mentions against the area
// knowledge base. Normalize runs an ordered chain of matchers; the first hit
// wins, and unmatched input passes through title-cased. All methods are
// read-only and safe for concurrent use.
type Normalizer struct {
	kb       *knowledge.Base
	matchers []matcher
}

// matcher is one strategy in the normalization chain
type matcher interface {
	match(input string) (string, bool)
}

// aliases maps known colloquialisms to canonical area names
var aliases = map[string]string{
	"downtown boston":   "Downtown",
	"downtown crossing": "Downtown",
	"the north end":     "North End",
	"little italy":      "North End",
	"the seaport":       "Seaport",
	"seaport district":  "Seaport",
	"the fenway":        "Fenway",
	"fenway kenmore":    "Fenway",
	"harvard":           "Harvard Square",
	"kendall":           "Kendall Square",
	"mit":               "Kendall Square",
	"jp":                "Jamaica Plain",
	"southie":           "South Boston",
	"the waterfront":    "Waterfront",
}

// stopwords are metro-wide tokens that appear in nearly every address and
// must not drive matching on their own
var stopwords = map[string]bool{
	"boston":        true,
	"ma":            true,
	"mass":          true,
	"massachusetts": true,
	"usa":           true,
	"the":           true,
	"in":            true,
	"near":          true,
	"at":            true,
}

// NewNormalizer builds the matcher chain over the knowledge base
func NewNormalizer(kb *knowledge.Base) *Normalizer {
	return &Normalizer{
		kb: kb,
		matchers: []matcher{
			aliasMatcher{},
			exactMatcher{kb: kb},
			overlapMatcher{kb: kb, minScore: 1},
		},
	}
}

// Normalize canonicalizes a location mention. Falls through the chain:
// alias table, exact name match, token-overlap/substring match, then
// title-cased pass-through. No match is not an error. Idempotent: a
// canonical name normalizes to itself.
func (n *Normalizer) Normalize(text string) string {
	input := fold(text)
	if input == "" {
		return ""
	}
	for _, m := range n.matchers {
		if name, ok := m.match(input); ok {
			return name
		}
	}
	return titleCase(input)
}

// verifyTypes is the allow-list of candidate types that may stand in for
// their containing area when the candidate's name carries the area token
// (a hotel or stadium named after its neighborhood, for example)
var verifyTypes = map[string]bool{
	"lodging":            true,
	"stadium":            true,
	"landmark":           true,
	"tourist_attraction": true,
}

// Verify reports whether a place-search candidate plausibly belongs to the
// requested location. True when the normalized request's significant tokens
// all appear in (or are within edit distance 1 of) the candidate's name or
// address, or when the candidate is an allow-listed stand-in type whose name
// carries the area token. A request consisting only of metro-wide tokens
// ("Boston") constrains nothing and accepts any candidate.
func (n *Normalizer) Verify(requested, candidateName, candidateAddress string, candidateTypes []string) bool {
	raw := tokens(fold(n.Normalize(requested)))
	if len(raw) == 0 {
		return false
	}
	want := significant(raw)
	if len(want) == 0 {
		return true
	}
	have := tokens(fold(candidateName + " " + candidateAddress))
	if containsAll(have, want) {
		return true
	}
	nameTokens := tokens(fold(candidateName))
	for _, t := range candidateTypes {
		if verifyTypes[strings.ToLower(t)] && containsAny(nameTokens, want) {
			return true
		}
	}
	return false
}

// Confidence scores a candidate against the requested location on [0,1].
// Verified candidates start at 0.6 plus a share for token coverage;
// unverified ones only get partial-overlap credit. The venue resolver ranks
// candidates by this score.
func (n *Normalizer) Confidence(requested, candidateName, candidateAddress string, candidateTypes []string) float64 {
	want := significant(tokens(fold(n.Normalize(requested))))
	if len(want) == 0 {
		if n.Verify(requested, candidateName, candidateAddress, candidateTypes) {
			return 0.6
		}
		return 0
	}
	have := tokens(fold(candidateName + " " + candidateAddress))
	covered := 0
	for _, w := range want {
		if containsToken(have, w) {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(want))
	if n.Verify(requested, candidateName, candidateAddress, candidateTypes) {
		return 0.6 + 0.4*coverage
	}
	return 0.4 * coverage
}

// SuggestSimilar returns knowledge-base area names ordered by similarity to
// the input, for disambiguation after a failed verification. May be empty.
func (n *Normalizer) SuggestSimilar(text string) []string {
	want := significant(tokens(fold(text)))
	if len(want) == 0 {
		return nil
	}
	type scored struct {
		name  string
		score int
	}
	var hits []scored
	for _, a := range n.kb.All() {
		s := overlapScore(want, tokens(fold(a.Name)))
		if s > 0 {
			hits = append(hits, scored{name: a.Name, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > 5 {
		hits = hits[:5]
	}
	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.name
	}
	return names
}

// aliasMatcher resolves known colloquialisms
type aliasMatcher struct{}

func (aliasMatcher) match(input string) (string, bool) {
	name, ok := aliases[input]
	return name, ok
}

// exactMatcher resolves exact, case-insensitive area names
type exactMatcher struct {
	kb *knowledge.Base
}

func (m exactMatcher) match(input string) (string, bool) {
	if a, ok := m.kb.Get(input); ok {
		return a.Name, true
	}
	return "", false
}

// overlapMatcher resolves by token overlap and substring containment,
// accepting the best-scoring area at or above minScore
type overlapMatcher struct {
	kb       *knowledge.Base
	minScore int
}

func (m overlapMatcher) match(input string) (string, bool) {
	want := significant(tokens(input))
	best := ""
	bestScore := 0
	for _, a := range m.kb.All() {
		name := fold(a.Name)
		score := overlapScore(want, tokens(name))
		// Full containment counts for the whole area name
		if strings.Contains(input, name) {
			if s := len(tokens(name)); s > score {
				score = s
			}
		}
		if score > bestScore {
			best, bestScore = a.Name, score
		}
	}
	if bestScore >= m.minScore && best != "" {
		return best, true
	}
	return "", false
}

// overlapScore counts matching significant tokens
func overlapScore(want, have []string) int {
	score := 0
	for _, w := range want {
		if containsToken(have, w) {
			score++
		}
	}
	return score
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	})
}

// significant drops stopwords and very short tokens
func significant(ts []string) []string {
	var out []string
	for _, t := range ts {
		if len(t) < 2 || stopwords[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !containsToken(have, w) {
			return false
		}
	}
	return true
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		if containsToken(have, w) {
			return true
		}
	}
	return false
}

// containsToken allows an edit distance of 1 for tokens of 5+ characters to
// absorb minor misspellings
func containsToken(have []string, w string) bool {
	for _, h := range have {
		if h == w {
			return true
		}
		if len(w) >= 5 && editDistanceAtMostOne(h, w) {
			return true
		}
	}
	return false
}

func editDistanceAtMostOne(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		a, b, la, lb = b, a, lb, la
	}
	if lb-la > 1 {
		return false
	}
	i, j, edits := 0, 0, 0
	for i < la && j < lb {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if la == lb {
			i++
		}
		j++
	}
	return edits+(lb-j)+(la-i) <= 1
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
