// Package ats scores how well a resume covers the vocabulary of a job
// description. The score is a plain keyword-containment ratio, not a
// semantic measure.
package ats

import (
	"math"
	"regexp"
	"strings"
)

var (
	technicalRe = regexp.MustCompile(`(?i)\b(?:JavaScript|TypeScript|Python|Java|C\+\+|React|Vue|Angular|Node\.js|AWS|GCP|Azure|Docker|Kubernetes|SQL|NoSQL|MongoDB|PostgreSQL|Redis|GraphQL|REST|API|CI/CD|Git|Agile|Scrum|Machine Learning|AI|ML|Data Science|DevOps|Frontend|Backend|Full-?Stack|Microservices|Cloud|SaaS|B2B|B2C)\b`)
	softSkillRe = regexp.MustCompile(`(?i)\b(?:leadership|communication|problem-solving|analytical|collaborative|self-motivated|detail-oriented|innovative|strategic|cross-functional)\b`)
	wordSplitRe = regexp.MustCompile(`\W+`)
)

// MatchResult is the outcome of comparing a resume against a job description.
type MatchResult struct {
	Score   int      `json:"score"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// ExtractKeywords returns the known technology and soft-skill terms that
// occur in text, lower-cased and deduplicated. Technical terms come first,
// each group in order of first appearance.
func ExtractKeywords(text string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, re := range []*regexp.Regexp{technicalRe, softSkillRe} {
		for _, m := range re.FindAllString(text, -1) {
			kw := strings.ToLower(m)
			if seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}

// Score checks each keyword of jobDescription for case-insensitive substring
// containment in resume. The score is the rounded percentage of keywords
// found, or 0 when the job description has none.
func Score(resume, jobDescription string) MatchResult {
	keywords := ExtractKeywords(jobDescription)
	lower := strings.ToLower(resume)

	res := MatchResult{Matched: []string{}, Missing: []string{}}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			res.Matched = append(res.Matched, kw)
		} else {
			res.Missing = append(res.Missing, kw)
		}
	}
	if len(keywords) > 0 {
		res.Score = int(math.Round(100 * float64(len(res.Matched)) / float64(len(keywords))))
	}
	return res
}

// Tokenize splits text on non-word characters and returns the set of
// lower-cased words longer than two characters.
func Tokenize(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordSplitRe.Split(strings.ToLower(text), -1) {
		if len(w) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

// Similarity is the Jaccard index of the word sets of a and b, 0 when both
// are empty.
func Similarity(a, b string) float64 {
	wa, wb := Tokenize(a), Tokenize(b)
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
