package llm

import (
	"regexp"
	"strings"
)

var codeBlockRe = regexp.MustCompile("(?s)^```(?:[a-zA-Z]+)?\\s*(.*?)\\s*```$")

// StripCodeBlock removes a Markdown code fence wrapped around a whole reply.
func StripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions)`,
)

// ContainsInjection reports whether model output carries phrases that try
// to steer a later reader of the text, the resume screener included.
func ContainsInjection(s string) bool {
	return injectionPattern.MatchString(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
