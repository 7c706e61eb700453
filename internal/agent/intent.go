package agent

import (
	"strings"
	"unicode/utf8"
)

// Intent is what a chat message asks the agent to do.
type Intent string

const (
	IntentAnalyzeJD Intent = "analyze_jd"
	IntentRewrite   Intent = "rewrite"
	IntentSearchKB  Intent = "search_kb"
	IntentUndo      Intent = "undo"
	IntentChat      Intent = "chat"
)

// A message longer than this is taken to be a pasted job description.
const jobDescriptionMinLen = 200

type intentRule struct {
	intent   Intent
	keywords []string
	longText bool
}

// intentRules are checked in order; the first match wins.
var intentRules = []intentRule{
	{intent: IntentAnalyzeJD, keywords: []string{"job description", "jd"}, longText: true},
	{intent: IntentRewrite, keywords: []string{"proceed", "rewrite", "modify"}},
	{intent: IntentSearchKB, keywords: []string{"knowledge", "kb", "search"}},
	{intent: IntentUndo, keywords: []string{"undo", "revert"}},
}

// DetectIntent classifies message by keyword containment on its lower-cased
// text. Messages matching no rule are IntentChat.
func DetectIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, r := range intentRules {
		if r.longText && utf8.RuneCountInString(message) > jobDescriptionMinLen {
			return r.intent
		}
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return IntentChat
}
