package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		msg  string
		want Intent
	}{
		{"Here is the Job Description for the role", IntentAnalyzeJD},
		{"new JD attached", IntentAnalyzeJD},
		{strings.Repeat("a", 201), IntentAnalyzeJD},
		{strings.Repeat("a", 200), IntentChat},
		{"Proceed", IntentRewrite},
		{"please rewrite the summary", IntentRewrite},
		{"modify my resume", IntentRewrite},
		{"search my knowledge base", IntentSearchKB},
		{"check the KB", IntentSearchKB},
		{"undo", IntentUndo},
		{"revert that change", IntentUndo},
		{"rewrite then undo", IntentRewrite},
		{"hello", IntentChat},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectIntent(tc.msg), tc.msg)
	}
}
