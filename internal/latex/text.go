package latex

import (
	"regexp"
	"strings"
)

// lineBreak marks explicit \\ breaks while whitespace is collapsed.
const lineBreak = "\x00"

var (
	commentRe     = regexp.MustCompile(`(?m)(^|[^\\])%.*$`)
	lineBreakRe   = regexp.MustCompile(`\\\\(?:\[[^\]]*\])?`)
	escapedRe     = regexp.MustCompile(`\\([&%$#_])`)
	structuralRe  = regexp.MustCompile(`\\(?:begin|end|usepackage|documentclass|vspace|hspace|setlength|label|ref|includegraphics|newcommand|renewcommand|pagestyle|geometry|hypersetup)\b\*?(?:\s*(?:\[[^\]]*\]|\{[^{}]*\}))*`)
	hrefTargetRe  = regexp.MustCompile(`\\href\{[^{}]*\}`)
	argCommandRe  = regexp.MustCompile(`\\[a-zA-Z]+\*?(?:\[[^\]]*\])?\{([^{}]*)\}`)
	bareCommandRe = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	controlSymRe  = regexp.MustCompile(`\\[^a-zA-Z\x00]`)
	bracesRe      = regexp.MustCompile(`[{}]`)
	spaceRe       = regexp.MustCompile(`[ \t\r\n\f~]+`)
	breakSpaceRe  = regexp.MustCompile(` ?\x00 ?`)
)

// ExtractText reduces LaTeX to plain prose for keyword analysis. Formatting
// commands keep their argument text, structural commands are dropped, \\
// becomes a newline and all other whitespace runs collapse to one space.
func ExtractText(doc string) string {
	text := commentRe.ReplaceAllString(doc, "$1")
	text = lineBreakRe.ReplaceAllString(text, lineBreak)
	text = escapedRe.ReplaceAllString(text, "$1")
	text = structuralRe.ReplaceAllString(text, "")
	text = hrefTargetRe.ReplaceAllString(text, "")
	for {
		next := argCommandRe.ReplaceAllString(text, "$1")
		if next == text {
			break
		}
		text = next
	}
	text = bareCommandRe.ReplaceAllString(text, "")
	text = controlSymRe.ReplaceAllString(text, " ")
	text = bracesRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	text = breakSpaceRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// IsValid reports whether braces in doc are balanced. Escaped braces (\{,
// \}) and everything after an unescaped % on a line are not counted, so a
// literal \{ in prose or a brace in a comment never unbalances a document.
// It does not check anything else.
func IsValid(doc string) bool {
	depth := 0
	for i := 0; i < len(doc); i++ {
		switch doc[i] {
		case '\\':
			i++
		case '%':
			for i < len(doc) && doc[i] != '\n' {
				i++
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
