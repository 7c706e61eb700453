package agent

import (
	"fmt"
	"strings"

	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/knowledge"
)

const SystemPrompt = `You are an expert resume engineer AI agent. Your job is to help tailor resumes to match job descriptions for maximum ATS (Applicant Tracking System) compatibility.

CRITICAL RULES:
1. When asked to modify a resume, output ONLY pure LaTeX code. No markdown, no explanations, no comments.
2. Preserve the exact LaTeX template structure - only modify content, not formatting commands.
3. Never break LaTeX syntax.
4. Use the exact keywords and phrases from the job description.
5. Quantify achievements whenever possible.
6. Keep bullet points concise (one line each).
7. Focus on relevance - remove or de-emphasize irrelevant experience.

When analyzing a job description:
- Extract key requirements, skills, and keywords
- Identify the most important qualifications
- Note the company's language and tone

When rewriting resume content:
- Mirror the job description's language
- Prioritize relevant experience
- Add metrics and specific achievements
- Use strong action verbs`

// DefaultInstructions drive a rewrite when the caller gives none.
const DefaultInstructions = "Rewrite the resume to maximize ATS compatibility with the job description. Use the exact language from the JD. Add relevant items from knowledge base if appropriate."

const analyzeSystemPrompt = "You are an expert resume engineer. Analyze job descriptions professionally."

func analyzePrompt(jd string) string {
	return `Analyze this job description and extract:
1. Key Requirements (must-haves)
2. Nice-to-haves
3. Important Keywords for ATS
4. Company Culture Indicators
5. Recommended Resume Focus Areas

Job Description:
` + jd + `

Provide a structured analysis.`
}

const rewriteSystemPrompt = `You are an expert resume engineer specializing in LaTeX resume formatting. You understand complex LaTeX templates and custom commands.

CRITICAL RULES:
1. Output ONLY the LaTeX content for the specific section being modified
2. Preserve ALL LaTeX commands, custom commands, and formatting exactly as in the original
3. Never break LaTeX syntax - maintain proper brace matching and command structure
4. Only modify the actual content text, not the LaTeX formatting commands
5. Use keywords from the job description naturally in the content
6. Keep the same structure and number of items as the original unless specifically instructed otherwise`

// sectionBrief picks the rewrite focus for a section heading.
func sectionBrief(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "experience") || strings.Contains(lower, "professional"):
		return `Rewrite the Professional Experience section to better match the job description. Focus on:
- Emphasizing relevant technologies and skills mentioned in the job posting
- Quantifying achievements where possible
- Using action verbs that match the job requirements
- Prioritizing experience most relevant to the target role`
	case strings.Contains(lower, "project"):
		return `Optimize the Projects section to highlight relevant technical skills and experiences. Focus on:
- Projects that demonstrate skills needed for the target role
- Technologies and tools mentioned in the job description
- Quantifiable results and impacts
- Relevance to the company's domain`
	case strings.Contains(lower, "skill") || strings.Contains(lower, "technical"):
		return `Refine the Skills section to prioritize competencies mentioned in the job description. Focus on:
- Moving relevant skills to the top
- Adding missing skills that are required for the role
- Grouping related skills logically
- Using exact terminology from the job posting`
	case strings.Contains(lower, "education"):
		return `Review the Education section for relevance to the target role. Focus on:
- Highlighting relevant coursework or specializations
- Including relevant certifications or training
- Maintaining academic achievements that demonstrate capability`
	case strings.Contains(lower, "achievement") || strings.Contains(lower, "certification"):
		return `Curate achievements and certifications that are most relevant to the job. Focus on:
- Industry-recognized certifications
- Achievements demonstrating required skills
- Quantifiable accomplishments
- Relevance to the target role's requirements`
	default:
		return "Optimize this section to better align with the job description requirements. Focus on relevance, quantifiable achievements, and using terminology from the job posting."
	}
}

func knowledgeContext(items []knowledge.Item) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nRelevant experience from knowledge base:")
	for _, it := range items {
		fmt.Fprintf(&sb, "\n- %s (%s): %s", it.Title, it.Type, it.Content)
	}
	return sb.String()
}

func rewritePrompt(name, body, jd, kbContext, instructions string) string {
	return fmt.Sprintf(`%s

Job Description:
%s
%s

Current %s section:
%s

Instructions: %s

IMPORTANT: Output ONLY the modified LaTeX code for this section. Preserve the exact LaTeX formatting and commands. Do not include section headers or surrounding LaTeX structure.`,
		sectionBrief(name), jd, kbContext, name, body, instructions)
}

func workspaceContext(jd, resumeText string, kb []knowledge.Item) string {
	var sb strings.Builder
	sb.WriteString("Workspace context.\n\n")
	if jd != "" {
		sb.WriteString("Job description:\n")
		sb.WriteString(jd)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("No job description has been provided yet.\n\n")
	}
	sb.WriteString("Current resume (plain text):\n")
	sb.WriteString(resumeText)
	if len(kb) > 0 {
		sb.WriteString("\n\nKnowledge base titles: ")
		titles := make([]string, len(kb))
		for i, it := range kb {
			titles[i] = it.Title
		}
		sb.WriteString(strings.Join(titles, ", "))
	}
	return sb.String()
}

// Chat replies.

const (
	msgNeedJobDescription = "Please paste a job description first so I can tailor your resume accordingly."
	msgRewriteConflict    = "Your resume was edited while I was rewriting it, so I kept your edits. Say \"rewrite\" to try again."
	msgNoKnowledgeMatches = "No matching items found in your knowledge base. Try adding more projects, skills, or achievements."
	msgUndo               = "You can restore any previous version from the Version History in the sidebar. Click on a version to preview and restore it."
	msgDemoRewrite        = "To enable AI-powered resume rewriting, please add your OpenRouter API key. For now, you can manually edit the LaTeX in the editor using the analysis I provided."
	msgDemoDefault        = "I understand you want to optimize your resume. Here's what I can do:\n\n" +
		"1. **Paste a job description** - I'll extract key requirements\n" +
		"2. **Say \"search KB\"** - I'll find relevant experience\n" +
		"3. **Say \"proceed\"** - I'll modify your LaTeX (requires API key)\n\n" +
		"For full AI capabilities, add your OpenRouter API key in the environment variables."
)

func analysisReply(analysis string, res ats.MatchResult) string {
	return fmt.Sprintf("%s\n\n**Current ATS Match: %d%%**\n\nMatched keywords: %s\nMissing keywords: %s\n\nSay \"proceed\" to let me rewrite your resume.",
		analysis, res.Score, strings.Join(res.Matched, ", "), strings.Join(res.Missing, ", "))
}

func demoAnalysisReply(res ats.MatchResult) string {
	return "I've analyzed the job description.\n\n" +
		"**Key Requirements Detected:**\n" +
		"• Software engineering experience\n" +
		"• React/TypeScript proficiency\n" +
		"• Cloud platform experience (AWS/GCP)\n" +
		"• Team collaboration skills\n\n" +
		fmt.Sprintf("**Current ATS Match: %d%%**\n\n", res.Score) +
		fmt.Sprintf("Matched: %s\n\n", strings.Join(res.Matched, ", ")) +
		"Say \"proceed\" to let me rewrite your resume, or add your OpenRouter API key for full AI capabilities."
}

func rewriteReply(before, after int) string {
	return fmt.Sprintf("Done! I've rewritten your resume to match the job description.\n\n"+
		"**New ATS Score: %d%%** (was %d%%)\n\n"+
		"Changes made:\n"+
		"• Updated language to mirror JD\n"+
		"• Emphasized relevant skills\n"+
		"• Incorporated relevant KB items\n\n"+
		"Review the changes in the editor. Say \"undo\" to restore the previous version.", after, before)
}

func searchReply(items []knowledge.Item) string {
	if len(items) == 0 {
		return msgNoKnowledgeMatches
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("**%d. %s** (%s)\n%s...", i+1, it.Title, it.Type, clip(it.Content, 150))
	}
	return fmt.Sprintf("Found %d relevant items:\n\n%s\n\nWould you like me to incorporate any of these into your resume?",
		len(items), strings.Join(parts, "\n\n"))
}

// clip returns at most n runes of s.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
