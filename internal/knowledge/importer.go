package knowledge

import (
	"strings"

	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/document"
	"github.com/rajarshidattapy/resumeness/internal/latex"
	"github.com/rajarshidattapy/resumeness/internal/snippet"
)

const maxImportTags = 8

// labelTypes maps resume headings to the item type their snippets become.
var labelTypes = map[string]ItemType{
	"Professional Experience": TypeExperience,
	"Experience":              TypeExperience,
	"Projects":                TypeProject,
	"Skills":                  TypeSkill,
	"Technical Skills":        TypeSkill,
	"Education":               TypeAchievement,
	"Achievements":            TypeAchievement,
	"Certifications":          TypeAchievement,
}

// FromTree turns a parsed document into knowledge items. Each snippet's type
// comes from the nearest heading that names a resume section, falling back
// to fallback. Tags are the job-description keywords found in the snippet.
func FromTree(tree *document.Tree, fallback ItemType, cfg snippet.Config) []Item {
	if !fallback.Valid() {
		fallback = TypeExperience
	}

	var items []Item
	for _, s := range snippet.Split(tree, cfg) {
		it := Item{
			Type:    typeFor(s.Breadcrumb, fallback),
			Title:   importTitle(s, tree.Title),
			Content: s.Text,
			Tags:    ats.ExtractKeywords(s.Text),
		}
		if len(it.Tags) > maxImportTags {
			it.Tags = it.Tags[:maxImportTags]
		}
		if err := Validate(&it); err != nil {
			continue
		}
		items = append(items, it)
	}
	return items
}

func typeFor(breadcrumb []string, fallback ItemType) ItemType {
	for i := len(breadcrumb) - 1; i >= 0; i-- {
		if label, ok := latex.Label(breadcrumb[i]); ok {
			return labelTypes[label]
		}
	}
	return fallback
}

func importTitle(s snippet.Snippet, docTitle string) string {
	if t := s.Title(); t != "" && !strings.HasPrefix(t, "Page ") {
		return t
	}
	words := strings.Fields(s.Text)
	if len(words) > 8 {
		words = words[:8]
	}
	title := strings.Join(words, " ")
	if title == "" {
		title = docTitle
	}
	return strings.TrimRight(title, ".,;:")
}
