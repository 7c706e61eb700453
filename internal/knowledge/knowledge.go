// Package knowledge holds reusable resume material (projects, skills,
// experience, achievements) and ranks it against a query.
package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rajarshidattapy/resumeness/internal/ats"
)

// ItemType classifies a knowledge item.
type ItemType string

const (
	TypeProject     ItemType = "project"
	TypeSkill       ItemType = "skill"
	TypeExperience  ItemType = "experience"
	TypeAchievement ItemType = "achievement"
)

// MinScore is the similarity an item must exceed to be returned by Search.
const MinScore = 0.05

// Item is one reusable snippet of resume material.
type Item struct {
	ID      string   `json:"id" yaml:"id"`
	Type    ItemType `json:"type" yaml:"type"`
	Title   string   `json:"title" yaml:"title"`
	Content string   `json:"content" yaml:"content"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case TypeProject, TypeSkill, TypeExperience, TypeAchievement:
		return true
	}
	return false
}

// Validate checks required fields and fills in a missing ID and tag list.
func Validate(it *Item) error {
	it.Title = strings.TrimSpace(it.Title)
	it.Content = strings.TrimSpace(it.Content)
	if it.Title == "" {
		return fmt.Errorf("title is required")
	}
	if it.Content == "" {
		return fmt.Errorf("content is required")
	}
	if !it.Type.Valid() {
		return fmt.Errorf("invalid type %q", it.Type)
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	tags := make([]string, 0, len(it.Tags))
	for _, tag := range it.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	it.Tags = tags
	return nil
}

// SearchText is the text an item is matched on: title, content and tags.
func (it Item) SearchText() string {
	return it.Title + " " + it.Content + " " + strings.Join(it.Tags, " ")
}

// Scored pairs an item with its similarity to a query.
type Scored struct {
	Item  Item    `json:"item"`
	Score float64 `json:"score"`
}

// Rank scores every item against query, highest first. Items with equal
// scores keep their input order.
func Rank(query string, items []Item) []Scored {
	scored := make([]Scored, len(items))
	for i, it := range items {
		scored[i] = Scored{Item: it, Score: ats.Similarity(query, it.SearchText())}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Search returns at most topK items ranked by word-set similarity to query,
// leaving out anything scoring MinScore or less.
func Search(query string, items []Item, topK int) []Item {
	out := []Item{}
	for _, s := range SearchScored(query, items, topK) {
		out = append(out, s.Item)
	}
	return out
}

// SearchScored is Search with the scores attached.
func SearchScored(query string, items []Item, topK int) []Scored {
	ranked := Rank(query, items)
	if topK < 0 {
		topK = 0
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := []Scored{}
	for _, s := range ranked {
		if s.Score > MinScore {
			out = append(out, s)
		}
	}
	return out
}

// Mentioned returns up to limit items whose title or one of whose tags
// occurs in text, compared case-insensitively.
func Mentioned(text string, items []Item, limit int) []Item {
	lower := strings.ToLower(text)
	var out []Item
	for _, it := range items {
		if len(out) >= limit {
			break
		}
		if it.Title != "" && strings.Contains(lower, strings.ToLower(it.Title)) {
			out = append(out, it)
			continue
		}
		for _, tag := range it.Tags {
			if tag != "" && strings.Contains(lower, strings.ToLower(tag)) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
