// Package state owns the workspace: the current resume, chat history, job
// description, version history, knowledge base and last ATS result.
// Persistence is delegated to a Persister; only the resume, versions and
// knowledge base outlive the process.
package state

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/knowledge"
)

//go:embed default.tex
var DefaultLatex string

const WelcomeMessage = "I'm your resume engineering agent. Paste a job description and I'll analyze it against your resume, pull relevant experience from your knowledge base, and rewrite your LaTeX to maximize ATS compatibility.\n\n" +
	"I can:\n" +
	"• Parse job requirements and match them to your experience\n" +
	"• Rewrite bullet points using the job's language\n" +
	"• Suggest additions from your knowledge base\n" +
	"• Track keyword matching score\n\n" +
	"Ready when you are."

var ErrNotFound = errors.New("not found")

// ErrConflict is returned by ReplaceLatex when the resume changed since it
// was read.
var ErrConflict = errors.New("resume changed concurrently")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Version is a saved copy of the resume. Versions are kept newest first.
type Version struct {
	ID          string    `json:"id"`
	Latex       string    `json:"latex"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	ATSScore    *int      `json:"atsScore,omitempty"`
}

// Persisted is the part of the workspace that is saved between runs.
type Persisted struct {
	LatexContent  string           `json:"latexContent"`
	Versions      []Version        `json:"versions"`
	KnowledgeBase []knowledge.Item `json:"knowledgeBase"`
}

func (p Persisted) clone() Persisted {
	return Persisted{
		LatexContent:  p.LatexContent,
		Versions:      slices.Clone(p.Versions),
		KnowledgeBase: cloneItems(p.KnowledgeBase),
	}
}

// Snapshot is a copy of the whole workspace.
type Snapshot struct {
	LatexContent    string           `json:"latexContent"`
	Messages        []Message        `json:"messages"`
	JobDescription  string           `json:"jobDescription"`
	Versions        []Version        `json:"versions"`
	KnowledgeBase   []knowledge.Item `json:"knowledgeBase"`
	ATSScore        *int             `json:"atsScore"`
	MatchedKeywords []string         `json:"matchedKeywords"`
}

// Change describes a mutation, for listeners such as event publishers.
type Change struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

const (
	ChangeLatex          = "latex_updated"
	ChangeJobDescription = "job_description_updated"
	ChangeVersionAdded   = "version_added"
	ChangeVersionRestore = "version_restored"
	ChangeVersionDeleted = "version_deleted"
	ChangeKnowledge      = "knowledge_updated"
	ChangeATS            = "ats_updated"
)

type Options struct {
	Log *slog.Logger
	// Seed initialises a workspace that has never been saved.
	Seed Persisted
	// OnChange is called after every successful mutation, outside the lock.
	OnChange func(ctx context.Context, c Change)
}

// Workspace is safe for concurrent use.
type Workspace struct {
	mu        sync.RWMutex
	persister Persister
	log       *slog.Logger
	onChange  func(ctx context.Context, c Change)
	now       func() time.Time

	data     Persisted
	messages []Message
	jd       string
	ats      *ats.MatchResult
}

// DefaultSeed is the resume template and starter knowledge base.
func DefaultSeed() Persisted {
	return Persisted{
		LatexContent:  DefaultLatex,
		Versions:      []Version{},
		KnowledgeBase: knowledge.Defaults(),
	}
}

// New loads the workspace from p, falling back to opts.Seed when nothing has
// been stored yet.
func New(ctx context.Context, p Persister, opts Options) (*Workspace, error) {
	w := &Workspace{
		persister: p,
		log:       opts.Log,
		onChange:  opts.OnChange,
		now:       time.Now,
	}
	if w.log == nil {
		w.log = slog.Default()
	}

	stored, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	if stored != nil {
		w.data = stored.clone()
		w.log.Info("workspace loaded", "versions", len(w.data.Versions), "knowledge_items", len(w.data.KnowledgeBase))
	} else {
		w.data = opts.Seed.clone()
		w.log.Info("workspace seeded", "knowledge_items", len(w.data.KnowledgeBase))
	}
	if w.data.Versions == nil {
		w.data.Versions = []Version{}
	}
	if w.data.KnowledgeBase == nil {
		w.data.KnowledgeBase = []knowledge.Item{}
	}
	w.messages = []Message{w.newMessage(RoleAssistant, WelcomeMessage)}
	return w, nil
}

// mutate applies fn to a copy of the persisted data, saves the copy and
// only then makes it current. A failed save leaves the workspace unchanged.
func (w *Workspace) mutate(ctx context.Context, change Change, fn func(p *Persisted) error) error {
	w.mu.Lock()
	next := w.data.clone()
	if err := fn(&next); err != nil {
		w.mu.Unlock()
		return err
	}
	if err := w.persister.Save(ctx, next); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("save workspace: %w", err)
	}
	w.data = next
	w.mu.Unlock()

	w.notify(ctx, change)
	return nil
}

func (w *Workspace) notify(ctx context.Context, c Change) {
	if w.onChange != nil {
		w.onChange(ctx, c)
	}
}

func (w *Workspace) newMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content, Timestamp: w.now()}
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := Snapshot{
		LatexContent:    w.data.LatexContent,
		Messages:        slices.Clone(w.messages),
		JobDescription:  w.jd,
		Versions:        slices.Clone(w.data.Versions),
		KnowledgeBase:   cloneItems(w.data.KnowledgeBase),
		MatchedKeywords: []string{},
	}
	if w.ats != nil {
		score := w.ats.Score
		s.ATSScore = &score
		s.MatchedKeywords = slices.Clone(w.ats.Matched)
	}
	return s
}

func (w *Workspace) Latex() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.data.LatexContent
}

func (w *Workspace) SetLatex(ctx context.Context, latex string) error {
	return w.mutate(ctx, Change{Kind: ChangeLatex}, func(p *Persisted) error {
		p.LatexContent = latex
		return nil
	})
}

// ReplaceLatex stores latex only if the current resume is still expected.
func (w *Workspace) ReplaceLatex(ctx context.Context, expected, latex string) error {
	return w.mutate(ctx, Change{Kind: ChangeLatex}, func(p *Persisted) error {
		if p.LatexContent != expected {
			return ErrConflict
		}
		p.LatexContent = latex
		return nil
	})
}

func (w *Workspace) JobDescription() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.jd
}

func (w *Workspace) SetJobDescription(ctx context.Context, jd string) {
	w.mu.Lock()
	w.jd = jd
	w.mu.Unlock()
	w.notify(ctx, Change{Kind: ChangeJobDescription})
}

// ATS returns the last stored match result, or nil.
func (w *Workspace) ATS() *ats.MatchResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.ats == nil {
		return nil
	}
	res := *w.ats
	return &res
}

func (w *Workspace) SetATS(ctx context.Context, res *ats.MatchResult) {
	w.mu.Lock()
	if res == nil {
		w.ats = nil
	} else {
		cp := *res
		w.ats = &cp
	}
	w.mu.Unlock()
	w.notify(ctx, Change{Kind: ChangeATS})
}

func (w *Workspace) Messages() []Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.messages)
}

// RecentMessages returns at most the last n messages.
func (w *Workspace) RecentMessages(n int) []Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	start := max(len(w.messages)-n, 0)
	return slices.Clone(w.messages[start:])
}

func (w *Workspace) AddMessage(role Role, content string) Message {
	m := w.newMessage(role, content)
	w.mu.Lock()
	w.messages = append(w.messages, m)
	w.mu.Unlock()
	return m
}

func (w *Workspace) ClearMessages() {
	w.mu.Lock()
	w.messages = []Message{}
	w.mu.Unlock()
}

func (w *Workspace) Versions() []Version {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.data.Versions)
}

// AddVersion saves latex as the newest version.
func (w *Workspace) AddVersion(ctx context.Context, latex, description string, atsScore *int) (Version, error) {
	v := Version{
		ID:          uuid.NewString(),
		Latex:       latex,
		Timestamp:   w.now(),
		Description: description,
	}
	if atsScore != nil {
		score := *atsScore
		v.ATSScore = &score
	}
	err := w.mutate(ctx, Change{Kind: ChangeVersionAdded, ID: v.ID}, func(p *Persisted) error {
		p.Versions = append([]Version{v}, p.Versions...)
		return nil
	})
	if err != nil {
		return Version{}, err
	}
	return v, nil
}

// RestoreVersion makes the version's LaTeX current. The version stays in
// the history.
func (w *Workspace) RestoreVersion(ctx context.Context, id string) (Version, error) {
	var restored Version
	err := w.mutate(ctx, Change{Kind: ChangeVersionRestore, ID: id}, func(p *Persisted) error {
		i := slices.IndexFunc(p.Versions, func(v Version) bool { return v.ID == id })
		if i < 0 {
			return fmt.Errorf("version %s: %w", id, ErrNotFound)
		}
		restored = p.Versions[i]
		p.LatexContent = restored.Latex
		return nil
	})
	return restored, err
}

func (w *Workspace) DeleteVersion(ctx context.Context, id string) error {
	return w.mutate(ctx, Change{Kind: ChangeVersionDeleted, ID: id}, func(p *Persisted) error {
		i := slices.IndexFunc(p.Versions, func(v Version) bool { return v.ID == id })
		if i < 0 {
			return fmt.Errorf("version %s: %w", id, ErrNotFound)
		}
		p.Versions = slices.Delete(p.Versions, i, i+1)
		return nil
	})
}

func (w *Workspace) Knowledge() []knowledge.Item {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneItems(w.data.KnowledgeBase)
}

// AddKnowledge validates items, assigns missing ids and appends them.
func (w *Workspace) AddKnowledge(ctx context.Context, items ...knowledge.Item) ([]knowledge.Item, error) {
	added := make([]knowledge.Item, 0, len(items))
	for _, it := range items {
		it.ID = ""
		if err := knowledge.Validate(&it); err != nil {
			return nil, err
		}
		added = append(added, it)
	}
	err := w.mutate(ctx, Change{Kind: ChangeKnowledge}, func(p *Persisted) error {
		p.KnowledgeBase = append(p.KnowledgeBase, added...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateKnowledge merges the non-empty fields of patch into the item with
// the given id. A nil Tags slice leaves tags unchanged.
func (w *Workspace) UpdateKnowledge(ctx context.Context, id string, patch knowledge.Item) (knowledge.Item, error) {
	var updated knowledge.Item
	err := w.mutate(ctx, Change{Kind: ChangeKnowledge, ID: id}, func(p *Persisted) error {
		i := slices.IndexFunc(p.KnowledgeBase, func(it knowledge.Item) bool { return it.ID == id })
		if i < 0 {
			return fmt.Errorf("knowledge item %s: %w", id, ErrNotFound)
		}
		it := p.KnowledgeBase[i]
		if patch.Type != "" {
			it.Type = patch.Type
		}
		if patch.Title != "" {
			it.Title = patch.Title
		}
		if patch.Content != "" {
			it.Content = patch.Content
		}
		if patch.Tags != nil {
			it.Tags = slices.Clone(patch.Tags)
		}
		if err := knowledge.Validate(&it); err != nil {
			return err
		}
		p.KnowledgeBase[i] = it
		updated = it
		return nil
	})
	return updated, err
}

func (w *Workspace) RemoveKnowledge(ctx context.Context, id string) error {
	return w.mutate(ctx, Change{Kind: ChangeKnowledge, ID: id}, func(p *Persisted) error {
		i := slices.IndexFunc(p.KnowledgeBase, func(it knowledge.Item) bool { return it.ID == id })
		if i < 0 {
			return fmt.Errorf("knowledge item %s: %w", id, ErrNotFound)
		}
		p.KnowledgeBase = slices.Delete(p.KnowledgeBase, i, i+1)
		return nil
	})
}

func cloneItems(items []knowledge.Item) []knowledge.Item {
	if items == nil {
		return nil
	}
	out := make([]knowledge.Item, len(items))
	for i, it := range items {
		it.Tags = slices.Clone(it.Tags)
		out[i] = it
	}
	return out
}
