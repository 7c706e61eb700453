package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rajarshidattapy/resumeness/internal/database"
	"github.com/rajarshidattapy/resumeness/internal/knowledge"
)

// PostgresStore keeps one workspace in PostgreSQL. Each save rewrites the
// workspace's versions and knowledge items inside a transaction.
type PostgresStore struct {
	db          *sql.DB
	q           *database.Queries
	workspaceID string
}

func NewPostgresStore(db *sql.DB, workspaceID string) *PostgresStore {
	return &PostgresStore{db: db, q: database.New(db), workspaceID: workspaceID}
}

func (s *PostgresStore) Load(ctx context.Context) (*Persisted, error) {
	ws, err := s.q.GetWorkspace(ctx, s.workspaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	rows, err := s.q.ListVersions(ctx, s.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	versions := make([]Version, 0, len(rows))
	for _, r := range rows {
		v := Version{ID: r.ID, Latex: r.Latex, Description: r.Description, Timestamp: r.CreatedAt}
		if r.AtsScore.Valid {
			score := int(r.AtsScore.Int32)
			v.ATSScore = &score
		}
		versions = append(versions, v)
	}

	kbRows, err := s.q.ListKnowledgeItems(ctx, s.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list knowledge items: %w", err)
	}
	items := make([]knowledge.Item, 0, len(kbRows))
	for _, r := range kbRows {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		items = append(items, knowledge.Item{
			ID:      r.ID,
			Type:    knowledge.ItemType(r.Type),
			Title:   r.Title,
			Content: r.Content,
			Tags:    tags,
		})
	}

	return &Persisted{LatexContent: ws.LatexContent, Versions: versions, KnowledgeBase: items}, nil
}

func (s *PostgresStore) Save(ctx context.Context, p Persisted) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	q := s.q.WithTx(tx)

	if err := q.UpsertWorkspace(ctx, database.UpsertWorkspaceParams{ID: s.workspaceID, LatexContent: p.LatexContent}); err != nil {
		return fmt.Errorf("upsert workspace: %w", err)
	}

	if err := q.DeleteVersions(ctx, s.workspaceID); err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}
	for i, v := range p.Versions {
		arg := database.InsertVersionParams{
			ID:          v.ID,
			WorkspaceID: s.workspaceID,
			Latex:       v.Latex,
			Description: v.Description,
			CreatedAt:   v.Timestamp,
			Position:    int32(i),
		}
		if v.ATSScore != nil {
			arg.AtsScore = sql.NullInt32{Int32: int32(*v.ATSScore), Valid: true}
		}
		if err := q.InsertVersion(ctx, arg); err != nil {
			return fmt.Errorf("insert version %s: %w", v.ID, err)
		}
	}

	if err := q.DeleteKnowledgeItems(ctx, s.workspaceID); err != nil {
		return fmt.Errorf("delete knowledge items: %w", err)
	}
	for i, it := range p.KnowledgeBase {
		tags := it.Tags
		if tags == nil {
			tags = []string{}
		}
		err := q.InsertKnowledgeItem(ctx, database.InsertKnowledgeItemParams{
			ID:          it.ID,
			WorkspaceID: s.workspaceID,
			Type:        string(it.Type),
			Title:       it.Title,
			Content:     it.Content,
			Tags:        tags,
			Position:    int32(i),
		})
		if err != nil {
			return fmt.Errorf("insert knowledge item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}
