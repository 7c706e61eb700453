package database

import (
	"context"

	"github.com/lib/pq"
)

const listKnowledgeItems = `-- name: ListKnowledgeItems :many
SELECT id, workspace_id, type, title, content, tags, position FROM knowledge_items
WHERE workspace_id=$1
ORDER BY position
`

func (q *Queries) ListKnowledgeItems(ctx context.Context, workspaceID string) ([]KnowledgeItem, error) {
	rows, err := q.db.QueryContext(ctx, listKnowledgeItems, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []KnowledgeItem
	for rows.Next() {
		var i KnowledgeItem
		if err := rows.Scan(
			&i.ID,
			&i.WorkspaceID,
			&i.Type,
			&i.Title,
			&i.Content,
			pq.Array(&i.Tags),
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertKnowledgeItem = `-- name: InsertKnowledgeItem :exec
INSERT INTO knowledge_items (id, workspace_id, type, title, content, tags, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertKnowledgeItemParams struct {
	ID          string
	WorkspaceID string
	Type        string
	Title       string
	Content     string
	Tags        []string
	Position    int32
}

func (q *Queries) InsertKnowledgeItem(ctx context.Context, arg InsertKnowledgeItemParams) error {
	_, err := q.db.ExecContext(ctx, insertKnowledgeItem,
		arg.ID,
		arg.WorkspaceID,
		arg.Type,
		arg.Title,
		arg.Content,
		pq.Array(arg.Tags),
		arg.Position,
	)
	return err
}

const deleteKnowledgeItems = `-- name: DeleteKnowledgeItems :exec
DELETE FROM knowledge_items WHERE workspace_id=$1
`

func (q *Queries) DeleteKnowledgeItems(ctx context.Context, workspaceID string) error {
	_, err := q.db.ExecContext(ctx, deleteKnowledgeItems, workspaceID)
	return err
}
