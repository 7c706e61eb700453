package database

import (
	"context"
)

const getWorkspace = `-- name: GetWorkspace :one
SELECT id, latex_content, updated_at FROM workspaces WHERE id=$1
`

func (q *Queries) GetWorkspace(ctx context.Context, id string) (Workspace, error) {
	row := q.db.QueryRowContext(ctx, getWorkspace, id)
	var i Workspace
	err := row.Scan(&i.ID, &i.LatexContent, &i.UpdatedAt)
	return i, err
}

const upsertWorkspace = `-- name: UpsertWorkspace :exec
INSERT INTO workspaces (id, latex_content, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (id) DO UPDATE
SET latex_content=EXCLUDED.latex_content, updated_at=NOW()
`

type UpsertWorkspaceParams struct {
	ID           string
	LatexContent string
}

func (q *Queries) UpsertWorkspace(ctx context.Context, arg UpsertWorkspaceParams) error {
	_, err := q.db.ExecContext(ctx, upsertWorkspace, arg.ID, arg.LatexContent)
	return err
}
