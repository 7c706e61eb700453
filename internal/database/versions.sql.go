package database

import (
	"context"
	"database/sql"
	"time"
)

const listVersions = `-- name: ListVersions :many
SELECT id, workspace_id, latex, description, ats_score, created_at, position FROM resume_versions
WHERE workspace_id=$1
ORDER BY position
`

func (q *Queries) ListVersions(ctx context.Context, workspaceID string) ([]ResumeVersion, error) {
	rows, err := q.db.QueryContext(ctx, listVersions, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ResumeVersion
	for rows.Next() {
		var i ResumeVersion
		if err := rows.Scan(
			&i.ID,
			&i.WorkspaceID,
			&i.Latex,
			&i.Description,
			&i.AtsScore,
			&i.CreatedAt,
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

const insertVersion = `-- name: InsertVersion :exec
INSERT INTO resume_versions (id, workspace_id, latex, description, ats_score, created_at, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertVersionParams struct {
	ID          string
	WorkspaceID string
	Latex       string
	Description string
	AtsScore    sql.NullInt32
	CreatedAt   time.Time
	Position    int32
}

func (q *Queries) InsertVersion(ctx context.Context, arg InsertVersionParams) error {
	_, err := q.db.ExecContext(ctx, insertVersion,
		arg.ID,
		arg.WorkspaceID,
		arg.Latex,
		arg.Description,
		arg.AtsScore,
		arg.CreatedAt,
		arg.Position,
	)
	return err
}

const deleteVersions = `-- name: DeleteVersions :exec
DELETE FROM resume_versions WHERE workspace_id=$1
`

func (q *Queries) DeleteVersions(ctx context.Context, workspaceID string) error {
	_, err := q.db.ExecContext(ctx, deleteVersions, workspaceID)
	return err
}
