package database

import (
	"database/sql"
	"time"
)

type Workspace struct {
	ID           string
	LatexContent string
	UpdatedAt    time.Time
}

type ResumeVersion struct {
	ID          string
	WorkspaceID string
	Latex       string
	Description string
	AtsScore    sql.NullInt32
	CreatedAt   time.Time
	Position    int32
}

type KnowledgeItem struct {
	ID          string
	WorkspaceID string
	Type        string
	Title       string
	Content     string
	Tags        []string
	Position    int32
}
