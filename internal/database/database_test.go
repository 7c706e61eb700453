package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range strings.Split(Schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		assert.Contains(t, stmt, "IF NOT EXISTS", stmt)
	}
}

func TestSchemaCoversQueries(t *testing.T) {
	for _, table := range []string{"workspaces", "resume_versions", "knowledge_items"} {
		assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	for _, q := range []string{getWorkspace, upsertWorkspace, listVersions, insertVersion, listKnowledgeItems, insertKnowledgeItem} {
		assert.True(t, strings.HasPrefix(q, "-- name: "), q)
	}
}
