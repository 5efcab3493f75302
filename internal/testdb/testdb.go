package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  code TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uniq_categories_code UNIQUE (code)
);`,
	`
CREATE TABLE IF NOT EXISTS subcategories (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  code TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uniq_subcategories_category_code UNIQUE (category_id, code)
);`,
	`
CREATE TABLE IF NOT EXISTS sequence_counters (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  subcategory_id TEXT NOT NULL,
  next_number INTEGER NOT NULL DEFAULT 1,
  updated_at DATETIME,
  CONSTRAINT uniq_sequence_counters_pair UNIQUE (category_id, subcategory_id)
);`,
	`
CREATE TABLE IF NOT EXISTS titles (
  id TEXT PRIMARY KEY,
  short_code TEXT NOT NULL,
  name TEXT NOT NULL,
  authors TEXT,
  publisher TEXT,
  published_at TEXT,
  language TEXT,
  cover_url TEXT,
  media_type TEXT NOT NULL,
  identifier_type TEXT NOT NULL DEFAULT 'none',
  identifier_value TEXT,
  category_id TEXT NOT NULL,
  subcategory_id TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uniq_titles_short_code UNIQUE (short_code)
);`,
	`
CREATE TABLE IF NOT EXISTS copies (
  id TEXT PRIMARY KEY,
  title_id TEXT NOT NULL,
  copy_code TEXT NOT NULL,
  state TEXT NOT NULL DEFAULT 'in_library',
  home_location TEXT NOT NULL,
  presence_only INTEGER NOT NULL DEFAULT 0,
  note TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uniq_copies_copy_code UNIQUE (copy_code)
);`,
	`
CREATE TABLE IF NOT EXISTS room_loans (
  id TEXT PRIMARY KEY,
  copy_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'requested',
  due_at DATETIME,
  approved_at DATETIME,
  returned_at DATETIME,
  note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
}

// Open returns an isolated in-memory sqlite database with the catalog schema
// applied. Each call gets its own database so parallel tests do not share
// state.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	return conn
}
