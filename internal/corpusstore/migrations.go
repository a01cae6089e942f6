package corpusstore

import "database/sql"

// Migration is one versioned, idempotent schema upgrade step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Migrations is the append-only ordered list of schema upgrades. Each step
// must be safe to re-run: column additions do not check existence first
// (SQLite has no ALTER TABLE ... ADD COLUMN IF NOT EXISTS); instead the
// error from ALTER TABLE is ignored, following the teacher's migrateAddX
// pattern, and no step ever destroys data.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "create corpus, member, message, name_history tables",
		Up:          migration1InitialSchema,
	},
	{
		Version:     2,
		Description: "add roles column to member, defaulting to an empty list",
		Up:          migration2AddMemberRoles,
	},
	{
		Version:     3,
		Description: "add partial flag to corpus marking aborted or canceled imports",
		Up:          migration3AddCorpusPartialFlag,
	},
	{
		Version:     4,
		Description: "add dangling_reply_platform_id to message for unresolved replies",
		Up:          migration4AddDanglingReplyColumn,
	},
	{
		Version:     5,
		Description: "add catalog_state to meta and an app_state singleton for active corpus selection",
		Up:          migration5AddCatalogState,
	},
}

func migration1InitialSchema(tx *sql.Tx) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS meta (
		corpus_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		platform TEXT NOT NULL,
		chat_type TEXT NOT NULL,
		owner_platform_id TEXT NOT NULL DEFAULT '',
		min_ts INTEGER NOT NULL DEFAULT 0,
		max_ts INTEGER NOT NULL DEFAULT 0,
		schema_version INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS member (
		corpus_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		platform_id TEXT NOT NULL,
		account_name TEXT NOT NULL DEFAULT '',
		group_nickname TEXT NOT NULL DEFAULT '',
		aliases TEXT NOT NULL DEFAULT '[]',
		avatar_ref TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (corpus_id, id)
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_member_corpus_platform ON member(corpus_id, platform_id);

	CREATE TABLE IF NOT EXISTS message (
		corpus_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		sender_id INTEGER NOT NULL,
		ts INTEGER NOT NULL,
		type TEXT NOT NULL,
		content TEXT,
		reply_to_message_id INTEGER,
		platform_message_id TEXT,
		extra TEXT,
		PRIMARY KEY (corpus_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_message_corpus_ts ON message(corpus_id, ts);
	CREATE INDEX IF NOT EXISTS idx_message_corpus_sender ON message(corpus_id, sender_id);
	CREATE INDEX IF NOT EXISTS idx_message_corpus_platform_msg ON message(corpus_id, platform_message_id);

	CREATE TABLE IF NOT EXISTS name_history (
		corpus_id TEXT NOT NULL,
		member_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		start_ts INTEGER NOT NULL,
		end_ts INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_name_history_member ON name_history(corpus_id, member_id);
	`
	_, err := tx.Exec(schema)
	return err
}

func migration2AddMemberRoles(tx *sql.Tx) error {
	// SQLite rejects adding a column that already exists; ignore that case
	// so re-applying this step against a partially-migrated database is safe.
	_, _ = tx.Exec(`ALTER TABLE member ADD COLUMN roles TEXT NOT NULL DEFAULT '[]'`)
	return nil
}

func migration3AddCorpusPartialFlag(tx *sql.Tx) error {
	_, _ = tx.Exec(`ALTER TABLE meta ADD COLUMN partial INTEGER NOT NULL DEFAULT 0`)
	return nil
}

// migration4AddDanglingReplyColumn lets the normalizer preserve a reply's
// original platform id when its target is never resolved (spec.md §4.3:
// "unbound replies remain dangling, preserved as platform id string, not
// silently dropped"), instead of dropping the relation once reply_to_message_id
// stays NULL.
func migration4AddDanglingReplyColumn(tx *sql.Tx) error {
	_, _ = tx.Exec(`ALTER TABLE message ADD COLUMN dangling_reply_platform_id TEXT`)
	return nil
}

// migration5AddCatalogState adds per-corpus UI state (spec.md §4.8: "last
// time filter") as a JSON blob column, mirroring the teacher's JSON-blob-
// plus-indexed-columns storage idiom (store/mongodb.go's ActiveSessionIDs
// map persisted alongside a user's indexed fields), plus a one-row
// singleton table tracking which corpus is currently selected.
func migration5AddCatalogState(tx *sql.Tx) error {
	_, _ = tx.Exec(`ALTER TABLE meta ADD COLUMN catalog_state TEXT NOT NULL DEFAULT '{}'`)
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS app_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			active_corpus_id TEXT
		)`)
	return err
}

// latestVersion returns the highest declared migration version.
func latestVersion() int {
	v := 0
	for _, m := range Migrations {
		if m.Version > v {
			v = m.Version
		}
	}
	return v
}
