package catalog

// Schema DDL. The database is rebuilt from the branch meta indexes on every
// Load, so there are no migrations.
const (
	createItems = `CREATE TABLE IF NOT EXISTS items (
    branch TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    data_path TEXT NOT NULL,
    data TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (branch, name)
);`

	createLoads = `CREATE TABLE IF NOT EXISTS loads (
    load_id TEXT PRIMARY KEY,
    branches INTEGER NOT NULL,
    items INTEGER NOT NULL,
    loaded_at TEXT NOT NULL
);`

	createItemsTypeIndex = `CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);`
)

var schemaStatements = []string{
	createItems,
	createLoads,
	createItemsTypeIndex,
}
