// Package catalog indexes the meta indexes of every branch of a repository
// in SQLite so items can be listed and filtered across branches. The JSON
// files stay the source of truth; the catalog is rebuilt from them by Load.
package catalog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// MemoryDSN keeps the catalog in process memory.
const MemoryDSN = ":memory:"

// Source is what the catalog reads from. *repo.Repo satisfies it.
type Source interface {
	ListBranches() ([]string, error)
	BranchEntries(branch string) ([]types.MetaEntry, error)
}

// Item is one catalog row.
type Item struct {
	Branch   string          `json:"branch"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	DataPath string          `json:"data_path"`
	Data     json.RawMessage `json:"data"`
}

// Filter narrows Query. Empty fields match everything.
type Filter struct {
	Branch     string
	Type       string
	NamePrefix string
}

// TypeCount is the number of items of one type on one branch.
type TypeCount struct {
	Branch string `json:"branch"`
	Type   string `json:"type"`
	Count  int    `json:"count"`
}

// LoadResult summarizes one Load.
type LoadResult struct {
	LoadID   string `json:"load_id"`
	Branches int    `json:"branches"`
	Items    int    `json:"items"`
}

// Catalog is a SQLite view over the repository meta indexes.
type Catalog struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens the catalog database at dsn, creating the schema. An empty dsn
// selects MemoryDSN.
func Open(dsn string, log *zap.Logger) (*Catalog, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", dsn, err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating catalog schema: %w", err)
		}
	}
	return &Catalog{db: db, log: log}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Load replaces the catalog contents with the meta entries of every branch
// of src. Loading is transactional: on error the previous contents remain.
func (c *Catalog) Load(src Source) (LoadResult, error) {
	branches, err := src.ListBranches()
	if err != nil {
		return LoadResult{}, fmt.Errorf("listing branches: %w", err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return LoadResult{}, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM items"); err != nil {
		return LoadResult{}, fmt.Errorf("clearing items: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO items (branch, name, type, data_path, data, position)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return LoadResult{}, fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()

	res := LoadResult{LoadID: newLoadID(), Branches: len(branches)}
	for _, branch := range branches {
		entries, err := src.BranchEntries(branch)
		if err != nil {
			return LoadResult{}, fmt.Errorf("reading branch %s: %w", branch, err)
		}
		for i, e := range entries {
			data := string(e.Data)
			if data == "" {
				data = "{}"
			}
			if _, err := stmt.Exec(branch, e.Name, e.Type, e.DataPath, data, i); err != nil {
				return LoadResult{}, fmt.Errorf("inserting %s/%s: %w", branch, e.Name, err)
			}
			res.Items++
		}
	}

	_, err = tx.Exec("INSERT INTO loads (load_id, branches, items, loaded_at) VALUES (?, ?, ?, ?)",
		res.LoadID, res.Branches, res.Items, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return LoadResult{}, fmt.Errorf("recording load: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return LoadResult{}, fmt.Errorf("committing load transaction: %w", err)
	}

	c.log.Debug("catalog loaded",
		zap.String("load_id", res.LoadID),
		zap.Int("branches", res.Branches),
		zap.Int("items", res.Items))
	return res, nil
}

// Query returns the items matching f ordered by branch, then meta index
// order.
func (c *Catalog) Query(f Filter) ([]Item, error) {
	var (
		where []string
		args  []any
	)
	if f.Branch != "" {
		where = append(where, "branch = ?")
		args = append(args, f.Branch)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.NamePrefix != "" {
		// substr and length count characters, not bytes.
		where = append(where, "substr(name, 1, length(?)) = ?")
		args = append(args, f.NamePrefix, f.NamePrefix)
	}

	query := "SELECT branch, name, type, data_path, data FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY branch, position"

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it   Item
			data string
		)
		if err := rows.Scan(&it.Branch, &it.Name, &it.Type, &it.DataPath, &data); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.Data = json.RawMessage(data)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Counts returns item counts grouped by branch and type.
func (c *Catalog) Counts() ([]TypeCount, error) {
	rows, err := c.db.Query(`SELECT branch, type, COUNT(*) FROM items
        GROUP BY branch, type ORDER BY branch, type`)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	defer rows.Close()

	var counts []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Branch, &tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// Loads returns the number of completed loads.
func (c *Catalog) Loads() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM loads").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting loads: %w", err)
	}
	return n, nil
}

func newLoadID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
