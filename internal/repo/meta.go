package repo

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/paths"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// MetaIndex maps item names to their descriptors and keeps keys in insertion
// order, so a rewritten index lists items in the order they were first stored.
type MetaIndex struct {
	keys    []string
	entries map[string]json.RawMessage
}

// NewMetaIndex returns an empty index.
func NewMetaIndex() *MetaIndex {
	return &MetaIndex{entries: make(map[string]json.RawMessage)}
}

// Len returns the number of items.
func (m *MetaIndex) Len() int { return len(m.keys) }

// Keys returns the item names in index order.
func (m *MetaIndex) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Raw returns the undecoded descriptor of key.
func (m *MetaIndex) Raw(key string) (json.RawMessage, bool) {
	raw, ok := m.entries[key]
	return raw, ok
}

// Entry decodes the descriptor of key.
func (m *MetaIndex) Entry(key string) (types.MetaEntry, bool, error) {
	raw, ok := m.entries[key]
	if !ok {
		return types.MetaEntry{}, false, nil
	}
	var e types.MetaEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return types.MetaEntry{}, true, fmt.Errorf("%w: meta entry %q: %v", types.ErrCorrupt, key, err)
	}
	return e, true, nil
}

// Entries decodes every descriptor in index order.
func (m *MetaIndex) Entries() ([]types.MetaEntry, error) {
	out := make([]types.MetaEntry, 0, len(m.keys))
	for _, k := range m.keys {
		e, _, err := m.Entry(k)
		if err != nil {
			return nil, err
		}
		if e.Name == "" {
			e.Name = k
		}
		out = append(out, e)
	}
	return out, nil
}

// Set adds or replaces the descriptor of key. A replaced key keeps its
// position.
func (m *MetaIndex) Set(key string, raw json.RawMessage) {
	if m.entries == nil {
		m.entries = make(map[string]json.RawMessage)
	}
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = raw
}

// MarshalJSON encodes the index as a JSON object in key order.
func (m *MetaIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		raw := m.entries[k]
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (m *MetaIndex) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return errors.New("meta index is not valid JSON")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("meta index must be a JSON object")
	}

	idx := NewMetaIndex()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("meta index key %v is not a string", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("meta entry %q: %w", key, err)
		}
		idx.Set(key, raw)
	}
	*m = *idx
	return nil
}

func (r *Repo) metaPath(branch string) string {
	return filepath.Join(r.objectsDir(branch), paths.MetaFileName)
}

// LoadMeta reads the meta index of the active branch. When the file does not
// exist yet an empty index is returned and its directory is created. The
// repository must be initialized.
func (r *Repo) LoadMeta() (*MetaIndex, error) {
	if _, err := r.initializedConfig(); err != nil {
		return nil, err
	}
	path := r.metaPath(r.branch)
	idx := NewMetaIndex()
	found, err := readJSONFile(r.fs, path, idx)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := r.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
	}
	return idx, nil
}

// UpdateMeta loads the whole meta index of the active branch, sets key to
// entry and rewrites the whole file.
func (r *Repo) UpdateMeta(key string, entry types.MetaEntry) error {
	idx, err := r.LoadMeta()
	if err != nil {
		return err
	}
	if len(entry.Data) == 0 {
		entry.Data = json.RawMessage("{}")
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding meta entry %q: %w", key, err)
	}
	idx.Set(key, raw)
	if err := writeJSONFile(r.fs, r.metaPath(r.branch), idx); err != nil {
		return err
	}
	r.log.Debug("meta index updated",
		zap.String("branch", r.branch),
		zap.String("item", key),
		zap.String("type", entry.Type))
	return nil
}

// BranchMeta reads the meta index of any registered branch without creating
// anything. A branch that has stored nothing yields an empty index.
func (r *Repo) BranchMeta(branch string) (*MetaIndex, error) {
	cfg, err := r.initializedConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.HasBranch(branch) {
		return nil, fmt.Errorf("%w: %s", types.ErrBranchNotFound, branch)
	}
	idx := NewMetaIndex()
	if _, err := readJSONFile(r.fs, r.metaPath(branch), idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// BranchEntries returns the decoded meta entries of a branch in index order.
func (r *Repo) BranchEntries(branch string) ([]types.MetaEntry, error) {
	idx, err := r.BranchMeta(branch)
	if err != nil {
		return nil, err
	}
	return idx.Entries()
}
