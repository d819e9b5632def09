package repo

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

func TestMetaIndex_KeepsOrder(t *testing.T) {
	var idx MetaIndex
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":{"name":"zeta"},"alpha":{"name":"alpha"},"mid":{}}`), &idx))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, idx.Keys())

	idx.Set("alpha", json.RawMessage(`{"name":"alpha","type":"metrics"}`))
	idx.Set("new", json.RawMessage(`{"name":"new"}`))
	assert.Equal(t, []string{"zeta", "alpha", "mid", "new"}, idx.Keys())

	out, err := json.Marshal(&idx)
	require.NoError(t, err)
	assert.Equal(t,
		`{"zeta":{"name":"zeta"},"alpha":{"name":"alpha","type":"metrics"},"mid":{},"new":{"name":"new"}}`,
		string(out))

	entries, err := idx.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "mid", entries[2].Name, "missing name falls back to the key")
}

func TestMetaIndex_RejectsNonObject(t *testing.T) {
	for _, doc := range []string{`[]`, `"x"`, `{"a":`, `12`} {
		var idx MetaIndex
		assert.Error(t, idx.UnmarshalJSON([]byte(doc)), doc)
	}
}

func TestMeta_UpdateAcrossWrites(t *testing.T) {
	r, fsys := newTestRepo(t)

	_, err := r.StoreFile("zeta", types.CategoryMetrics, 1, ModeAppend, nil)
	require.NoError(t, err)
	_, err = r.StoreFile("alpha", types.CategoryMetrics, 1, ModeAppend, nil)
	require.NoError(t, err)
	_, err = r.StoreFile("zeta", types.CategoryMetrics, 2, ModeAppend, map[string]int{"n": 2})
	require.NoError(t, err)

	idx, err := r.LoadMeta()
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, idx.Keys())
	e, _, err := idx.Entry("zeta")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(e.Data), "rewriting an item replaces its entry")

	assert.Contains(t, readFile(t, fsys, "/work/.aim/master/objects/meta.json"), `"zeta"`)
}

func TestMeta_LoadMissingCreatesDirectoryOnly(t *testing.T) {
	r, fsys := newTestRepo(t)
	require.NoError(t, fsys.RemoveAll("/work/.aim/master/objects"))

	idx, err := r.LoadMeta()
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())

	ok, err := afero.DirExists(fsys, "/work/.aim/master/objects")
	require.NoError(t, err)
	assert.True(t, ok)
	exists, err := afero.Exists(fsys, "/work/.aim/master/objects/meta.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMeta_Corrupt(t *testing.T) {
	r, fsys := newTestRepo(t)
	require.NoError(t, afero.WriteFile(fsys, "/work/.aim/master/objects/meta.json", []byte("not json"), 0o644))

	_, err := r.LoadMeta()
	assert.ErrorIs(t, err, types.ErrCorrupt)

	_, err = r.StoreFile("loss", types.CategoryMetrics, 1, ModeAppend, nil)
	assert.ErrorIs(t, err, types.ErrCorrupt)
}

func TestMeta_BranchMeta(t *testing.T) {
	r, fsys := newTestRepo(t)
	require.NoError(t, r.CreateBranch("dev"))

	idx, err := r.BranchMeta("dev")
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	exists, err := afero.Exists(fsys, "/work/.aim/dev/objects/meta.json")
	require.NoError(t, err)
	assert.False(t, exists, "reading another branch creates nothing")

	_, err = r.BranchMeta("missing")
	assert.ErrorIs(t, err, types.ErrBranchNotFound)
}
