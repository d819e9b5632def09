package catalog

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/aimrepo/internal/repo"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

type fakeSource struct {
	branches []string
	entries  map[string][]types.MetaEntry
	err      error
}

func (f *fakeSource) ListBranches() ([]string, error) { return f.branches, nil }

func (f *fakeSource) BranchEntries(branch string) ([]types.MetaEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[branch], nil
}

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleSource() *fakeSource {
	return &fakeSource{
		branches: []string{"master", "dev"},
		entries: map[string][]types.MetaEntry{
			"master": {
				{Name: "loss", Type: "metrics", DataPath: "metrics", Data: json.RawMessage(`{}`)},
				{Name: "acc", Type: "metrics", DataPath: "metrics"},
				{Name: "ckpt-1", Type: "models", DataPath: "models/ckpt-1", Data: json.RawMessage(`{"epoch":1}`)},
			},
			"dev": {
				{Name: "loss", Type: "metrics", DataPath: "metrics", Data: json.RawMessage(`{}`)},
			},
		},
	}
}

func TestCatalog_LoadAndQuery(t *testing.T) {
	c := openTestCatalog(t)

	res, err := c.Load(sampleSource())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Branches)
	assert.Equal(t, 4, res.Items)
	assert.NotEmpty(t, res.LoadID)

	all, err := c.Query(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "dev", all[0].Branch)
	assert.Equal(t, []string{"loss", "acc", "ckpt-1"}, []string{all[1].Name, all[2].Name, all[3].Name})
	assert.JSONEq(t, `{}`, string(all[2].Data), "missing data is stored as an empty object")

	models, err := c.Query(Filter{Type: "models"})
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "models/ckpt-1", models[0].DataPath)
	assert.JSONEq(t, `{"epoch":1}`, string(models[0].Data))

	devLoss, err := c.Query(Filter{Branch: "dev", NamePrefix: "lo"})
	require.NoError(t, err)
	require.Len(t, devLoss, 1)
	assert.Equal(t, "loss", devLoss[0].Name)

	none, err := c.Query(Filter{NamePrefix: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none)

	none, err = c.Query(Filter{NamePrefix: "lossy"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalog_Counts(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.Load(sampleSource())
	require.NoError(t, err)

	counts, err := c.Counts()
	require.NoError(t, err)
	assert.Equal(t, []TypeCount{
		{Branch: "dev", Type: "metrics", Count: 1},
		{Branch: "master", Type: "metrics", Count: 2},
		{Branch: "master", Type: "models", Count: 1},
	}, counts)
}

func TestCatalog_ReloadReplaces(t *testing.T) {
	c := openTestCatalog(t)
	src := sampleSource()
	_, err := c.Load(src)
	require.NoError(t, err)

	src.branches = []string{"master"}
	src.entries["master"] = src.entries["master"][:1]
	res, err := c.Load(src)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Items)

	all, err := c.Query(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	n, err := c.Loads()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCatalog_FailedLoadKeepsPrevious(t *testing.T) {
	c := openTestCatalog(t)
	src := sampleSource()
	_, err := c.Load(src)
	require.NoError(t, err)

	boom := errors.New("boom")
	src.err = boom
	_, err = c.Load(src)
	assert.ErrorIs(t, err, boom)

	all, err := c.Query(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	n, err := c.Loads()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCatalog_FromRepository(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work", 0o755))
	r, err := repo.New("/work", repo.WithFs(fsys))
	require.NoError(t, err)
	ok, err := r.Init()
	require.NoError(t, err)
	require.True(t, ok)

	_, err = r.StoreFile("loss", types.CategoryMetrics, 0.5, repo.ModeAppend, nil)
	require.NoError(t, err)
	require.NoError(t, r.CreateBranch("dev"))
	require.NoError(t, r.CheckoutBranch("dev"))
	_, err = r.StoreModel("ckpt", "net", 2, nil, nil, types.CategoryModels)
	require.NoError(t, err)

	c := openTestCatalog(t)
	res, err := c.Load(r)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Items)

	items, err := c.Query(Filter{Branch: "dev"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ckpt", items[0].Name)
	assert.Equal(t, "models", items[0].Type)
	assert.Equal(t, "models/ckpt", items[0].DataPath)
	assert.JSONEq(t, `{"name":"net","epoch":2,"meta":null,"model":null}`, string(items[0].Data))
}

func TestCatalog_QueryNonASCIIPrefix(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.Load(&fakeSource{
		branches: []string{"master"},
		entries: map[string][]types.MetaEntry{
			"master": {
				{Name: "éval-loss", Type: "metrics", DataPath: "metrics"},
				{Name: "évaluation", Type: "metrics", DataPath: "metrics"},
				{Name: "eval-acc", Type: "metrics", DataPath: "metrics"},
				{Name: "損失", Type: "metrics", DataPath: "metrics"},
			},
		},
	})
	require.NoError(t, err)

	items, err := c.Query(Filter{NamePrefix: "éval"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "éval-loss", items[0].Name)
	assert.Equal(t, "évaluation", items[1].Name)

	items, err = c.Query(Filter{NamePrefix: "éval-"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "éval-loss", items[0].Name)

	items, err = c.Query(Filter{NamePrefix: "損"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "損失", items[0].Name)
}
