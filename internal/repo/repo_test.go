package repo

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// newTestRepo initializes a repository at /work on an in-memory filesystem.
func newTestRepo(t *testing.T, opts ...Option) (*Repo, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work", 0o755))
	r, err := New("/work", append([]Option{WithFs(fsys)}, opts...)...)
	require.NoError(t, err)
	ok, err := r.Init()
	require.NoError(t, err)
	require.True(t, ok)
	return r, fsys
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestRepo_Init(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r, fsys := newTestRepo(t, WithLogger(zap.New(core)))

	assert.Equal(t, "/work/.aim", r.Path())
	assert.Equal(t, "/work", r.Root())
	assert.Equal(t, types.DefaultBranch, r.Branch())

	assert.JSONEq(t,
		`{"remotes":[],"branches":[{"name":"master"}],"active_branch":"master"}`,
		readFile(t, fsys, "/work/.aim/config.json"))

	for _, dir := range []string{"/work/.aim/master/objects", "/work/.aim/logs"} {
		ok, err := afero.DirExists(fsys, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}

	assert.Equal(t, 1, logs.FilterMessage("repository initialized").Len())
	assert.Equal(t, 1, logs.FilterMessage("branch created").Len())
}

func TestRepo_InitTwice(t *testing.T) {
	r, fsys := newTestRepo(t)
	before := readFile(t, fsys, "/work/.aim/config.json")

	ok, err := r.Init()
	assert.ErrorIs(t, err, types.ErrRepoExists)
	assert.False(t, ok)
	assert.Equal(t, before, readFile(t, fsys, "/work/.aim/config.json"))
}

func TestRepo_InitNotCreatable(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/work", 0o755))

	r, err := New("/work", WithFs(afero.NewReadOnlyFs(base)))
	require.NoError(t, err)
	ok, err := r.Init()
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := afero.Exists(base, "/work/.aim")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepo_InitMissingParent(t *testing.T) {
	r, err := New("/nowhere", WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)
	ok, err := r.Init()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepo_ReopenKeepsActiveBranch(t *testing.T) {
	r, fsys := newTestRepo(t)
	require.NoError(t, r.CreateBranch("dev"))
	require.NoError(t, r.CheckoutBranch("dev"))

	again, err := New("/work", WithFs(fsys))
	require.NoError(t, err)
	assert.Equal(t, "dev", again.Branch())
	assert.Equal(t, "/work/.aim/dev/objects", again.ObjectsDir())
}

func TestRepo_Find(t *testing.T) {
	_, fsys := newTestRepo(t)
	require.NoError(t, fsys.MkdirAll("/work/src/pkg", 0o755))
	require.NoError(t, fsys.MkdirAll("/other", 0o755))

	r, found, err := Find("/work/src/pkg", WithFs(fsys))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/work", r.Root())

	r, found, err = Find("/other", WithFs(fsys))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, r)
}

func TestRepo_CorruptConfig(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work/.aim", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/work/.aim/config.json", []byte("{\"branches\": ["), 0o644))

	_, err := New("/work", WithFs(fsys))
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
	assert.ErrorIs(t, err, types.ErrCorrupt)
}

func TestRepo_UninitializedOperations(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work", 0o755))
	r, err := New("/work", WithFs(fsys))
	require.NoError(t, err)

	assert.ErrorIs(t, r.CreateBranch("dev"), types.ErrNoRepository)
	assert.ErrorIs(t, r.CheckoutBranch("master"), types.ErrNoRepository)
	assert.ErrorIs(t, r.AddRemote("origin", "https://example.com/aim"), types.ErrNoRepository)

	_, err = r.StoreFile("loss", types.CategoryMetrics, 0.5, ModeAppend, nil)
	assert.ErrorIs(t, err, types.ErrNoRepository)
	_, err = r.StoreImage("cats/1.png", types.CategoryImages, true)
	assert.ErrorIs(t, err, types.ErrNoRepository)
	_, err = r.StoreModelFile("ckpt", types.CategoryModels)
	assert.ErrorIs(t, err, types.ErrNoRepository)
	_, err = r.StoreModel("ckpt", "net", 1, nil, nil, types.CategoryModels)
	assert.ErrorIs(t, err, types.ErrNoRepository)
	_, err = r.ArchiveCheckpoint("ckpt", types.CategoryModels)
	assert.ErrorIs(t, err, types.ErrNoRepository)
	_, err = r.LoadMeta()
	assert.ErrorIs(t, err, types.ErrNoRepository)
	assert.ErrorIs(t, r.UpdateMeta("loss", types.MetaEntry{Name: "loss"}), types.ErrNoRepository)

	branches, err := r.ListBranches()
	require.NoError(t, err)
	assert.Empty(t, branches)

	exists, err := afero.Exists(fsys, "/work/.aim")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err := r.Init()
	require.NoError(t, err, "a rejected write must not block initialization")
	assert.True(t, ok)
	_, err = r.StoreFile("loss", types.CategoryMetrics, 0.5, ModeAppend, nil)
	require.NoError(t, err)
}

func TestRepo_StoreAfterRemove(t *testing.T) {
	r, fsys := newTestRepo(t)
	require.NoError(t, r.Remove())

	_, err := r.StoreFile("loss", types.CategoryMetrics, 0.5, ModeAppend, nil)
	assert.ErrorIs(t, err, types.ErrNoRepository)
	exists, err := afero.Exists(fsys, "/work/.aim")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepo_ActiveBranchNotRegistered(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work/.aim", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/work/.aim/config.json",
		[]byte(`{"remotes":[],"branches":[{"name":"master"}],"active_branch":"ghost"}`), 0o644))

	_, err := New("/work", WithFs(fsys))
	assert.ErrorIs(t, err, types.ErrInvalidConfig)

	exists, err := afero.Exists(fsys, "/work/.aim/ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepo_Remove(t *testing.T) {
	r, fsys := newTestRepo(t)
	require.NoError(t, r.Remove())

	exists, err := r.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = afero.Exists(fsys, "/work/.aim")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err := r.Init()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepo_ListFiles(t *testing.T) {
	r, _ := newTestRepo(t)
	files, err := r.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"/work/.aim/config.json"}, files)

	_, err = r.StoreFile("loss", types.CategoryMetrics, 0.1, ModeAppend, nil)
	require.NoError(t, err)

	files, err = r.ListBranchFiles(types.DefaultBranch)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/work/.aim/master/objects/meta.json",
		"/work/.aim/master/objects/metrics/loss",
	}, files)

	_, err = r.ListBranchFiles("nope")
	assert.ErrorIs(t, err, types.ErrBranchNotFound)
}

func TestRepo_OpenLog(t *testing.T) {
	r, fsys := newTestRepo(t)
	for _, line := range []string{"one\n", "two\n"} {
		f, err := r.OpenLog()
		require.NoError(t, err)
		_, err = f.WriteString(line)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	assert.Equal(t, "one\ntwo\n", readFile(t, fsys, "/work/.aim/logs/aim.log"))
}

func TestRepo_ProjectName(t *testing.T) {
	r, fsys := newTestRepo(t)

	_, err := r.ProjectName()
	assert.ErrorIs(t, err, types.ErrInvalidConfig)

	require.NoError(t, r.SetProjectName("mnist"))
	name, err := r.ProjectName()
	require.NoError(t, err)
	assert.Equal(t, "mnist", name)

	var cfg types.Config
	require.NoError(t, json.Unmarshal([]byte(readFile(t, fsys, "/work/.aim/config.json")), &cfg))
	assert.Equal(t, "mnist", cfg.ProjectName)
}

func TestRepo_Remotes(t *testing.T) {
	r, fsys := newTestRepo(t)

	require.NoError(t, r.AddRemote("origin", "https://example.com/aim"))
	assert.ErrorIs(t, r.AddRemote("origin", "https://example.com/other"), types.ErrRemoteExists)
	assert.ErrorIs(t, r.AddRemote("bad", "not a url"), types.ErrInvalidRemote)
	assert.ErrorIs(t, r.AddRemote("", "https://example.com"), types.ErrInvalidRemote)

	url, found, err := r.RemoteURL("origin")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.com/aim", url)

	_, found, err = r.RemoteURL("upstream")
	require.NoError(t, err)
	assert.False(t, found)

	reopened, err := New("/work", WithFs(fsys))
	require.NoError(t, err)
	remotes, err := reopened.Remotes()
	require.NoError(t, err)
	assert.Equal(t, []types.Remote{{Name: "origin", URL: "https://example.com/aim"}}, remotes)

	require.NoError(t, r.RemoveRemote("origin"))
	assert.ErrorIs(t, r.RemoveRemote("origin"), types.ErrRemoteNotFound)
	remotes, err = r.Remotes()
	require.NoError(t, err)
	assert.Empty(t, remotes)
}
