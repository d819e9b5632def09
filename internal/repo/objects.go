package repo

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// WriteMode selects how StoreFile combines new content with a data file.
type WriteMode string

// Write modes.
const (
	ModeAppend    WriteMode = "a"
	ModeOverwrite WriteMode = "w"
)

// ParseWriteMode accepts "a"/"append" and "w"/"overwrite".
func ParseWriteMode(s string) (WriteMode, error) {
	switch strings.ToLower(s) {
	case "a", "append":
		return ModeAppend, nil
	case "w", "overwrite":
		return ModeOverwrite, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrInvalidMode, s)
	}
}

// StoredPath locates a stored object. Path is relative to the branch object
// tree and uses forward slashes.
type StoredPath struct {
	Path    string `json:"path"`
	AbsPath string `json:"abs_path"`
}

// ModelPaths are the locations a caller needs to finish a checkpoint: where
// to write the weights, the checkpoint directory, and the archive that
// ArchiveDir would produce beside it.
type ModelPaths struct {
	ModelPath   string `json:"model_path"`
	DirPath     string `json:"dir_path"`
	ArchivePath string `json:"zip_path"`
}

// StoreFile appends content to the JSON array stored under name in the
// category directory (ModeAppend) or replaces the array with [content]
// (ModeOverwrite). Every call rewrites the meta entry for name with data as
// its payload; nil data is recorded as an empty object.
//
// The data file and the meta index are written independently; a failure
// between the two leaves the data file updated and the index stale.
func (r *Repo) StoreFile(name string, cat types.Category, content any, mode WriteMode, data any) (StoredPath, error) {
	if _, err := r.initializedConfig(); err != nil {
		return StoredPath{}, err
	}
	if mode != ModeAppend && mode != ModeOverwrite {
		return StoredPath{}, fmt.Errorf("%w: %q", types.ErrInvalidMode, mode)
	}
	if err := validateObjectName(name, false); err != nil {
		return StoredPath{}, err
	}
	catDir, err := cat.Dir()
	if err != nil {
		return StoredPath{}, err
	}
	value, err := json.Marshal(content)
	if err != nil {
		return StoredPath{}, fmt.Errorf("encoding content of %q: %w", name, err)
	}
	payload, err := encodePayload(data)
	if err != nil {
		return StoredPath{}, fmt.Errorf("encoding data of %q: %w", name, err)
	}

	dir := filepath.Join(r.ObjectsDir(), filepath.FromSlash(catDir))
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return StoredPath{}, fmt.Errorf("creating %s: %w", dir, err)
	}
	dataPath := filepath.Join(dir, name)

	var values []json.RawMessage
	if _, err := readJSONFile(r.fs, dataPath, &values); err != nil {
		return StoredPath{}, err
	}
	switch mode {
	case ModeAppend:
		values = append(values, value)
	case ModeOverwrite:
		values = []json.RawMessage{value}
	}
	if err := writeJSONFile(r.fs, dataPath, values); err != nil {
		return StoredPath{}, err
	}

	err = r.UpdateMeta(name, types.MetaEntry{
		Name:     name,
		Type:     cat.Type(),
		Data:     payload,
		DataPath: catDir,
	})
	if err != nil {
		return StoredPath{}, err
	}

	r.log.Debug("object stored",
		zap.String("branch", r.branch),
		zap.String("name", name),
		zap.Stringer("category", cat),
		zap.String("mode", string(mode)),
		zap.Int("values", len(values)))
	return StoredPath{Path: path.Join(catDir, name), AbsPath: dataPath}, nil
}

// StoreImage returns where the image name belongs below media/images and
// creates its directory. It writes no image bytes; the caller writes them to
// AbsPath. When recordInIndex is set a meta entry typed after cat is stored.
func (r *Repo) StoreImage(name string, cat types.Category, recordInIndex bool) (StoredPath, error) {
	if _, err := r.initializedConfig(); err != nil {
		return StoredPath{}, err
	}
	if _, err := cat.Dir(); err != nil {
		return StoredPath{}, err
	}
	if err := validateObjectName(name, true); err != nil {
		return StoredPath{}, err
	}
	relDir := path.Join(types.MediaDir, types.ImagesDir)
	absPath := filepath.Join(r.ObjectsDir(), filepath.FromSlash(relDir), filepath.FromSlash(name))
	if err := r.fs.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return StoredPath{}, fmt.Errorf("creating %s: %w", filepath.Dir(absPath), err)
	}

	if recordInIndex {
		err := r.UpdateMeta(name, types.MetaEntry{
			Name:     name,
			Type:     cat.Type(),
			DataPath: relDir,
		})
		if err != nil {
			return StoredPath{}, err
		}
	}
	return StoredPath{Path: path.Join(relDir, name), AbsPath: absPath}, nil
}

// StoreModelFile creates the checkpoint directory and returns the path the
// caller writes the raw weights to. The meta index is not touched.
func (r *Repo) StoreModelFile(checkpoint string, cat types.Category) (string, error) {
	_, dir, err := r.checkpointDir(checkpoint, cat)
	if err != nil {
		return "", err
	}
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return filepath.Join(dir, ModelFileName), nil
}

// StoreModel creates the checkpoint directory, writes its model.json
// descriptor and records the checkpoint in the meta index. The weights file
// itself is written by the caller to ModelPath.
func (r *Repo) StoreModel(checkpoint, name string, epoch int, metaInfo, modelInfo any, cat types.Category) (ModelPaths, error) {
	catDir, dir, err := r.checkpointDir(checkpoint, cat)
	if err != nil {
		return ModelPaths{}, err
	}
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return ModelPaths{}, fmt.Errorf("creating %s: %w", dir, err)
	}

	desc := types.ModelDescriptor{Name: name, Epoch: epoch, Model: modelInfo}
	if err := writeJSONFile(r.fs, filepath.Join(dir, ModelDescFileName), desc); err != nil {
		return ModelPaths{}, err
	}

	payload, err := json.Marshal(types.CheckpointData{
		Name:  name,
		Epoch: epoch,
		Meta:  metaInfo,
		Model: modelInfo,
	})
	if err != nil {
		return ModelPaths{}, fmt.Errorf("encoding checkpoint %q: %w", checkpoint, err)
	}
	err = r.UpdateMeta(checkpoint, types.MetaEntry{
		Name:     checkpoint,
		Type:     cat.Type(),
		Data:     payload,
		DataPath: path.Join(catDir, checkpoint),
	})
	if err != nil {
		return ModelPaths{}, err
	}

	r.log.Debug("checkpoint stored",
		zap.String("branch", r.branch),
		zap.String("checkpoint", checkpoint),
		zap.Int("epoch", epoch))
	return ModelPaths{
		ModelPath:   filepath.Join(dir, ModelFileName),
		DirPath:     dir,
		ArchivePath: r.archivePath(dir),
	}, nil
}

// ArchiveCheckpoint packages the checkpoint directory into <checkpoint>.aim
// beside it and removes the directory. It returns the archive path.
func (r *Repo) ArchiveCheckpoint(checkpoint string, cat types.Category) (string, error) {
	_, dir, err := r.checkpointDir(checkpoint, cat)
	if err != nil {
		return "", err
	}
	archive := r.archivePath(dir)
	if err := ArchiveDir(r.fs, archive, dir); err != nil {
		return "", err
	}
	r.log.Info("checkpoint archived",
		zap.String("branch", r.branch),
		zap.String("checkpoint", checkpoint),
		zap.String("archive", archive))
	return archive, nil
}

// checkpointDir resolves the checkpoint directory of an initialized
// repository.
func (r *Repo) checkpointDir(checkpoint string, cat types.Category) (catDir, dir string, err error) {
	if _, err := r.initializedConfig(); err != nil {
		return "", "", err
	}
	if err := validateObjectName(checkpoint, false); err != nil {
		return "", "", err
	}
	catDir, err = cat.Dir()
	if err != nil {
		return "", "", err
	}
	return catDir, filepath.Join(r.ObjectsDir(), filepath.FromSlash(catDir), checkpoint), nil
}

func (r *Repo) archivePath(checkpointDir string) string {
	return checkpointDir + "." + ArchiveExt
}

func encodePayload(data any) (json.RawMessage, error) {
	if data == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(data)
}

// validateObjectName rejects names that would escape the category directory.
// nested allows slash separated sub paths.
func validateObjectName(name string, nested bool) error {
	if name == "" || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", types.ErrInvalidName, name)
	}
	if !nested && strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q must not contain path separators", types.ErrInvalidName, name)
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == "." || part == ".." {
			return fmt.Errorf("%w: %q", types.ErrInvalidName, name)
		}
	}
	if name == "." || name == ".." || strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q", types.ErrInvalidName, name)
	}
	return nil
}
