package repo

import (
	"errors"
	"fmt"
	"io/fs"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

// readJSONFile decodes the JSON document at path into v. A missing file
// returns found=false and no error. Parse failures wrap types.ErrCorrupt.
func readJSONFile(fsys afero.Fs, path string, v any) (found bool, err error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("%w: %s: %v", types.ErrCorrupt, path, err)
	}
	return true, nil
}

// writeJSONFile replaces the file at path with the encoding of v.
// Not atomic: a crash mid-write can leave a truncated file.
func writeJSONFile(fsys afero.Fs, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
