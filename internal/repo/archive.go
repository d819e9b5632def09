package repo

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ArchiveDir writes every file below dirPath into a new zip archive at
// archivePath, naming entries by their slash separated path relative to
// dirPath, and then deletes dirPath. dirPath is only deleted after the
// archive has been written and closed successfully; on failure the partial
// archive is removed and dirPath is left as it was.
func ArchiveDir(fsys afero.Fs, archivePath, dirPath string) error {
	isDir, err := afero.IsDir(fsys, dirPath)
	if err != nil {
		return fmt.Errorf("archiving %s: %w", dirPath, err)
	}
	if !isDir {
		return fmt.Errorf("archiving %s: not a directory", dirPath)
	}

	out, err := fsys.Create(archivePath)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", archivePath, err)
	}
	zw := zip.NewWriter(out)

	werr := afero.Walk(fsys, dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}
		return addArchiveEntry(fsys, zw, path, filepath.ToSlash(rel), info)
	})

	// Close in reverse order of creation, keeping the first error.
	cerr := zw.Close()
	if ferr := out.Close(); cerr == nil {
		cerr = ferr
	}
	if err := errors.Join(werr, cerr); err != nil {
		_ = fsys.Remove(archivePath)
		return fmt.Errorf("writing archive %s: %w", archivePath, err)
	}

	if err := fsys.RemoveAll(dirPath); err != nil {
		return fmt.Errorf("removing %s: %w", dirPath, err)
	}
	return nil
}

func addArchiveEntry(fsys afero.Fs, zw *zip.Writer, path, name string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	src, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	return nil
}
