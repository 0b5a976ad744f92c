// Package archive packs an export directory into a single uncompressed tar file.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const partSuffix = ".part"

// ArchiveDirectory writes the contents of srcDir to dstPath as a tar archive.
// Entry names are relative to srcDir. The archive is written to a temporary
// ".part" file first, so dstPath only exists once the archive is complete.
func ArchiveDirectory(srcDir, dstPath string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	partPath := dstPath + partSuffix
	file, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}

	if err := WriteTar(file, srcDir); err != nil {
		file.Close()
		os.Remove(partPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to close archive file: %w", err)
	}

	if err := os.Rename(partPath, dstPath); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	return nil
}

// WriteTar streams the contents of srcDir as a tar archive into w.
// Directories and regular files are included, walked in lexical order.
func WriteTar(w io.Writer, srcDir string) error {
	tarWriter := tar.NewWriter(w)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		return addEntry(tarWriter, path, filepath.ToSlash(rel), d)
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", srcDir, err)
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish tar archive: %w", err)
	}
	return nil
}

// addEntry writes the header and, for files, the content of one path
func addEntry(tarWriter *tar.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to create tar header for %s: %w", name, err)
	}
	header.Name = name
	if d.IsDir() {
		header.Name += "/"
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	if d.IsDir() {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(tarWriter, file); err != nil {
		return fmt.Errorf("failed to write %s to tar: %w", name, err)
	}
	return nil
}
