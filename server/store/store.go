// Package store implements the two filesystem stores: uploaded snapshots and
// annotated result artifacts. Both are flat directories keyed by filename,
// with overwrite-on-collision semantics.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Dir struct {
	Root string
}

func NewDir(root string) (*Dir, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0777); err != nil {
		return nil, fmt.Errorf("Failed to create storage path '%v': %w", root, err)
	}
	return &Dir{Root: root}, nil
}

// Save streams src into the store under 'filename' (base name only),
// overwriting any existing file with that name.
func (d *Dir) Save(filename string, src io.Reader) error {
	dstFilename, err := d.pathOf(filename)
	if err != nil {
		return err
	}
	dstFile, err := os.Create(dstFilename)
	if err != nil {
		return err
	}
	defer dstFile.Close()
	if _, err := io.Copy(dstFile, src); err != nil {
		os.Remove(dstFilename)
		return err
	}
	return nil
}

// SaveBytes writes content under 'filename', overwriting any existing file.
// Concurrent writers to the same filename are last-write-wins.
func (d *Dir) SaveBytes(filename string, content []byte) error {
	dstFilename, err := d.pathOf(filename)
	if err != nil {
		return err
	}
	return os.WriteFile(dstFilename, content, 0644)
}

// Read returns the content stored under 'filename'
func (d *Dir) Read(filename string) ([]byte, error) {
	p, err := d.pathOf(filename)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// LatestImages returns the full paths of the n most-recently-modified JPEGs
// in the store, newest first.
func (d *Dir) LatestImages(n int) ([]string, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, err
	}
	type fileTime struct {
		path    string
		modTime int64
	}
	files := []fileTime{}
	for _, e := range entries {
		if e.IsDir() || !isJPEG(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileTime{
			path:    filepath.Join(d.Root, e.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime != files[j].modTime {
			return files[i].modTime > files[j].modTime
		}
		return files[i].path < files[j].path
	})
	if len(files) > n {
		files = files[:n]
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.path)
	}
	return paths, nil
}

// pathOf resolves 'filename' inside the store, rejecting anything that would
// escape the root directory.
func (d *Dir) pathOf(filename string) (string, error) {
	base := filepath.Base(filepath.Clean(filename))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("Invalid filename '%v'", filename)
	}
	return filepath.Join(d.Root, base), nil
}

func isJPEG(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg")
}
