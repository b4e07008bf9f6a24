// Package archive builds Walk abstraction on top of "archive/zip" and uses it
// to pull snapshot files out of bundles.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to Walk
// The file argument is the zip.File structure for file in archive which satisfies
// match condition. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk walks the all files in the archive which names start with prefix,
// calling walkFn for each item. Archives with entries containing path
// traversal components ("..") or absolute paths are rejected.
func Walk(archive, prefix string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(archive, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadFiles returns content of requested files located directly in dir
// inside archive. Absent files are not an error, they are simply missing from
// the result.
func ReadFiles(archive, dir string, names ...string) (map[string][]byte, error) {
	dir = strings.Trim(path.Clean("/"+strings.ReplaceAll(dir, `\`, "/")), "/")

	wanted := make(map[string]string, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		wanted[path.Join(dir, n)] = n
	}

	out := make(map[string][]byte, len(names))
	err := Walk(archive, dir, func(_ string, f *zip.File) error {
		n, ok := wanted[f.FileHeader.Name]
		if !ok {
			return nil
		}
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("unable to open %q in archive: %w", f.FileHeader.Name, err)
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("unable to read %q in archive: %w", f.FileHeader.Name, err)
		}
		out[n] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
