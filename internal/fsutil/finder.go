// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindFiles recursively searches rootPath for files with the exact base name and
// returns their full paths in walk (lexical) order. Directories whose name starts with
// a dot, such as restored .nuget or .node caches, are not searched.
func FindFiles(rootPath, name string) ([]string, error) {
	if name == "" {
		panic("name must not be empty")
	}
	return find(rootPath, func(d fs.DirEntry) bool { return d.Name() == name })
}

func find(rootPath string, match func(fs.DirEntry) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if match(d) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
