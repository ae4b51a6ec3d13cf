package manifest

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Discover walks root and returns every directory that holds a manifest, in
// lexical walk order. Hidden directories (".git" and the like) are skipped.
// A root that is itself a manifest file is returned as its directory.
func Discover(root string) ([]string, error) {
	var dirs []string
	seen := make(map[string]struct{})

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsManifestFile(d.Name()) {
			return nil
		}
		dir := filepath.Dir(path)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// DiscoverAll runs Discover over several roots and drops duplicates.
func DiscoverAll(roots ...string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	for _, root := range roots {
		dirs, err := Discover(root)
		if err != nil {
			return nil, err
		}
		for _, d := range dirs {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			all = append(all, d)
		}
	}
	return all, nil
}
