package validator

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the batch file suffixes picked up by Discover.
var DefaultExtensions = []string{".txt", ".fin", ".rje", ".pcc"}

// Discover walks root and returns, sorted, every regular file whose
// lower-cased name contains "mt" and ends in one of exts.
func Discover(root string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isBatchFile(d.Name(), exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func isBatchFile(name string, exts []string) bool {
	lower := strings.ToLower(name)
	if !strings.Contains(lower, "mt") {
		return false
	}
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
