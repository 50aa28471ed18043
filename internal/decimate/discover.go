package decimate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// IsLAS reports whether name has a .las extension, ignoring case.
func IsLAS(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".las")
}

// Discover lists the LAS files under root. Without recursive only the files
// directly in root are returned; with it every subdirectory is walked.
// Results are sorted.
func Discover(fs afero.Fs, root string, recursive bool) ([]string, error) {
	var files []string

	if !recursive {
		entries, err := afero.ReadDir(fs, root)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && IsLAS(e.Name()) {
				files = append(files, filepath.Join(root, e.Name()))
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && IsLAS(info.Name()) {
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
