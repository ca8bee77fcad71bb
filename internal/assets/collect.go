package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MissingAssetError reports a manifest entry whose source file does not
// exist as a regular file.
type MissingAssetError struct {
	Name string
	Path string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("%s file not found: %s", strings.ToUpper(e.Name), e.Path)
}

// Asset is a collected manifest entry together with its file content.
type Asset struct {
	Entry
	Path    string
	Content string
}

// Collect reads every manifest asset under webDir, in manifest order.
// Every path is checked before any file is read, so a missing asset aborts
// the run before anything is touched.
func Collect(webDir string, manifest []Entry) ([]Asset, error) {
	for _, e := range manifest {
		path := filepath.Join(webDir, e.File)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &MissingAssetError{Name: e.Name, Path: path}
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			return nil, &MissingAssetError{Name: e.Name, Path: path}
		}
	}

	collected := make([]Asset, 0, len(manifest))
	for _, e := range manifest {
		path := filepath.Join(webDir, e.File)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		collected = append(collected, Asset{Entry: e, Path: path, Content: string(data)})
	}
	return collected, nil
}
