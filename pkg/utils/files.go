package utils

import (
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// BaseName strips the directory and every extension: "src/Fact.java" -> "Fact".
func BaseName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// ArtifactName joins a source base name and an artifact extension:
// ArtifactName("src/Fact.java", "asm") -> "Fact.asm".
func ArtifactName(source, ext string) string {
	return BaseName(source) + "." + strings.TrimPrefix(ext, ".")
}
