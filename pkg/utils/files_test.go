package utils

import (
	"path/filepath"
	"testing"
)

func TestGetPathInfo(t *testing.T) {
	full, parent, err := GetPathInfo("testdata/../Fact.java")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(full) || filepath.Base(full) != "Fact.java" {
		t.Errorf("full = %q", full)
	}
	if parent != filepath.Dir(full) {
		t.Errorf("parent = %q", parent)
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		source, ext, want string
	}{
		{"src/Fact.java", "asm", "Fact.asm"},
		{"Fact.java", ".tac", "Fact.tac"},
		{"dir/Fact", "ll", "Fact.ll"},
		{"Fact.test.java", "png", "Fact.png"},
	}
	for _, tt := range tests {
		if got := ArtifactName(tt.source, tt.ext); got != tt.want {
			t.Errorf("ArtifactName(%q, %q) = %q, want %q", tt.source, tt.ext, got, tt.want)
		}
	}
}
