package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"prebuild/internal/assets"
	"prebuild/internal/config"
	"prebuild/internal/version"
)

// writeProjectTree lays out a minimal firmware project with every manifest
// asset present under src/web.
func writeProjectTree(t *testing.T) string {
	t.Helper()
	projectDir := t.TempDir()
	webDir := filepath.Join(projectDir, config.DefaultWebDir)
	if err := os.MkdirAll(webDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, e := range assets.Manifest {
		content := "/* " + e.Name + " */\nbody { content: \"é\"; }\n"
		if err := os.WriteFile(filepath.Join(webDir, e.File), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return projectDir
}

func TestPreBuildTransforms(t *testing.T) {
	projectDir := writeProjectTree(t)

	opts := assets.Options{
		WebDir:    filepath.Join(projectDir, config.DefaultWebDir),
		Output:    filepath.Join(projectDir, config.DefaultOutput),
		Namespace: config.DefaultNamespace,
	}
	versionFile := filepath.Join(projectDir, config.DefaultVersionFile)

	// First pre-build invocation: embed then stamp.
	if _, err := assets.Embed(opts); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	rec, err := version.Stamp(versionFile)
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if rec.String() != "0.0.1" {
		t.Errorf("first build version = %q, want 0.0.1", rec.String())
	}

	header, err := os.ReadFile(opts.Output)
	if err != nil {
		t.Fatalf("generated header missing: %v", err)
	}
	for _, e := range assets.Manifest {
		if !strings.Contains(string(header), assets.ConstName(e.Name)) {
			t.Errorf("header missing constant for %s", e.Name)
		}
	}

	// Second invocation with unchanged assets: identical header, version
	// advances by exactly one.
	if _, err := assets.Embed(opts); err != nil {
		t.Fatalf("second Embed: %v", err)
	}
	header2, err := os.ReadFile(opts.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(header, header2) {
		t.Error("unchanged assets produced a different header")
	}

	rec, err = version.Stamp(versionFile)
	if err != nil {
		t.Fatalf("second Stamp: %v", err)
	}
	if rec.String() != "0.0.2" {
		t.Errorf("second build version = %q, want 0.0.2", rec.String())
	}
}

func TestProjectPath(t *testing.T) {
	tests := []struct {
		projectDir string
		path       string
		expected   string
	}{
		{"/srv/fw", "src/web", "/srv/fw/src/web"},
		{"/srv/fw", "/abs/elsewhere", "/abs/elsewhere"},
		{"/srv/fw", "include/version.h", "/srv/fw/include/version.h"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			result := projectPath(tc.projectDir, tc.path)
			if result != tc.expected {
				t.Errorf("projectPath(%q, %q) = %q, want %q", tc.projectDir, tc.path, result, tc.expected)
			}
		})
	}
}
