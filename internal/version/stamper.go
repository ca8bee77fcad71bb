// Package version maintains the firmware version header, incrementing the
// build snapshot counter once per invocation.
package version

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Marker tokens are the contract between the writer and the reader: Write
// emits them and Read scans for them, so they must never drift apart.
const (
	MarkerMajor    = "VERSION_MAJOR"
	MarkerMinor    = "VERSION_MINOR"
	MarkerSnapshot = "VERSION_SNAPSHOT"
	MarkerSoftware = "SOFTWARE_VERSION"
)

// Record holds the three persisted version fields. Major and minor are
// operator-controlled; only Snapshot is advanced by this tool.
type Record struct {
	Major    int
	Minor    int
	Snapshot int
}

// String returns the composite "major.minor.snapshot" version.
func (r Record) String() string {
	return fmt.Sprintf("%d.%d.%d", r.Major, r.Minor, r.Snapshot)
}

// ParseError reports a marker line whose trailing token is not an integer.
type ParseError struct {
	Path  string
	Line  string
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("version file %s: invalid integer %q in line %q", e.Path, e.Token, e.Line)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Read parses the version header. A missing file or missing marker lines
// default the corresponding fields to zero; a marker line with a malformed
// value is an error. A line carries a field only when one of its
// whitespace-delimited fields equals the marker token exactly, so a marker
// can never be shadowed by a longer name containing it.
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("read %s: %w", path, err)
	}

	var rec Record
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var target *int
		switch {
		case slices.Contains(fields, MarkerMajor):
			target = &rec.Major
		case slices.Contains(fields, MarkerMinor):
			target = &rec.Minor
		case slices.Contains(fields, MarkerSnapshot):
			target = &rec.Snapshot
		default:
			continue
		}

		token := fields[len(fields)-1]
		n, err := strconv.Atoi(token)
		if err != nil {
			return Record{}, &ParseError{Path: path, Line: line, Token: token, Err: err}
		}
		*target = n
	}
	return rec, nil
}

// Write rewrites the version header in full, including the derived
// composite version string.
func Write(path string, rec Record) error {
	var b strings.Builder
	b.WriteString("#pragma once\n\n")
	fmt.Fprintf(&b, "#define %s %d\n", MarkerMajor, rec.Major)
	fmt.Fprintf(&b, "#define %s %d\n", MarkerMinor, rec.Minor)
	fmt.Fprintf(&b, "#define %s %d\n\n", MarkerSnapshot, rec.Snapshot)
	fmt.Fprintf(&b, "#define %s %q\n", MarkerSoftware, rec.String())

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create version directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Stamp reads the version file, increments the snapshot counter by one,
// rewrites the file unconditionally, and returns the new record.
func Stamp(path string) (Record, error) {
	rec, err := Read(path)
	if err != nil {
		return Record{}, err
	}
	rec.Snapshot++

	if err := Write(path, rec); err != nil {
		return Record{}, err
	}

	slog.Info("stamped build version", "version", rec.String(), "file", path)
	return rec, nil
}
