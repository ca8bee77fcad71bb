package assets

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"
)

// headerTemplate mirrors the header the firmware already includes; the
// constants live in program space so they never compete with RAM.
const headerTemplate = `#pragma once
#include <pgmspace.h>

namespace {{.Namespace}} {
{{- range .Constants}}
static const char {{.Name}}[] PROGMEM = {{.Literal}};
{{- end}}
}
`

var headerTmpl = template.Must(template.New("header").Parse(headerTemplate))

type headerConstant struct {
	Name    string
	Literal string
}

type headerData struct {
	Namespace string
	Constants []headerConstant
}

// Options configures one embedding run. All paths are absolute.
type Options struct {
	WebDir    string
	Output    string
	Namespace string
	Manifest  []Entry // nil means the default Manifest
}

// Embed collects the manifest assets, encodes each as a string literal, and
// overwrites the generated header in full. Nothing is written unless every
// asset collected and encoded successfully. Returns the output path.
func Embed(opts Options) (string, error) {
	manifest := opts.Manifest
	if manifest == nil {
		manifest = Manifest
	}

	collected, err := Collect(opts.WebDir, manifest)
	if err != nil {
		return "", err
	}

	data := headerData{Namespace: opts.Namespace}
	for _, a := range collected {
		lit, err := Literal(a.Content)
		if err != nil {
			return "", &EncodingError{Name: a.Name, Path: a.Path}
		}
		data.Constants = append(data.Constants, headerConstant{
			Name:    ConstName(a.Name),
			Literal: lit,
		})
	}

	var buf bytes.Buffer
	if err := headerTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render header: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", opts.Output, err)
	}

	slog.Info("embedded web assets", "assets", len(collected), "output", opts.Output)
	return opts.Output, nil
}
