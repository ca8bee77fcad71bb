// Package assets embeds the web dashboard sources as PROGMEM string
// constants in a generated C++ header.
package assets

import "strings"

// Entry names one embeddable asset and its file within the web directory.
type Entry struct {
	Name string // unique snake_case identifier
	File string // file name under the web directory
}

// Manifest is the fixed set of dashboard assets. It is declared as code on
// purpose: the build must fail when an expected file is absent instead of
// embedding whatever a directory scan happens to find.
var Manifest = []Entry{
	{Name: "index_html", File: "index.html"},
	{Name: "visualization_html", File: "visualization.html"},
	{Name: "email_html", File: "email.html"},
	{Name: "dashboard_css", File: "dashboard.css"},
	{Name: "core_js", File: "core.js"},
	{Name: "collection_js", File: "collection.js"},
	{Name: "visualization_js", File: "visualization.js"},
}

// ConstName derives the generated constant name from a manifest identifier:
// "index_html" becomes "kIndexHtml". The mapping is injective over
// snake_case identifiers, so unique names yield unique constants.
func ConstName(name string) string {
	var b strings.Builder
	b.WriteByte('k')
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// FileSet returns the manifest file names, used by watch mode to filter
// directory events.
func FileSet(manifest []Entry) map[string]bool {
	files := make(map[string]bool, len(manifest))
	for _, e := range manifest {
		files[e.File] = true
	}
	return files
}
