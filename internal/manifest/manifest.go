// Package manifest loads the secret manifest and implements the
// ENAAS_PLACEHOLDER grammar over its raw text.
package manifest

import (
	"regexp"
	"strings"

	"github.com/systmms/enrev/internal/defect"
	"github.com/systmms/enrev/internal/document"
)

// Marker delimits a placeholder span in the manifest text.
const Marker = "<ENAAS_PLACEHOLDER>"

var placeholderRe = regexp.MustCompile(`<ENAAS_PLACEHOLDER>(.*?)<ENAAS_PLACEHOLDER>`)

// Manifest is a loaded secret manifest: the parsed identity document plus
// the raw text the placeholder grammar runs over.
type Manifest struct {
	File *document.File
	doc  *doc
}

type doc struct {
	Metadata struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
}

// Load reads and parses the manifest at path. Parse defects do not prevent
// the raw text from being available for the grammar checks.
func Load(path string) (*Manifest, []defect.FileDefect) {
	f, readDefect := document.Read(path)
	if readDefect != nil {
		return nil, []defect.FileDefect{*readDefect}
	}

	m := &Manifest{File: f}
	var d doc
	defects := f.DecodeYAML(&d)
	if !hasStructuralDefect(defects) {
		m.doc = &d
	}
	return m, defects
}

// hasStructuralDefect reports whether decoding itself failed, as opposed to
// formatting findings that still leave a usable document.
func hasStructuralDefect(defects []defect.FileDefect) bool {
	for _, d := range defects {
		if d.Category == defect.CategoryStructural {
			return true
		}
	}
	return false
}

// Name returns the manifest identity from metadata.name, or false when the
// field is absent.
func (m *Manifest) Name() (string, bool) {
	if m == nil || m.doc == nil || m.doc.Metadata.Name == "" {
		return "", false
	}
	return m.doc.Metadata.Name, true
}

// Placeholders returns the ordered contents of every complete marker pair,
// non-greedy and first-match-wins from left to right.
func Placeholders(content string) []string {
	matches := placeholderRe.FindAllStringSubmatch(content, -1)
	contents := make([]string, 0, len(matches))
	for _, m := range matches {
		contents = append(contents, m[1])
	}
	return contents
}

// CheckMarkerParity verifies that every line carries an even number of
// placeholder markers. An odd count is a defect located at the first marker
// on that line. This pass is independent of content extraction; neither
// gates the other.
func CheckMarkerParity(fileName, content string) []defect.KeyDefect {
	var defects []defect.KeyDefect

	for i, line := range strings.Split(content, "\n") {
		n := strings.Count(line, Marker)
		if n == 0 || n%2 == 0 {
			continue
		}
		defects = append(defects, defect.KeyDefect{
			File:        fileName,
			Line:        i + 1,
			Column:      strings.Index(line, Marker) + 1,
			Category:    defect.CategoryFormatting,
			Description: "unmatched ENAAS_PLACEHOLDER marker",
		})
	}
	return defects
}

// FindContent locates the first occurrence of a placeholder content string
// anywhere in the file, returning its 1-indexed line and column. The scan
// is a plain substring search, not placeholder-span-aware: if the same
// string appears earlier as ordinary text that earlier position is
// reported. Known precision limit, kept as is.
func FindContent(content, placeholder string) (int, int) {
	for i, line := range strings.Split(content, "\n") {
		if idx := strings.Index(line, placeholder); idx >= 0 {
			return i + 1, idx + 1
		}
	}
	return 1, 1
}
