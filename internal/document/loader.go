// Package document loads the review input files and reports parse failures
// as file defects with exact line/column positions.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/systmms/enrev/internal/defect"
	"gopkg.in/yaml.v3"
)

// File is one review artifact read fully into memory. The documents are
// small configuration files; no streaming is needed.
type File struct {
	Path string
	Name string
	Raw  []byte
}

// Read loads the file at path. A missing or unreadable file is returned as
// a structural defect; sibling files of the unit are still checked.
func Read(path string) (*File, *defect.FileDefect) {
	name := filepath.Base(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &defect.FileDefect{
			File:        name,
			Category:    defect.CategoryStructural,
			Description: fmt.Sprintf("cannot read file: %v", err),
		}
	}
	return &File{Path: path, Name: name, Raw: raw}, nil
}

// Empty reports whether the file has no content at all.
func (f *File) Empty() bool {
	return len(f.Raw) == 0
}

// Content returns the raw file text.
func (f *File) Content() string {
	return string(f.Raw)
}

// DecodeJSON parses the file as strict JSON into v. An empty file yields
// exactly one "file is empty" defect and parsing is skipped, not attempted
// and failed.
func (f *File) DecodeJSON(v interface{}) []defect.FileDefect {
	if f.Empty() {
		return []defect.FileDefect{emptyFileDefect(f.Name)}
	}

	if err := json.Unmarshal(f.Raw, v); err != nil {
		line, col := jsonErrorPosition(f.Raw, err)
		return []defect.FileDefect{{
			File:        f.Name,
			Line:        line,
			Column:      col,
			Category:    defect.CategoryStructural,
			Description: fmt.Sprintf("invalid JSON: %v", err),
		}}
	}
	return nil
}

// DecodeYAML checks indentation line by line, then parses the file as YAML
// into v. Indentation defects do not suppress the parse attempt; a file can
// report both.
func (f *File) DecodeYAML(v interface{}) []defect.FileDefect {
	if f.Empty() {
		return []defect.FileDefect{emptyFileDefect(f.Name)}
	}

	defects := CheckIndentation(f.Name, f.Content())

	if err := yaml.Unmarshal(f.Raw, v); err != nil {
		line, col := yamlErrorPosition(err)
		defects = append(defects, defect.FileDefect{
			File:        f.Name,
			Line:        line,
			Column:      col,
			Category:    defect.CategoryStructural,
			Description: fmt.Sprintf("invalid YAML: %v", err),
		})
	}
	return defects
}

// CheckIndentation scans every non-blank, non-comment line independently.
// A tab before the first non-whitespace character and an odd leading-space
// count are separate defects; one line can produce both.
func CheckIndentation(name, content string) []defect.FileDefect {
	var defects []defect.FileDefect

	for i, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lineNo := i + 1

		indent := leadingWhitespace(line)
		if tab := strings.IndexByte(line[:indent], '\t'); tab >= 0 {
			defects = append(defects, defect.FileDefect{
				File:        name,
				Line:        lineNo,
				Column:      tab + 1,
				Category:    defect.CategoryFormatting,
				Description: "tab indentation, use spaces",
			})
		}
		if indent > 0 && indent%2 != 0 {
			defects = append(defects, defect.FileDefect{
				File:        name,
				Line:        lineNo,
				Column:      indent + 1,
				Category:    defect.CategoryFormatting,
				Description: fmt.Sprintf("indentation is not a multiple of two (%d characters)", indent),
			})
		}
	}
	return defects
}

func leadingWhitespace(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return i
		}
	}
	return len(line)
}

func emptyFileDefect(name string) defect.FileDefect {
	return defect.FileDefect{
		File:        name,
		Category:    defect.CategoryStructural,
		Description: "file is empty",
	}
}

// jsonErrorPosition converts the decoder's byte offset into a 1-indexed
// line/column pair by counting newlines up to the offset. An offset at or
// past end-of-content reports 1/1.
func jsonErrorPosition(content []byte, err error) (int, int) {
	var offset int64 = -1

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}

	if offset < 0 || offset >= int64(len(content)) {
		return 1, 1
	}

	line, col := 1, 1
	for _, b := range content[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

var yamlLineRe = regexp.MustCompile(`line (\d+):`)

// yamlErrorPosition recovers the line marker the YAML parser embeds in its
// error text. The parser exposes no column, so the column falls back to 1;
// when no marker is present at all the position is 1/1.
func yamlErrorPosition(err error) (int, int) {
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 1, 1
	}
	var line int
	if _, scanErr := fmt.Sscanf(m[1], "%d", &line); scanErr != nil || line < 1 {
		return 1, 1
	}
	return line, 1
}
