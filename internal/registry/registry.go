// Package registry loads the ENAAS key-registry document and cross-checks
// it against the secret manifest.
package registry

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/systmms/enrev/internal/defect"
	"github.com/systmms/enrev/internal/document"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// Required top-level keys of the registry document.
var requiredKeys = []string{"keys", "autoKeys", "encodedKeys"}

// Registry is a loaded key-registry document. Keys maps application name to
// secret-group name to declared key names; AutoKeys maps application name
// to template name to template values; EncodedKeys mirrors Keys and must be
// a subset of it.
type Registry struct {
	File        *document.File
	Keys        map[string]map[string][]string
	AutoKeys    map[string]map[string][]string
	EncodedKeys map[string]map[string][]string

	raw map[string]interface{}
}

// Load reads and parses the registry at path. A file that cannot be read or
// parsed returns nil and the structural defects; other artifacts of the
// unit are still checked.
func Load(path string) (*Registry, []defect.FileDefect) {
	f, readDefect := document.Read(path)
	if readDefect != nil {
		return nil, []defect.FileDefect{*readDefect}
	}

	var raw map[string]interface{}
	if defects := f.DecodeJSON(&raw); len(defects) > 0 {
		return nil, defects
	}

	return &Registry{
		File:        f,
		Keys:        toAppGroups(raw["keys"]),
		AutoKeys:    toAppGroups(raw["autoKeys"]),
		EncodedKeys: toAppGroups(raw["encodedKeys"]),
		raw:         raw,
	}, nil
}

// toAppGroups converts a decoded JSON value into the app → group → keys
// shape, dropping entries that are not shaped that way. Shape violations
// are reported separately by the schema check.
func toAppGroups(v interface{}) map[string]map[string][]string {
	apps, ok := v.(map[string]interface{})
	if !ok {
		return map[string]map[string][]string{}
	}

	out := make(map[string]map[string][]string, len(apps))
	for app, groupsVal := range apps {
		groups, ok := groupsVal.(map[string]interface{})
		if !ok {
			continue
		}
		converted := make(map[string][]string, len(groups))
		for group, keysVal := range groups {
			items, ok := keysVal.([]interface{})
			if !ok {
				continue
			}
			keys := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok {
					keys = append(keys, s)
				}
			}
			converted[group] = keys
		}
		out[app] = converted
	}
	return out
}

// CheckSchema validates the document shape against the embedded JSON
// schema. Shape findings are advisory structural defects; they do not stop
// the cross-reference checks.
func (r *Registry) CheckSchema() []defect.FileDefect {
	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	docLoader := gojsonschema.NewGoLoader(r.raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return []defect.FileDefect{{
			File:        r.File.Name,
			Category:    defect.CategoryStructural,
			Description: fmt.Sprintf("schema validation error: %v", err),
		}}
	}

	var defects []defect.FileDefect
	for _, desc := range result.Errors() {
		defects = append(defects, defect.FileDefect{
			File:        r.File.Name,
			Category:    defect.CategoryStructural,
			Description: "registry schema: " + desc.String(),
		})
	}
	return defects
}

// CheckStructure verifies the registry carries the three required top-level
// keys and a non-empty keys mapping. A failure is fatal to the
// registry-dependent checks only; ok reports whether they may proceed.
func (r *Registry) CheckStructure() (bool, []defect.FileDefect) {
	var defects []defect.FileDefect

	for _, key := range requiredKeys {
		if _, present := r.raw[key]; !present {
			defects = append(defects, defect.FileDefect{
				File:        r.File.Name,
				Category:    defect.CategoryStructural,
				Description: fmt.Sprintf("missing required top-level key %q", key),
			})
		}
	}
	if len(defects) > 0 {
		return false, defects
	}

	if len(r.Keys) == 0 {
		return false, []defect.FileDefect{{
			File:        r.File.Name,
			Category:    defect.CategoryStructural,
			Description: "registry declares no application under keys",
		}}
	}

	return true, nil
}

// Applications returns the sorted application names declared under keys.
func (r *Registry) Applications() []string {
	return sortedNames(r.Keys)
}

// position locates an identifier inside the registry text by scanning for
// its first quoted occurrence. Zero/zero means the identifier was not found
// verbatim.
func (r *Registry) position(identifier string) (int, int) {
	needle := `"` + identifier + `"`
	for i, line := range strings.Split(r.File.Content(), "\n") {
		if idx := strings.Index(line, needle); idx >= 0 {
			return i + 1, idx + 2
		}
	}
	return 0, 0
}
