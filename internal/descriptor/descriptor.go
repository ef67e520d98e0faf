// Package descriptor loads the deployment descriptor and matches its
// secret references against the manifest identity.
package descriptor

import (
	"fmt"
	"strings"

	"github.com/systmms/enrev/internal/defect"
	"github.com/systmms/enrev/internal/document"
	"gopkg.in/yaml.v3"
)

// RefMarker is the mapping key that identifies a secret-reference node.
const RefMarker = "secretRef"

// Descriptor is a loaded deployment descriptor: an arbitrary YAML tree with
// secret references nested at any depth.
type Descriptor struct {
	File *document.File
	root *yaml.Node
}

// Reference is one discovered secret reference. Path is the dotted/indexed
// location from the document root, recorded for diagnostics only.
type Reference struct {
	Name string
	Path string
}

// Load reads and parses the descriptor at path.
func Load(path string) (*Descriptor, []defect.FileDefect) {
	f, readDefect := document.Read(path)
	if readDefect != nil {
		return nil, []defect.FileDefect{*readDefect}
	}

	d := &Descriptor{File: f}
	var root yaml.Node
	defects := f.DecodeYAML(&root)
	for _, fd := range defects {
		if fd.Category == defect.CategoryStructural {
			return nil, defects
		}
	}
	d.root = &root
	return d, defects
}

// SecretRefs walks the whole tree and returns every reference node: a
// mapping entry whose key equals the reference marker and whose value is a
// mapping containing a name field.
func (d *Descriptor) SecretRefs() []Reference {
	if d == nil || d.root == nil {
		return nil
	}
	var refs []Reference
	visit(d.root, "", map[*yaml.Node]bool{}, &refs)
	return refs
}

// visit recurses through the three container variants of the node tree.
// The inStack set guards against anchor cycles while still visiting a
// shared anchor once per alias occurrence.
func visit(node *yaml.Node, path string, inStack map[*yaml.Node]bool, refs *[]Reference) {
	if node == nil || inStack[node] {
		return
	}
	inStack[node] = true
	defer delete(inStack, node)

	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			visit(child, path, inStack, refs)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			childPath := key.Value
			if path != "" {
				childPath = path + "." + key.Value
			}
			if key.Value == RefMarker {
				if name, ok := refName(value); ok {
					*refs = append(*refs, Reference{Name: name, Path: childPath})
					continue
				}
			}
			visit(value, childPath, inStack, refs)
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			visit(child, fmt.Sprintf("%s[%d]", path, i), inStack, refs)
		}
	case yaml.AliasNode:
		visit(node.Alias, path, inStack, refs)
	}
}

// refName extracts the name field from a reference-marker value node.
func refName(node *yaml.Node) (string, bool) {
	resolved := node
	if resolved.Kind == yaml.AliasNode {
		resolved = resolved.Alias
	}
	if resolved == nil || resolved.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(resolved.Content); i += 2 {
		if resolved.Content[i].Value == "name" {
			return resolved.Content[i+1].Value, true
		}
	}
	return "", false
}

// Match is the outcome of comparing discovered references against the
// manifest identity. It is recorded for reporting; individual mismatches
// are not defects.
type Match struct {
	// Found is false when the descriptor carries no references at all,
	// which is an informational skip rather than an error.
	Found bool
	// Matched reports whether every reference name equals the identity.
	Matched bool
	// Names is the comma-joined list of discovered reference names.
	Names string
}

// MatchIdentity compares every reference name against the manifest
// identity; a single mismatch marks the whole set as non-matching.
func MatchIdentity(identity string, refs []Reference) Match {
	if len(refs) == 0 {
		return Match{}
	}

	names := make([]string, 0, len(refs))
	matched := true
	for _, ref := range refs {
		names = append(names, ref.Name)
		if ref.Name != identity {
			matched = false
		}
	}
	return Match{Found: true, Matched: matched, Names: strings.Join(names, ", ")}
}
