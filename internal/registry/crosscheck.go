package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/systmms/enrev/internal/defect"
	"github.com/systmms/enrev/internal/manifest"
)

// CheckEncodedKeys verifies that every (application, group, key) triple in
// encodedKeys resolves inside keys. Each missing link is one defect; a
// missing application does not stop its sibling entries from being checked.
func (r *Registry) CheckEncodedKeys() []defect.KeyDefect {
	var defects []defect.KeyDefect

	for _, app := range sortedNames(r.EncodedKeys) {
		groups := r.EncodedKeys[app]
		declaredGroups, appKnown := r.Keys[app]
		if !appKnown {
			line, col := r.position(app)
			defects = append(defects, defect.KeyDefect{
				File:        r.File.Name,
				Line:        line,
				Column:      col,
				Group:       app,
				Category:    defect.CategoryReference,
				Description: "encodedKeys application not declared in keys",
			})
			continue
		}

		for _, group := range sortedNames(groups) {
			declaredKeys, groupKnown := declaredGroups[group]
			if !groupKnown {
				line, col := r.position(group)
				defects = append(defects, defect.KeyDefect{
					File:        r.File.Name,
					Line:        line,
					Column:      col,
					Group:       group,
					Category:    defect.CategoryReference,
					Description: fmt.Sprintf("encodedKeys secret group not declared under keys.%s", app),
				})
				continue
			}

			for _, key := range groups[group] {
				if !contains(declaredKeys, key) {
					line, col := r.position(key)
					defects = append(defects, defect.KeyDefect{
						File:        r.File.Name,
						Line:        line,
						Column:      col,
						Group:       group,
						Key:         key,
						Category:    defect.CategoryReference,
						Description: fmt.Sprintf("encoded key not declared in keys.%s.%s", app, group),
					})
				}
			}
		}
	}
	return defects
}

// CheckPlaceholders validates every placeholder content extracted from the
// manifest against the registry. A content is valid if it matches the
// {group}_{key} form under any application's keys or the {template}_{value}
// form under any application's autoKeys.
func (r *Registry) CheckPlaceholders(m *manifest.Manifest) []defect.KeyDefect {
	var defects []defect.KeyDefect
	content := m.File.Content()

	for _, placeholder := range manifest.Placeholders(content) {
		if r.ResolvePlaceholder(placeholder) {
			continue
		}
		line, col := manifest.FindContent(content, placeholder)
		defects = append(defects, defect.KeyDefect{
			File:        m.File.Name,
			Line:        line,
			Column:      col,
			Key:         placeholder,
			Category:    defect.CategoryReference,
			Description: fmt.Sprintf("no matching configuration in %s", r.File.Name),
		})
	}
	return defects
}

// ResolvePlaceholder reports whether a placeholder content resolves against
// any application, first match wins.
func (r *Registry) ResolvePlaceholder(content string) bool {
	return r.resolveKeysForm(content) || r.resolveAutoKeysForm(content)
}

// resolveKeysForm splits on the first underscore: the group name carries no
// underscore, the key name may.
func (r *Registry) resolveKeysForm(content string) bool {
	idx := strings.Index(content, "_")
	if idx < 0 {
		return false
	}
	group, key := content[:idx], content[idx+1:]

	for _, groups := range r.Keys {
		if keys, ok := groups[group]; ok && contains(keys, key) {
			return true
		}
	}
	return false
}

// resolveAutoKeysForm matches the exact {template}_{value} expansion of any
// application's auto-key templates.
func (r *Registry) resolveAutoKeysForm(content string) bool {
	for _, templates := range r.AutoKeys {
		for template, values := range templates {
			for _, value := range values {
				if content == template+"_"+value {
					return true
				}
			}
		}
	}
	return false
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
