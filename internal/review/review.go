// Package review runs the consistency checks over one artifact unit and
// drives batches of discovered units.
package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/systmms/enrev/internal/defect"
	"github.com/systmms/enrev/internal/descriptor"
	"github.com/systmms/enrev/internal/discover"
	"github.com/systmms/enrev/internal/logging"
	"github.com/systmms/enrev/internal/manifest"
	"github.com/systmms/enrev/internal/registry"
)

// Reviewer checks one unit: a registry, a manifest and an optional
// descriptor. Each Reviewer owns a fresh result; nothing is shared between
// units.
type Reviewer struct {
	registryPath   string
	manifestPath   string
	descriptorPath string
	logger         *logging.Logger
}

// New creates a reviewer for one unit. descriptorPath may be empty.
func New(registryPath, manifestPath, descriptorPath string, logger *logging.Logger) *Reviewer {
	return &Reviewer{
		registryPath:   registryPath,
		manifestPath:   manifestPath,
		descriptorPath: descriptorPath,
		logger:         logger,
	}
}

// Run executes the full check pipeline: naming, file validity, placeholder
// grammar, registry cross-checks and reference matching. A failure in one
// check never aborts its siblings; the result covers everything that could
// be checked.
func (r *Reviewer) Run() *defect.Result {
	result := &defect.Result{Location: filepath.Dir(r.manifestPath)}

	result.AddFile(r.checkNaming()...)

	r.logger.Debug("1. checking file validity")
	reg, regDefects := registry.Load(r.registryPath)
	result.AddFile(regDefects...)
	if reg != nil {
		result.AddFile(reg.CheckSchema()...)
	}

	man, manDefects := manifest.Load(r.manifestPath)
	result.AddFile(manDefects...)

	var desc *descriptor.Descriptor
	if r.descriptorPath != "" {
		var descDefects []defect.FileDefect
		desc, descDefects = descriptor.Load(r.descriptorPath)
		result.AddFile(descDefects...)
	}

	r.checkManifestGrammar(result, man)
	r.checkSecretMatching(result, reg, man)
	r.checkSecretReferences(result, man, desc)

	return result
}

// checkNaming validates the file-naming contract. Violations are defects,
// never fatal.
func (r *Reviewer) checkNaming() []defect.FileDefect {
	var defects []defect.FileDefect

	registryName := filepath.Base(r.registryPath)
	if !strings.HasSuffix(registryName, ".json") {
		defects = append(defects, namingDefect(registryName, "registry file name must end in .json"))
	}

	manifestName := filepath.Base(r.manifestPath)
	if manifestBase(manifestName) == manifestName {
		defects = append(defects, namingDefect(manifestName, "secret manifest file name must end in _secret.yml or _secret.yaml"))
	}

	if r.descriptorPath == "" {
		return defects
	}

	descriptorName := filepath.Base(r.descriptorPath)
	if descriptorBase(descriptorName) == descriptorName {
		defects = append(defects, namingDefect(descriptorName, "descriptor file name must end in _dc.yml or _dc.yaml"))
	}

	mBase, dBase := manifestBase(manifestName), descriptorBase(descriptorName)
	if mBase != dBase {
		defects = append(defects, namingDefect(descriptorName,
			fmt.Sprintf("descriptor base name (%s) does not match secret manifest base name (%s)", dBase, mBase)))
	}
	return defects
}

// checkManifestGrammar runs the placeholder parity pass and counts complete
// placeholder pairs. The grammar works on raw text, so it runs even when
// the manifest failed to parse as YAML.
func (r *Reviewer) checkManifestGrammar(result *defect.Result, man *manifest.Manifest) {
	if man == nil {
		r.logger.Error("cannot check placeholders: secret manifest is unreadable")
		return
	}

	content := man.File.Content()
	placeholders := manifest.Placeholders(content)
	result.PlaceholderCount = len(placeholders)
	r.logger.Debug("2. checking %d placeholder(s)", len(placeholders))

	result.AddKey(manifest.CheckMarkerParity(man.File.Name, content)...)
}

// checkSecretMatching cross-references the registry with the manifest's
// placeholders. A registry that failed its structural check short-circuits
// only this component.
func (r *Reviewer) checkSecretMatching(result *defect.Result, reg *registry.Registry, man *manifest.Manifest) {
	if reg == nil {
		r.logger.Error("cannot check secret matching: registry failed to load")
		return
	}

	r.logger.Debug("3. checking secret matching")
	ok, structDefects := reg.CheckStructure()
	result.AddFile(structDefects...)
	if !ok {
		return
	}
	r.logger.Debug("registry applications: %s", strings.Join(reg.Applications(), ", "))

	result.AddKey(reg.CheckEncodedKeys()...)
	if man != nil {
		result.AddKey(reg.CheckPlaceholders(man)...)
	}
}

// checkSecretReferences matches descriptor references against the manifest
// identity. The outcome is recorded on the result, not as per-reference
// defects.
func (r *Reviewer) checkSecretReferences(result *defect.Result, man *manifest.Manifest, desc *descriptor.Descriptor) {
	if r.descriptorPath == "" {
		r.logger.Debug("4. skipping secret references: no descriptor given")
		return
	}
	if desc == nil || man == nil {
		r.logger.Error("cannot check secret references: required file failed to load")
		return
	}

	r.logger.Debug("4. checking secret references")
	name, ok := man.Name()
	if !ok {
		result.AddFile(defect.FileDefect{
			File:        man.File.Name,
			Category:    defect.CategoryStructural,
			Description: "metadata.name is missing",
		})
		return
	}
	result.SecretName = name

	match := descriptor.MatchIdentity(name, desc.SecretRefs())
	if !match.Found {
		r.logger.Warn("no secretRef found in %s", desc.File.Name)
		return
	}

	result.ReferenceMatch = match.Matched
	result.ReferenceNames = match.Names
	if match.Matched {
		r.logger.Debug("references match: %s = %s", name, match.Names)
	} else {
		r.logger.Warn("references do not match: %s(%s) vs %s(%s)",
			man.File.Name, name, desc.File.Name, match.Names)
	}
}

// RunBatch verifies every discovered unit in order. An unexpected internal
// failure in one unit becomes a single synthetic defect for that unit and
// the batch continues.
func RunBatch(units []discover.Unit, logger *logging.Logger) []*defect.Result {
	results := make([]*defect.Result, 0, len(units))
	for i, unit := range units {
		logger.Info("checking unit %d/%d: %s", i+1, len(units), unit.Dir)
		results = append(results, runUnit(unit, logger))
	}
	return results
}

func runUnit(unit discover.Unit, logger *logging.Logger) (result *defect.Result) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("unit %s failed: %v", unit.Dir, p)
			result = &defect.Result{
				Location: unit.Dir,
				FileDefects: []defect.FileDefect{{
					File:        unit.Dir,
					Category:    defect.CategoryStructural,
					Description: fmt.Sprintf("review aborted by internal error: %v", p),
				}},
			}
		}
	}()

	result = New(unit.Registry, unit.Manifest, unit.Descriptor, logger).Run()
	result.Location = unit.Dir
	return result
}

// manifestBase strips the secret-manifest suffix from a file name; the name
// is returned unchanged when no suffix matches.
func manifestBase(name string) string {
	name = strings.TrimSuffix(name, "_secret.yml")
	return strings.TrimSuffix(name, "_secret.yaml")
}

// descriptorBase strips the descriptor suffix from a file name.
func descriptorBase(name string) string {
	name = strings.TrimSuffix(name, "_dc.yml")
	return strings.TrimSuffix(name, "_dc.yaml")
}

func namingDefect(file, description string) defect.FileDefect {
	return defect.FileDefect{
		File:        file,
		Category:    defect.CategoryStructural,
		Description: description,
	}
}
