package review

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/enrev/internal/defect"
	"github.com/systmms/enrev/internal/discover"
	"github.com/systmms/enrev/internal/logging"
)

const testRegistry = `{
  "keys": {
    "myapp": {
      "db": ["password"],
      "api": ["token"]
    }
  },
  "autoKeys": {
    "myapp": {
      "apiVersion": ["v2"]
    }
  },
  "encodedKeys": {
    "myapp": {
      "db": ["password"]
    }
  }
}`

const testManifest = `metadata:
  name: my-secret
data:
  password: <ENAAS_PLACEHOLDER>db_password<ENAAS_PLACEHOLDER>
  version: <ENAAS_PLACEHOLDER>apiVersion_v2<ENAAS_PLACEHOLDER>
`

const testDescriptor = `kind: DeploymentConfig
spec:
  template:
    secretRef:
      name: my-secret
`

func quietLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, false, true)
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCleanUnit(t *testing.T) {
	dir := t.TempDir()
	reg := write(t, dir, "enaas-details.json", testRegistry)
	man := write(t, dir, "app_secret.yml", testManifest)
	dc := write(t, dir, "app_dc.yml", testDescriptor)

	result := New(reg, man, dc, quietLogger()).Run()
	assert.False(t, result.HasDefects(), "unexpected defects: %v %v", result.FileDefects, result.KeyDefects)
	assert.Equal(t, 2, result.PlaceholderCount)
	assert.True(t, result.ReferenceMatch)
	assert.Equal(t, "my-secret", result.SecretName)
	assert.Equal(t, "my-secret", result.ReferenceNames)
}

func TestRunWithoutDescriptor(t *testing.T) {
	dir := t.TempDir()
	reg := write(t, dir, "enaas-details.json", testRegistry)
	man := write(t, dir, "app_secret.yml", testManifest)

	result := New(reg, man, "", quietLogger()).Run()
	assert.False(t, result.HasDefects())
	assert.False(t, result.ReferenceMatch)
	assert.Empty(t, result.ReferenceNames)
}

func TestRunNamingMismatch(t *testing.T) {
	dir := t.TempDir()
	reg := write(t, dir, "enaas-details.json", testRegistry)
	man := write(t, dir, "app_secret.yml", testManifest)
	dc := write(t, dir, "other_dc.yml", testDescriptor)

	result := New(reg, man, dc, quietLogger()).Run()
	require.Len(t, result.FileDefects, 1)
	assert.Contains(t, result.FileDefects[0].Description, "(other)")
	assert.Contains(t, result.FileDefects[0].Description, "(app)")
}

func TestRunUnresolvedPlaceholder(t *testing.T) {
	dir := t.TempDir()
	reg := write(t, dir, "enaas-details.json", testRegistry)
	man := write(t, dir, "app_secret.yml", "metadata:\n  name: my-secret\ndata:\n  v: <ENAAS_PLACEHOLDER>unknown_thing<ENAAS_PLACEHOLDER>\n")

	result := New(reg, man, "", quietLogger()).Run()
	require.Len(t, result.KeyDefects, 1)
	assert.Equal(t, "unknown_thing", result.KeyDefects[0].Key)
	assert.Equal(t, defect.CategoryReference, result.KeyDefects[0].Category)
}

func TestRunRegistryMissingTopLevelKeyShortCircuitsMatching(t *testing.T) {
	dir := t.TempDir()
	// No encodedKeys key; the bad placeholder below must not be reported
	// because the registry-dependent checks short-circuit.
	reg := write(t, dir, "enaas-details.json", `{"keys": {"myapp": {"db": ["password"]}}, "autoKeys": {}}`)
	man := write(t, dir, "app_secret.yml", "metadata:\n  name: x\ndata:\n  v: <ENAAS_PLACEHOLDER>unknown_thing<ENAAS_PLACEHOLDER>\n")

	result := New(reg, man, "", quietLogger()).Run()
	require.Len(t, result.FileDefects, 1)
	assert.Contains(t, result.FileDefects[0].Description, `"encodedKeys"`)
	assert.Empty(t, result.KeyDefects)
	// The grammar pass still ran.
	assert.Equal(t, 1, result.PlaceholderCount)
}

func TestRunMissingRegistryStillChecksManifest(t *testing.T) {
	dir := t.TempDir()
	man := write(t, dir, "app_secret.yml", "metadata:\n  name: x\ndata:\n  v: <ENAAS_PLACEHOLDER>dangling\n")

	result := New(filepath.Join(dir, "enaas.json"), man, "", quietLogger()).Run()
	require.Len(t, result.FileDefects, 1)
	assert.Contains(t, result.FileDefects[0].Description, "cannot read file")
	// Parity defect from the manifest is still found.
	require.Len(t, result.KeyDefects, 1)
	assert.Contains(t, result.KeyDefects[0].Description, "unmatched")
}

func TestRunEmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	reg := write(t, dir, "enaas-details.json", "")
	man := write(t, dir, "app_secret.yml", testManifest)

	result := New(reg, man, "", quietLogger()).Run()
	require.Len(t, result.FileDefects, 1)
	assert.Equal(t, "file is empty", result.FileDefects[0].Description)
}

func TestRunReferenceMismatchIsReportedNotDefect(t *testing.T) {
	dir := t.TempDir()
	reg := write(t, dir, "enaas-details.json", testRegistry)
	man := write(t, dir, "app_secret.yml", testManifest)
	dc := write(t, dir, "app_dc.yml", `spec:
  one:
    secretRef:
      name: my-secret
  two:
    secretRef:
      name: other-secret
`)

	result := New(reg, man, dc, quietLogger()).Run()
	assert.False(t, result.HasDefects())
	assert.False(t, result.ReferenceMatch)
	assert.Equal(t, "my-secret, other-secret", result.ReferenceNames)
}

func TestRunMissingMetadataName(t *testing.T) {
	dir := t.TempDir()
	reg := write(t, dir, "enaas-details.json", testRegistry)
	man := write(t, dir, "app_secret.yml", "metadata:\n  labels: {}\n")
	dc := write(t, dir, "app_dc.yml", testDescriptor)

	result := New(reg, man, dc, quietLogger()).Run()
	var found bool
	for _, d := range result.FileDefects {
		if d.Description == "metadata.name is missing" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRunBatchContinuesAcrossUnits(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good")
	bad := filepath.Join(root, "bad")
	require.NoError(t, os.MkdirAll(good, 0755))
	require.NoError(t, os.MkdirAll(bad, 0755))

	goodUnit := discover.Unit{
		Dir:      good,
		Registry: write(t, good, "enaas.json", testRegistry),
		Manifest: write(t, good, "app_secret.yml", testManifest),
	}
	badUnit := discover.Unit{
		Dir:      bad,
		Registry: filepath.Join(bad, "missing-enaas.json"),
		Manifest: filepath.Join(bad, "missing_secret.yml"),
	}

	results := RunBatch([]discover.Unit{badUnit, goodUnit}, quietLogger())
	require.Len(t, results, 2)
	assert.True(t, results[0].HasDefects())
	assert.False(t, results[1].HasDefects())
	assert.Equal(t, good, results[1].Location)
}
