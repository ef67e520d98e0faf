package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRegistry = `{
  "keys": {
    "myapp": {
      "db": ["password", "username"],
      "api": ["token"]
    }
  },
  "autoKeys": {
    "myapp": {
      "apiVersion": ["v1", "v2"]
    }
  },
  "encodedKeys": {
    "myapp": {
      "db": ["password"]
    }
  }
}`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enaas-details.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func load(t *testing.T, content string) *Registry {
	t.Helper()
	reg, defects := Load(writeRegistry(t, content))
	require.Empty(t, defects)
	require.NotNil(t, reg)
	return reg
}

func TestLoadValid(t *testing.T) {
	reg := load(t, validRegistry)
	assert.Equal(t, []string{"myapp"}, reg.Applications())
	assert.Equal(t, []string{"password", "username"}, reg.Keys["myapp"]["db"])
	assert.Equal(t, []string{"v1", "v2"}, reg.AutoKeys["myapp"]["apiVersion"])
}

func TestLoadEmptyFile(t *testing.T) {
	reg, defects := Load(writeRegistry(t, ""))
	assert.Nil(t, reg)
	require.Len(t, defects, 1)
	assert.Equal(t, "file is empty", defects[0].Description)
}

func TestLoadMissingFile(t *testing.T) {
	reg, defects := Load(filepath.Join(t.TempDir(), "enaas.json"))
	assert.Nil(t, reg)
	require.Len(t, defects, 1)
	assert.Contains(t, defects[0].Description, "cannot read file")
}

func TestLoadSyntaxError(t *testing.T) {
	reg, defects := Load(writeRegistry(t, "{\n  \"keys\": {,}\n}"))
	assert.Nil(t, reg)
	require.Len(t, defects, 1)
	assert.Equal(t, 2, defects[0].Line)
	assert.Contains(t, defects[0].Description, "invalid JSON")
}

func TestCheckStructureComplete(t *testing.T) {
	reg := load(t, validRegistry)
	ok, defects := reg.CheckStructure()
	assert.True(t, ok)
	assert.Empty(t, defects)
}

func TestCheckStructureMissingKey(t *testing.T) {
	reg := load(t, `{"keys": {"myapp": {}}, "autoKeys": {}}`)
	ok, defects := reg.CheckStructure()
	assert.False(t, ok)
	require.Len(t, defects, 1)
	assert.Contains(t, defects[0].Description, `"encodedKeys"`)
}

func TestCheckStructureEmptyKeys(t *testing.T) {
	reg := load(t, `{"keys": {}, "autoKeys": {}, "encodedKeys": {}}`)
	ok, defects := reg.CheckStructure()
	assert.False(t, ok)
	require.Len(t, defects, 1)
	assert.Contains(t, defects[0].Description, "no application")
}

func TestCheckSchemaValid(t *testing.T) {
	reg := load(t, validRegistry)
	assert.Empty(t, reg.CheckSchema())
}

func TestCheckSchemaBadShape(t *testing.T) {
	reg := load(t, `{"keys": {"myapp": {"db": "password"}}, "autoKeys": {}, "encodedKeys": {}}`)
	defects := reg.CheckSchema()
	require.NotEmpty(t, defects)
	assert.Contains(t, defects[0].Description, "registry schema")
}
