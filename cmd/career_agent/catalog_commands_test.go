package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/career-recommender/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCatalogCommand(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "validate-catalog", sampleCatalog)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid (2024.2)")
	assert.Contains(t, stdout, "20 skills, 6 roles")
}

func TestValidateCatalogCommand_FromFlag(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "validate-catalog", "--catalog", "../../internal/catalog/testdata/catalog.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "5 skills, 2 roles, 2 resources")
}

func TestValidateCatalogCommand_Invalid(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	bad := `skills:
  - skillId: go
    displayName: Go
roles:
  - roleId: backend-dev
    name: Backend Developer
    requiredSkills:
      rust: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0644))

	_, _, err := execute(t, "validate-catalog", path)
	assert.ErrorContains(t, err, "rust")
}

func TestExportCatalogCommand(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "export-catalog", "--catalog", sampleCatalog, "--format", "json")
	require.NoError(t, err)

	c, err := catalog.Parse([]byte(stdout), catalog.FormatJSON, "exported")
	require.NoError(t, err)
	assert.Equal(t, "2024.2", c.Version())
	assert.Len(t, c.Roles(), 6)
}

func TestExportCatalogCommand_YAMLFile(t *testing.T) {
	isolateEnv(t)
	outFile := filepath.Join(t.TempDir(), "catalog.yaml")

	_, _, err := execute(t, "export-catalog", "--catalog", "../../internal/catalog/testdata/catalog.json", "-f", "yaml", "-o", outFile)
	require.NoError(t, err)

	c, err := catalog.Load(outFile)
	require.NoError(t, err)
	assert.Len(t, c.SkillIDs(), 5)
}

func TestExportCatalogCommand_UnsupportedFormat(t *testing.T) {
	isolateEnv(t)

	_, _, err := execute(t, "export-catalog", "--catalog", sampleCatalog, "--format", "toml")
	assert.ErrorContains(t, err, "unsupported format")
}
