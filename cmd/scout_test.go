package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRoles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  - HR\n  - Recruiter\n"), 0o644))

	roles, err := loadRoles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"HR", "Recruiter"}, roles)
}

func TestLoadRoles_EmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles: []\n"), 0o644))

	_, err := loadRoles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no roles")
}

func TestLoadRoles_MissingFile(t *testing.T) {
	_, err := loadRoles(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRoles_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles: [unclosed"), 0o644))

	_, err := loadRoles(path)
	require.Error(t, err)
}
