package keywords

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabank_UnionAcrossUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	bank := NewDatabank(path, nil)

	require.NoError(t, bank.Update([]string{"x", "y"}))
	require.NoError(t, bank.Update([]string{"y", "z"}))

	assert.Equal(t, []string{"x", "y", "z"}, bank.Load())
}

func TestDatabank_EmptyUpdateIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	bank := NewDatabank(path, nil)

	require.NoError(t, bank.Update(nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no-op update must not create the file")
}

func TestDatabank_ToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	bank := NewDatabank(path, nil)
	assert.Empty(t, bank.Load())

	// An update replaces the corrupt file with a valid set.
	require.NoError(t, bank.Update([]string{"fresh"}))
	assert.Equal(t, []string{"fresh"}, bank.Load())
}

func TestDatabank_DropsEmptyKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	bank := NewDatabank(path, nil)

	require.NoError(t, bank.Update([]string{"", "kept"}))
	assert.Equal(t, []string{"kept"}, bank.Load())
}

func TestDatabank_AtomicReplaceLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.json")
	bank := NewDatabank(path, nil)
	require.NoError(t, bank.Update([]string{"a"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keywords.json", entries[0].Name())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored []string
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, []string{"a"}, stored)
}
