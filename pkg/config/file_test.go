package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, 8, f.DefaultCellCount())
	assert.False(t, f.CarryOverCurrents())
	assert.Equal(t, 25.0, f.MinTemperature())
	assert.Equal(t, 40.0, f.MaxTemperature())
	assert.False(t, f.AllowNonRootAccess())
	assert.Equal(t, 60, f.SessionIdleTimeoutMinutes())
}

func TestEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, f.DefaultCellCount())
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellentry.json")
	f, err := NewFile(path)
	require.NoError(t, err)

	f.SetDefaultCellCount(4)
	f.SetCarryOverCurrents(true)
	f.SetTemperatureRange(20, 30)
	f.SetSessionIdleTimeoutMinutes(5)
	require.NoError(t, f.Save())

	loaded, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.DefaultCellCount())
	assert.True(t, loaded.CarryOverCurrents())
	assert.Equal(t, 20.0, loaded.MinTemperature())
	assert.Equal(t, 30.0, loaded.MaxTemperature())
	assert.Equal(t, 5, loaded.SessionIdleTimeoutMinutes())
}

func TestSaveAndLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellentry.yaml")
	f, err := NewFile(path)
	require.NoError(t, err)

	f.SetCarryOverCurrents(true)
	f.SetAllowNonRootAccess(true)
	require.NoError(t, f.Save())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "carryOverCurrents: true")

	loaded, err := NewFile(path)
	require.NoError(t, err)
	assert.True(t, loaded.CarryOverCurrents())
	assert.True(t, loaded.AllowNonRootAccess())
	assert.Equal(t, 8, loaded.DefaultCellCount())
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err := NewFile(bad)
	assert.Error(t, err)

	outOfRange := filepath.Join(dir, "range.yml")
	require.NoError(t, os.WriteFile(outOfRange, []byte("defaultCellCount: 30\n"), 0644))
	_, err = NewFile(outOfRange)
	assert.Error(t, err)
}

func TestSettersPanicOnInvalidValues(t *testing.T) {
	f := NewFileFromConfig(nil, "")

	assert.Panics(t, func() { f.SetDefaultCellCount(0) })
	assert.Panics(t, func() { f.SetDefaultCellCount(21) })
	assert.Panics(t, func() { f.SetTemperatureRange(40, 25) })
	assert.Panics(t, func() { f.SetSessionIdleTimeoutMinutes(-1) })
}

func TestRawFileConfigRoundTrip(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	f.SetDefaultCellCount(12)

	raw, err := NewRawFileConfigFromConfig(f)
	require.NoError(t, err)
	require.NotNil(t, raw.DefaultCellCount)
	assert.Equal(t, 12, *raw.DefaultCellCount)

	again := NewFileFromConfig(raw, "")
	assert.Equal(t, f.LogrusFields(), again.LogrusFields())

	_, err = NewRawFileConfigFromConfig(nil)
	assert.Error(t, err)
}
