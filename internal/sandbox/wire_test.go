package sandbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSpecEnv(t *testing.T, spec InitSpec) {
	t.Helper()
	for _, kv := range spec.EncodeEnv() {
		name, value, ok := strings.Cut(kv, "=")
		require.True(t, ok, "malformed env entry %q", kv)
		t.Setenv(name, value)
	}
}

func TestInitSpecRoundTrip(t *testing.T) {
	spec := InitSpec{
		Command:       `echo "hello world" && ls -la`,
		WorkingDir:    "/work/project",
		WritableRoots: []string{"/work/project", "/tmp", "/var/tmp"},
	}
	setSpecEnv(t, spec)

	got, err := DecodeInitSpecFromEnv()
	require.NoError(t, err)
	assert.Equal(t, spec, got)
}

func TestInitSpecNoRoots(t *testing.T) {
	spec := InitSpec{Command: "true", WorkingDir: "/"}
	setSpecEnv(t, spec)

	got, err := DecodeInitSpecFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "true", got.Command)
	assert.Empty(t, got.WritableRoots)
}

func TestInitSpecEmptyCommand(t *testing.T) {
	// sh -c '' is a valid no-op; present-but-empty must decode.
	spec := InitSpec{Command: "", WorkingDir: "/"}
	setSpecEnv(t, spec)

	got, err := DecodeInitSpecFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "", got.Command)
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	t.Setenv(envInitCommand, "true")
	// Working dir and roots count deliberately unset.
	t.Setenv(envInitWorkingDir, "")
	t.Setenv(envInitRootsCount, "")

	_, err := DecodeInitSpecFromEnv()
	assert.Error(t, err)
}

func TestDecodeRejectsBadCount(t *testing.T) {
	t.Setenv(envInitCommand, "true")
	t.Setenv(envInitWorkingDir, "/")
	t.Setenv(envInitRootsCount, "two")

	_, err := DecodeInitSpecFromEnv()
	assert.Error(t, err)
}

func TestDecodeRejectsMissingIndexedRoot(t *testing.T) {
	t.Setenv(envInitCommand, "true")
	t.Setenv(envInitWorkingDir, "/")
	t.Setenv(envInitRootsCount, "2")
	t.Setenv(envInitRootPrefix+"0", "/tmp")
	// SHELLBOX_INIT_ROOT_1 missing.

	_, err := DecodeInitSpecFromEnv()
	assert.Error(t, err)
}

func TestScrubInitEnv(t *testing.T) {
	env := []string{
		"PATH=/usr/bin",
		InitEnvVar + "=1",
		envInitCommand + "=echo hi",
		envInitWorkingDir + "=/work",
		envInitRootsCount + "=1",
		envInitRootPrefix + "0=/tmp",
		MarkerSandboxVar + "=" + MarkerSandboxValue,
		MarkerNetworkDisabledVar + "=" + MarkerNetworkDisabledValue,
		"HOME=/root",
	}

	got := ScrubInitEnv(env)

	assert.Equal(t, []string{
		"PATH=/usr/bin",
		MarkerSandboxVar + "=" + MarkerSandboxValue,
		MarkerNetworkDisabledVar + "=" + MarkerNetworkDisabledValue,
		"HOME=/root",
	}, got)
}
