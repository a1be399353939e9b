// pkg/launchd/registry_test.go

package launchd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryWriteAndFind(t *testing.T) {
	r := &Registry{AgentsDir: filepath.Join(t.TempDir(), "LaunchAgents")}
	d := NewServiceDescriptor("com.drawthings.grpcserver", []string{"/bin/server", "/models"})

	path, err := r.Write(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, r.ServicePath(d.Label), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	assert.Equal(t, path, r.Find(d.Label))
	assert.Empty(t, r.Find("com.example.other"))
}

func TestFindAllVariantsDeduplicatesOverlappingGlobs(t *testing.T) {
	r := &Registry{AgentsDir: t.TempDir()}

	// Matches both the exact-label glob and the loose *drawthings* glob.
	path := filepath.Join(r.AgentsDir, "com.drawthings.grpcserver.plist")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	legacy := filepath.Join(r.AgentsDir, "com.draw-things.grpcserver.7860.plist")
	require.NoError(t, os.WriteFile(legacy, []byte("x"), 0o644))
	unrelated := filepath.Join(r.AgentsDir, "com.apple.something.plist")
	require.NoError(t, os.WriteFile(unrelated, []byte("x"), 0o644))

	matches := r.FindAllVariants(context.Background(), LegacyLabelGlobs)

	assert.Equal(t, []string{legacy, path}, matches)
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := &Registry{AgentsDir: t.TempDir()}
	path := filepath.Join(r.AgentsDir, "com.drawthings.grpcserver.plist")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, r.Remove(context.Background(), path))
	assert.NoFileExists(t, path)

	// Removing again is success, not an error.
	require.NoError(t, r.Remove(context.Background(), path))
}

func TestWriteCreatesAgentsDirOnDemand(t *testing.T) {
	r := &Registry{AgentsDir: filepath.Join(t.TempDir(), "Library", "LaunchAgents")}

	_, err := r.Write(context.Background(), NewServiceDescriptor("com.drawthings.grpcserver", []string{"/bin/server"}))
	require.NoError(t, err)
	assert.DirExists(t, r.AgentsDir)
}
