// File: confmux/builder_test.go
package confmux_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-y/confmux"
)

func TestBuilderLayering(t *testing.T) {
	dir := t.TempDir()
	systemPath := writeFile(t, dir, "system.toml", `
shared = "from-system"
system_only = "sys"
`)
	localPath := writeFile(t, dir, "local.toml", `
shared = "from-local"
`)

	store, err := confmux.NewBuilder().
		WithFile(systemPath, 1).
		WithFile(localPath, 10).
		Build()
	require.NoError(t, err)
	defer store.Close()

	// Reads target the highest-priority layer only.
	shared, err := store.String("shared")
	require.NoError(t, err)
	assert.Equal(t, "from-local", shared)

	// A key only the lower layer holds is invisible to raw reads...
	_, err = store.String("system_only")
	assert.ErrorIs(t, err, confmux.ErrNotFound)

	// ...but iteration still walks every layer.
	seen := make(map[string]string)
	err = store.ForEach(func(name, value string) error {
		if _, exists := seen[name]; !exists {
			seen[name] = value
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from-local", seen["shared"])
	assert.Equal(t, "sys", seen["system_only"])
}

func TestBuilderOpenFailure(t *testing.T) {
	badPath := writeFile(t, t.TempDir(), "bad.toml", "not [ valid")

	_, err := confmux.NewBuilder().
		WithFile(badPath, 1).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), badPath)
}

func TestBuilderValidator(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.toml", `port = "8080"`)

	t.Run("PassingValidator", func(t *testing.T) {
		store, err := confmux.NewBuilder().
			WithFile(path, 1).
			WithValidator(func(s *confmux.Store) error {
				_, err := s.String("port")
				return err
			}).
			Build()
		require.NoError(t, err)
		store.Close()
	})

	t.Run("FailingValidator", func(t *testing.T) {
		_, err := confmux.NewBuilder().
			WithFile(path, 1).
			WithValidator(func(s *confmux.Store) error {
				return fmt.Errorf("missing required value")
			}).
			Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})
}

func TestBuilderNilBackend(t *testing.T) {
	_, err := confmux.NewBuilder().
		WithBackend(nil, 1).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil backend")
}

func TestBuilderDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "myapp.toml", `discovered = "yes"`)

	opts := confmux.DiscoveryOptions{
		Name:       "myapp",
		Extensions: []string{".toml"},
		Paths:      []string{dir},
	}

	t.Run("SearchPath", func(t *testing.T) {
		store, err := confmux.NewBuilder().
			WithDiscovery(opts, nil, 1).
			Build()
		require.NoError(t, err)
		defer store.Close()

		value, err := store.String("discovered")
		require.NoError(t, err)
		assert.Equal(t, "yes", value)
	})

	t.Run("CLIFlagWins", func(t *testing.T) {
		other := writeFile(t, dir, "other.toml", `discovered = "cli"`)
		flagOpts := opts
		flagOpts.CLIFlag = "--config"

		store, err := confmux.NewBuilder().
			WithDiscovery(flagOpts, []string{"--config", other}, 1).
			Build()
		require.NoError(t, err)
		defer store.Close()

		value, err := store.String("discovered")
		require.NoError(t, err)
		assert.Equal(t, "cli", value)
	})

	t.Run("EnvVarWins", func(t *testing.T) {
		other := writeFile(t, dir, "envpicked.toml", `discovered = "env"`)
		envOpts := opts
		envOpts.EnvVar = "MYAPP_CONFIG"
		t.Setenv("MYAPP_CONFIG", other)

		store, err := confmux.NewBuilder().
			WithDiscovery(envOpts, nil, 1).
			Build()
		require.NoError(t, err)
		defer store.Close()

		value, err := store.String("discovered")
		require.NoError(t, err)
		assert.Equal(t, "env", value)
	})

	t.Run("NothingFoundYieldsEmptyStore", func(t *testing.T) {
		missing := confmux.DiscoveryOptions{
			Name:       "nosuchapp",
			Extensions: []string{".toml"},
			Paths:      []string{t.TempDir()},
		}
		store, err := confmux.NewBuilder().
			WithDiscovery(missing, nil, 1).
			Build()
		require.NoError(t, err)
		defer store.Close()

		assert.Zero(t, store.Len())
	})
}
