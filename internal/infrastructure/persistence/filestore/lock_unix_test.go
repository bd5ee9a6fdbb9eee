//go:build unix

package filestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tabsession/internal/infrastructure/persistence/filestore"
)

func TestLock_IsExclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := filestore.Lock(dir)
	require.NoError(t, err)

	_, err = filestore.Lock(dir)
	assert.ErrorIs(t, err, filestore.ErrLocked)

	require.NoError(t, first.Unlock())
	require.NoError(t, first.Unlock())

	second, err := filestore.Lock(dir)
	require.NoError(t, err)
	require.NoError(t, second.Unlock())
}
