package handlers

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/domain/mocks"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
)

func openerFor(index ports.SearchIndex, closed *bool) IndexOpener {
	return func(*config.Config) (ports.SearchIndex, func() error, error) {
		return index, func() error {
			*closed = true
			return nil
		}, nil
	}
}

func TestInitHandler_Handle_Success(t *testing.T) {
	tmpDir := t.TempDir()

	index := &mocks.SearchIndex{}
	var closed bool
	handler := NewInitHandler(openerFor(index, &closed), 1536)

	result, err := handler.Handle(t.Context(), tmpDir)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.True(t, result.Collection)
	assert.Equal(t, 1, index.EnsureCollectionCallCount)
	assert.True(t, closed)

	assert.True(t, config.Exists(tmpDir))
	_, err = os.Stat(result.DatabasePath)
	assert.NoError(t, err)
}

func TestInitHandler_Handle_WithoutIndex(t *testing.T) {
	handler := NewInitHandler(nil, 0)

	result, err := handler.Handle(t.Context(), t.TempDir())

	require.NoError(t, err)
	assert.False(t, result.Collection)
}

func TestInitHandler_Handle_AlreadyInitialized(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, config.WriteDefault(tmpDir))

	handler := NewInitHandler(nil, 0)

	_, err := handler.Handle(t.Context(), tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestInitHandler_Handle_CollectionError(t *testing.T) {
	index := &mocks.SearchIndex{Err: errors.New("connection failed")}
	var closed bool
	handler := NewInitHandler(openerFor(index, &closed), 1536)

	_, err := handler.Handle(t.Context(), t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating collection")
	assert.Contains(t, err.Error(), "connection failed")
	assert.True(t, closed)
}

func TestInitHandler_Handle_OpenError(t *testing.T) {
	handler := NewInitHandler(func(*config.Config) (ports.SearchIndex, func() error, error) {
		return nil, nil, errors.New("dial tcp: refused")
	}, 1536)

	_, err := handler.Handle(t.Context(), t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to search index")
}
