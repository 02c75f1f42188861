package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
)

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbedderConfig
		wantErr bool
		errMsg  string
		dims    uint64
	}{
		{
			name: "valid config",
			cfg: config.EmbedderConfig{
				APIKey: "test-key",
			},
			dims: VectorSize,
		},
		{
			name: "large model",
			cfg: config.EmbedderConfig{
				APIKey: "test-key",
				Model:  "text-embedding-3-large",
			},
			dims: 3072,
		},
		{
			name: "unknown model falls back",
			cfg: config.EmbedderConfig{
				APIKey: "test-key",
				Model:  "local-embedder",
			},
			dims: VectorSize,
		},
		{
			name:    "missing API key",
			cfg:     config.EmbedderConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder, err := NewEmbedder(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, embedder)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dims, embedder.Dimensions())
		})
	}
}

func TestEmbedder_EmbedBatchOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"перший", "другий"}, req.Input)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0.2]},
			{"object":"embedding","index":0,"embedding":[0.1]}
		]}`))
	}))
	defer srv.Close()

	embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := embedder.EmbedBatch(t.Context(), []string{"перший", "другий"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1}, {0.2}}, got)

	empty, err := embedder.EmbedBatch(t.Context(), nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestEmbedder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer srv.Close()

	embedder, err := NewEmbedder(config.EmbedderConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = embedder.Embed(t.Context(), "текст")
	assert.Error(t, err)
}
