package embed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests need the exported model; see models/README in the repo root.
var (
	testModelDir      = filepath.Join("..", "..", "models", "all-MiniLM-L6-v2")
	testModelPath     = filepath.Join(testModelDir, "model.onnx")
	testTokenizerPath = filepath.Join(testModelDir, "tokenizer.json")
)

func skipWithoutModel(t *testing.T) {
	t.Helper()
	for _, p := range []string{testModelPath, testTokenizerPath, filepath.Join(testModelDir, sharedLibraryName())} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Skipf("%s not found, skipping ONNX integration test", p)
		}
	}
}

func newTestONNX(t *testing.T) *ONNXEmbedder {
	t.Helper()
	skipWithoutModel(t)
	e, err := NewONNX(ONNXConfig{ModelPath: testModelPath, TokenizerPath: testTokenizerPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestONNXEmbedder_Dimension(t *testing.T) {
	e := newTestONNX(t)
	assert.Equal(t, 384, e.Dimension())
	assert.Equal(t, "all-MiniLM-L6-v2", e.ModelID())
}

func TestONNXEmbedder_BatchMatchesSingle(t *testing.T) {
	e := newTestONNX(t)
	ctx := context.Background()

	texts := []string{
		"The receiving party shall keep all information strictly confidential.",
		"This agreement is governed by the laws of the State of New York.",
	}
	batch, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, Cosine(single, batch[i]), 1e-4)
	}
}

func TestONNXEmbedder_SemanticOrdering(t *testing.T) {
	e := newTestONNX(t)
	vecs, err := e.EmbedBatch(context.Background(), []string{
		"Either party may terminate this agreement with thirty days notice.",
		"This agreement may be terminated by either party upon written notice.",
		"Payment is due within thirty days of the invoice date.",
	})
	require.NoError(t, err)
	assert.Greater(t, Cosine(vecs[0], vecs[1]), Cosine(vecs[0], vecs[2]))
}

func TestONNXEmbedder_LongInputTruncated(t *testing.T) {
	e := newTestONNX(t)
	long := ""
	for i := 0; i < 600; i++ {
		long += "indemnify "
	}
	vec, err := e.Embed(context.Background(), long)
	require.NoError(t, err)
	assert.Len(t, vec, e.Dimension())
}
