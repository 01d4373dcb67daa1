package core

import (
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/FarhamAghdasi/send-ai/internal/filesystem"
	"github.com/FarhamAghdasi/send-ai/internal/filter"
	"github.com/FarhamAghdasi/send-ai/internal/signatures"
	"github.com/FarhamAghdasi/send-ai/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTokens struct {
	calls atomic.Int64
}

func (c *countingTokens) Count(text string) int {
	c.calls.Add(1)
	return len(strings.Fields(text))
}

func newLoader(t *testing.T, workers int, maxRead int64, fallback string, tokens TokenCounter) *Loader {
	t.Helper()
	cfg, err := filter.Options{}.Build()
	require.NoError(t, err)
	db, err := signatures.Builtin()
	require.NoError(t, err)
	decoder, err := filesystem.NewDecoder(fallback)
	require.NoError(t, err)
	return NewLoader(workers, maxRead, decoder, signatures.NewMatcher(db, cfg), tokens, nil)
}

func nodeFor(root, rel string, size int64) *models.TreeNode {
	return &models.TreeNode{
		Kind:    models.KindFile,
		Name:    filepath.Base(rel),
		Path:    filepath.Join(root, filepath.FromSlash(rel)),
		RelPath: rel,
		Size:    size,
	}
}

func TestLoader_Statuses(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "text.txt", "plain text here")
	writeFile(t, root, "bin.dat", "abc\x00def")
	writeFile(t, root, "latin.txt", "caf\xe9")
	writeFile(t, root, "big.txt", strings.Repeat("z", 100))

	nodes := []*models.TreeNode{
		nodeFor(root, "text.txt", 15),
		nodeFor(root, "bin.dat", 7),
		nodeFor(root, "latin.txt", 4),
		nodeFor(root, "big.txt", 100),
		nodeFor(root, "gone.txt", 1),
	}

	records := newLoader(t, 3, 64, "", nil).Load(nodes)
	require.Len(t, records, len(nodes))

	want := []models.LoadStatus{
		models.StatusOK,
		models.StatusBinary,
		models.StatusDecodeError,
		models.StatusSizeExceeded,
		models.StatusError,
	}
	for i, rec := range records {
		assert.Equal(t, nodes[i].RelPath, rec.RelPath)
		assert.Equal(t, want[i], rec.Status, rec.RelPath)
		if rec.Status != models.StatusOK {
			assert.Empty(t, rec.Content, rec.RelPath)
			assert.NotEmpty(t, rec.Describe(), rec.RelPath)
		}
	}

	assert.Equal(t, "plain text here", records[0].Content)
	assert.Equal(t, "utf-8", records[0].Encoding)
	assert.Equal(t, int64(64), records[3].RawLength)
	assert.Contains(t, records[3].Reason, "limit 64")
}

func TestLoader_FallbackEncoding(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "latin.txt", "caf\xe9")

	records := newLoader(t, 1, DefaultMaxRead, "windows-1252", nil).Load([]*models.TreeNode{nodeFor(root, "latin.txt", 4)})

	require.Len(t, records, 1)
	assert.Equal(t, models.StatusOK, records[0].Status)
	assert.Equal(t, "café", records[0].Content)
	assert.Equal(t, "windows-1252", records[0].Encoding)
}

func TestLoader_TokensOnlyForContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "one two three")
	writeFile(t, root, "b.bin", "\x00\x01")

	tokens := &countingTokens{}
	records := newLoader(t, 2, DefaultMaxRead, "", tokens).Load([]*models.TreeNode{
		nodeFor(root, "a.txt", 13),
		nodeFor(root, "b.bin", 2),
	})

	assert.Equal(t, 3, records[0].Tokens)
	assert.Equal(t, 0, records[1].Tokens)
	assert.Equal(t, int64(1), tokens.calls.Load())
}

func TestLoader_ManyFilesSingleWorker(t *testing.T) {
	root := t.TempDir()
	var nodes []*models.TreeNode
	for i := 0; i < 50; i++ {
		rel := filepath.ToSlash(filepath.Join("d", strings.Repeat("n", i+1)+".txt"))
		writeFile(t, root, rel, rel)
		nodes = append(nodes, nodeFor(root, rel, int64(len(rel))))
	}

	records := newLoader(t, 1, DefaultMaxRead, "", nil).Load(nodes)
	for i, rec := range records {
		require.NotNil(t, rec)
		assert.Equal(t, nodes[i].RelPath, rec.Content)
	}
}
