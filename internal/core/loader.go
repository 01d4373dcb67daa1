package core

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/FarhamAghdasi/send-ai/internal/filesystem"
	"github.com/FarhamAghdasi/send-ai/internal/signatures"
	"github.com/FarhamAghdasi/send-ai/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TokenCounter counts tokens in decoded text. Implementations must be safe for
// concurrent use.
type TokenCounter interface {
	Count(text string) int
}

// Loader reads admitted files concurrently and produces one record per file
type Loader struct {
	workers  int
	maxRead  int64
	decoder  *filesystem.Decoder
	matcher  *signatures.Matcher
	tokens   TokenCounter
	logger   *zap.Logger
	progress ProgressCallback
}

// NewLoader creates a content loader. workers and maxRead must be positive.
func NewLoader(workers int, maxRead int64, decoder *filesystem.Decoder, matcher *signatures.Matcher, tokens TokenCounter, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		workers: workers,
		maxRead: maxRead,
		decoder: decoder,
		matcher: matcher,
		tokens:  tokens,
		logger:  logger,
	}
}

// Load returns the records for nodes in the same order. Per-file failures are
// captured in the records; Load itself never fails.
func (l *Loader) Load(nodes []*models.TreeNode) []*models.FileRecord {
	records := make([]*models.FileRecord, len(nodes))
	total := len(nodes)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(l.workers)

	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			// Each job owns exactly one slot
			records[i] = l.loadFile(node)
			if l.progress != nil {
				l.progress("load", int(done.Add(1)), total, node.RelPath)
			}
			return nil
		})
	}

	// Barrier: nothing reads records before every job has written its slot
	_ = g.Wait()
	return records
}

// loadFile reads, decodes and annotates a single file
func (l *Loader) loadFile(node *models.TreeNode) *models.FileRecord {
	rec := &models.FileRecord{
		Path:    node.Path,
		RelPath: node.RelPath,
		Size:    node.Size,
		ModTime: node.ModTime,
	}

	data, exceeded, err := filesystem.ReadLimited(node.Path, l.maxRead)
	if err != nil {
		rec.Status = models.StatusError
		rec.Error = err.Error()
		l.logger.Debug("Failed to read file", zap.String("path", node.RelPath), zap.Error(err))
		return rec
	}
	rec.RawLength = int64(len(data))

	if exceeded {
		rec.Status = models.StatusSizeExceeded
		rec.Reason = fmt.Sprintf("%d bytes, limit %s", node.Size, filesystem.FormatSize(l.maxRead))
		l.logger.Debug("File exceeds read limit",
			zap.String("path", node.RelPath),
			zap.Int64("size", node.Size),
			zap.Int64("limit", l.maxRead))
		return rec
	}

	text, encoding, err := l.decoder.Decode(data)
	if err != nil {
		if errors.Is(err, filesystem.ErrBinary) {
			rec.Status = models.StatusBinary
		} else {
			rec.Status = models.StatusDecodeError
			rec.Reason = err.Error()
		}
		l.logger.Debug("Skipping undecodable file", zap.String("path", node.RelPath), zap.Error(err))
		return rec
	}
	rec.Encoding = encoding

	rec.Matches = l.matcher.Match(text)
	if ok, reason := l.matcher.Admits(rec.Matches); !ok {
		rec.Status = models.StatusFiltered
		rec.Reason = reason
		return rec
	}

	rec.Status = models.StatusOK
	rec.Content = text
	if l.tokens != nil {
		rec.Tokens = l.tokens.Count(text)
	}
	return rec
}
