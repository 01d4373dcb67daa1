// Package core runs the scan pipeline: walk the tree, load admitted files in
// parallel and assemble the ScanResult.
package core

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/FarhamAghdasi/send-ai/internal/filesystem"
	"github.com/FarhamAghdasi/send-ai/internal/filter"
	"github.com/FarhamAghdasi/send-ai/internal/signatures"
	"github.com/FarhamAghdasi/send-ai/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxRead is the per-file read ceiling when none is configured
const DefaultMaxRead int64 = 1024 * 1024

// ProgressCallback is called to report scan progress. During the load phase
// it is called from worker goroutines and must be safe for concurrent use.
type ProgressCallback func(phase string, current, total int, message string)

// Options configures a pipeline
type Options struct {
	Filter           *filter.Config            // Required
	Workers          int                       // <= 0 means runtime.NumCPU() * 2
	MaxReadBytes     int64                     // <= 0 means DefaultMaxRead
	FallbackEncoding string                    // Optional WHATWG charset label
	Signatures       *models.SignatureDatabase // nil means the built-in table
	Tokens           TokenCounter              // Optional
}

// Pipeline is the scan engine. A pipeline holds only immutable configuration
// and may run several scans, including concurrently.
type Pipeline struct {
	filter   *filter.Config
	workers  int
	maxRead  int64
	decoder  *filesystem.Decoder
	matcher  *signatures.Matcher
	tokens   TokenCounter
	logger   *zap.Logger
	progress ProgressCallback
}

// NewPipeline validates opts and creates a pipeline. Errors are configuration
// errors; nothing has touched the filesystem yet.
func NewPipeline(opts Options, logger *zap.Logger) (*Pipeline, error) {
	if opts.Filter == nil {
		return nil, errors.New("pipeline requires a filter configuration")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	maxRead := opts.MaxReadBytes
	if maxRead <= 0 {
		maxRead = DefaultMaxRead
	}

	decoder, err := filesystem.NewDecoder(opts.FallbackEncoding)
	if err != nil {
		return nil, err
	}

	db := opts.Signatures
	if db == nil {
		db, err = signatures.Builtin()
		if err != nil {
			return nil, fmt.Errorf("failed to load signatures: %w", err)
		}
	}

	return &Pipeline{
		filter:  opts.Filter,
		workers: workers,
		maxRead: maxRead,
		decoder: decoder,
		matcher: signatures.NewMatcher(db, opts.Filter),
		tokens:  opts.Tokens,
		logger:  logger,
	}, nil
}

// SetProgressCallback sets the progress callback function
func (p *Pipeline) SetProgressCallback(cb ProgressCallback) {
	p.progress = cb
}

// Workers returns the effective worker pool size
func (p *Pipeline) Workers() int {
	return p.workers
}

// Scan runs one full pass over root. The only error is a fatal one (see
// filesystem.ErrInvalidRoot); every other problem is recorded in the result.
func (p *Pipeline) Scan(root string) (*models.ScanResult, error) {
	logger := p.logger.With(zap.String("run_id", uuid.NewString()))
	start := time.Now()

	logger.Info("Starting scan",
		zap.String("path", root),
		zap.Int("workers", p.workers),
		zap.Int64("max_read", p.maxRead))

	walked, err := filesystem.NewWalker(p.filter, logger).Walk(root)
	if err != nil {
		return nil, err
	}

	nodes := walked.Tree.Files()
	p.reportProgress("walk", len(nodes), walked.FilesSeen,
		fmt.Sprintf("Admitted %d of %d files", len(nodes), walked.FilesSeen))

	loader := NewLoader(p.workers, p.maxRead, p.decoder, p.matcher, p.tokens, logger)
	loader.progress = p.progress
	records := loader.Load(nodes)

	result := &models.ScanResult{
		Root:    walked.Tree.Path,
		Tree:    walked.Tree,
		Files:   records,
		Skipped: walked.Skipped,
		Summary: models.Summary{FilesScanned: walked.FilesSeen},
	}
	result.Tally()

	logger.Info("Scan completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("files_scanned", result.Summary.FilesScanned),
		zap.Int("files_admitted", result.Summary.FilesAdmitted),
		zap.Int("files_sensitive", result.Summary.FilesSensitive),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// reportProgress calls the progress callback if set
func (p *Pipeline) reportProgress(phase string, current, total int, message string) {
	if p.progress != nil {
		p.progress(phase, current, total, message)
	}
}
