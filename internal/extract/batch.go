package extract

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/odens-ab/pricing-cli/internal/model"
	"github.com/odens-ab/pricing-cli/internal/pdf"
)

// Result is the outcome of extracting a batch of quote documents.
type Result struct {
	Quotes  []model.Quote
	Dropped int // line-level parse and validation failures
	Skipped int // whole documents skipped (missing date)
}

// Batch extracts quotes from a set of PDF files.
type Batch struct {
	extractor     pdf.Extractor
	parser        *Parser
	maxConcurrent int
}

// NewBatch creates a batch extractor. maxConcurrent bounds parallel
// pdftotext invocations; values < 1 mean sequential.
func NewBatch(extractor pdf.Extractor, parser *Parser, maxConcurrent int) *Batch {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Batch{extractor: extractor, parser: parser, maxConcurrent: maxConcurrent}
}

// Run extracts text from every file concurrently, then parses documents in
// input order so quote ids and ordering are reproducible for a fixed batch.
// Per-document failures are logged and skipped; only text-extraction errors
// (a broken pdftotext install, a cancelled context) abort the batch.
func (b *Batch) Run(ctx context.Context, paths []string) (*Result, error) {
	pageSets := make([][]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.maxConcurrent)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			pages, err := b.extractor.ExtractPages(gctx, path)
			if err != nil {
				return err
			}
			pageSets[i] = pages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, path := range paths {
		quotes, dropped, err := b.parser.ParseDocument(pageSets[i], path)
		if err != nil {
			result.Skipped++
			zap.L().Error("extract: skipping document", zap.String("source", path), zap.Error(err))
			continue
		}
		result.Quotes = append(result.Quotes, quotes...)
		result.Dropped += dropped
	}

	zap.L().Info("extract: batch complete",
		zap.Int("documents", len(paths)),
		zap.Int("quotes", len(result.Quotes)),
		zap.Int("dropped_lines", result.Dropped),
		zap.Int("skipped_documents", result.Skipped),
	)
	return result, nil
}
