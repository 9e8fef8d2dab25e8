// The indexer is a one-shot CLI: it loads FAQ entries from source files,
// cleans and chunks them, publishes a fresh corpus snapshot, and notifies
// the running API instances over NATS.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/bootstrap"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/config"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/ingestion"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/observability/logging"
)

func main() {
	var (
		sourcePath = flag.String("source", "", "FAQ source file (.jsonl or .xlsx)")
		pdfPath    = flag.String("pdf", "", "optional PDF attachment to index as one entry")
		pdfID      = flag.String("pdf-id", "", "FAQ id for the PDF attachment")
		pdfTitle   = flag.String("pdf-title", "", "title for the PDF attachment")
		dumpChunks = flag.String("dump-chunks", "", "optional path to write the processed chunks as jsonl")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewTextLogger("faq-indexer", cfg.LogLevel)

	if *sourcePath == "" && *pdfPath == "" {
		log.Fatal("at least one of -source or -pdf is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	items, err := loadItems(*sourcePath, *pdfPath, *pdfID, *pdfTitle)
	if err != nil {
		log.Fatalf("load sources: %v", err)
	}
	logger.Info("loaded faq entries", "count", len(items))

	chunker := ingestion.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	passages := chunker.ChunkAll(items)
	logger.Info("chunked corpus", "passages", len(passages))

	if *dumpChunks != "" {
		if err := dumpChunksFile(*dumpChunks, passages); err != nil {
			log.Fatalf("dump chunks: %v", err)
		}
	}

	app, err := bootstrap.NewIndexer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// Long embedding runs are scrapeable while the CLI is alive.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.Metrics.Handler())
		if err := http.ListenAndServe(":"+cfg.IndexerMetricsPort, mux); err != nil {
			logger.Warn("metrics listener stopped", "error", err)
		}
	}()

	start := time.Now()
	err = app.ReindexUC.Reindex(ctx, passages)
	app.Metrics.FinishReindex("faq-indexer", len(passages), time.Since(start), err)
	if err != nil {
		log.Fatalf("reindex error: %v", err)
	}
	logger.Info("reindex complete", "passages", len(passages), "took", time.Since(start))
}

func loadItems(sourcePath, pdfPath, pdfID, pdfTitle string) ([]ingestion.FAQItem, error) {
	var items []ingestion.FAQItem

	if sourcePath != "" {
		switch strings.ToLower(filepath.Ext(sourcePath)) {
		case ".jsonl":
			f, err := os.Open(sourcePath)
			if err != nil {
				return nil, fmt.Errorf("open source: %w", err)
			}
			defer f.Close()
			loaded, err := ingestion.LoadFAQJSONL(f)
			if err != nil {
				return nil, err
			}
			items = append(items, loaded...)
		case ".xlsx":
			loaded, err := ingestion.LoadFAQWorkbook(sourcePath)
			if err != nil {
				return nil, err
			}
			items = append(items, loaded...)
		default:
			return nil, fmt.Errorf("unsupported source format: %s", sourcePath)
		}
	}

	if pdfPath != "" {
		if pdfID == "" {
			return nil, fmt.Errorf("-pdf-id is required with -pdf")
		}
		item, err := ingestion.PDFItem(pdfID, pdfTitle, pdfPath)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func dumpChunksFile(path string, passages []domain.Passage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump file: %w", err)
	}
	defer f.Close()
	return ingestion.WriteChunksJSONL(f, passages)
}
