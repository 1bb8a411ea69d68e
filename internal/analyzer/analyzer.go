package analyzer

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/data/parser"
	"github.com/penwyp/go-dose-monitor/internal/data/scanner"
	"github.com/penwyp/go-dose-monitor/internal/data/store"
	"github.com/penwyp/go-dose-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// Config controls the batch pipelines.
type Config struct {
	OutputFormat string
	Window       aggregator.Window
	Timezone     string
	Concurrency  int
}

// Analyzer runs the batch pipelines against an intake store: importing
// exports into it and reporting statistics out of it.
type Analyzer struct {
	config     *Config
	store      store.Store
	parser     *parser.Parser
	aggregator *aggregator.Aggregator
	now        func() time.Time
}

// New creates an Analyzer. now defaults to the shared time provider.
func New(config *Config, st store.Store, now func() time.Time) (*Analyzer, error) {
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.NumCPU()
	}
	if config.Window == 0 {
		config.Window = aggregator.DefaultWindow
	}
	if !config.Window.Valid() {
		return nil, fmt.Errorf("invalid window %d", int(config.Window))
	}
	agg, err := aggregator.NewAggregatorWithTimezone(config.Timezone)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = func() time.Time { return util.GetTimeProvider().Now() }
	}
	return &Analyzer{
		config:     config,
		store:      st,
		parser:     parser.NewParser(config.Concurrency),
		aggregator: agg,
		now:        now,
	}, nil
}

// Import scans paths for JSONL exports and inserts every valid record.
// Records whose id is already stored count as duplicates.
func (a *Analyzer) Import(ctx context.Context, paths []string) (*ImportStats, error) {
	startTime := time.Now()

	// Phase 1: Scan files
	files, err := scanner.ScanPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .jsonl files found in %v", paths)
	}
	scanDuration := time.Since(startTime)
	util.LogDebug(fmt.Sprintf("Phase 1 - File scan duration: %v, found %d files", scanDuration, len(files)))

	// Phase 2: Parse and insert
	stats := NewImportStats()
	insertStart := time.Now()
	var processed int64
	for result := range a.parser.ParseFiles(files) {
		stats.IncrementFiles()
		processed++

		if result.Error != nil {
			stats.IncrementFailure(result.File)
			util.LogWarnf("Failed to parse file %s: %v", result.File, result.Error)
			continue
		}
		stats.AddInvalid(int64(result.Skipped))

		for _, e := range result.Events {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if _, err := a.store.Insert(ctx, e); err != nil {
				if model.IsValidationError(err) {
					stats.IncrementDuplicate(e.ID)
					continue
				}
				return stats, fmt.Errorf("import %s: %w", result.File, err)
			}
			stats.IncrementImported()
		}

		if processed%100 == 0 {
			stats.PrintProgress(processed, int64(len(files)))
		}
	}
	insertDuration := time.Since(insertStart)

	stats.PrintFinalStats()
	util.LogDebug(fmt.Sprintf("Total duration: %v (scan:%v insert:%v)",
		time.Since(startTime), scanDuration, insertDuration))
	return stats, nil
}

// Report aggregates the stored intakes over the configured window and
// writes them in the configured format.
func (a *Analyzer) Report(ctx context.Context, w io.Writer) error {
	f, err := formatter.NewFormatter(a.config.OutputFormat)
	if err != nil {
		return err
	}

	loadStart := time.Now()
	events, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	util.LogDebug(fmt.Sprintf("Loaded %d intakes in %v", len(events), time.Since(loadStart)))

	report, err := a.aggregator.Aggregate(events, a.config.Window, a.now())
	if err != nil {
		return err
	}
	return f.FormatReport(w, report)
}
