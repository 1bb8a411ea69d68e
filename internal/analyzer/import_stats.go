package analyzer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/penwyp/go-dose-monitor/internal/util"
)

// ImportStats counts what happened to the records of an import run.
type ImportStats struct {
	files      int64
	imported   int64
	duplicates int64
	invalid    int64
	failures   int64

	mu           sync.Mutex
	failedFiles  []string
	duplicateIDs []string
}

func NewImportStats() *ImportStats {
	return &ImportStats{}
}

func (s *ImportStats) IncrementFiles() {
	atomic.AddInt64(&s.files, 1)
}

func (s *ImportStats) IncrementImported() {
	atomic.AddInt64(&s.imported, 1)
}

// IncrementDuplicate counts a record skipped because its id is taken
func (s *ImportStats) IncrementDuplicate(id string) {
	atomic.AddInt64(&s.duplicates, 1)

	s.mu.Lock()
	s.duplicateIDs = append(s.duplicateIDs, id)
	s.mu.Unlock()
}

// AddInvalid counts lines the parser skipped
func (s *ImportStats) AddInvalid(n int64) {
	atomic.AddInt64(&s.invalid, n)
}

// IncrementFailure counts a file that could not be read at all
func (s *ImportStats) IncrementFailure(path string) {
	atomic.AddInt64(&s.failures, 1)

	s.mu.Lock()
	s.failedFiles = append(s.failedFiles, path)
	s.mu.Unlock()
}

func (s *ImportStats) Files() int64 { return atomic.LoadInt64(&s.files) }
func (s *ImportStats) Imported() int64 { return atomic.LoadInt64(&s.imported) }
func (s *ImportStats) Duplicates() int64 { return atomic.LoadInt64(&s.duplicates) }
func (s *ImportStats) Invalid() int64 { return atomic.LoadInt64(&s.invalid) }
func (s *ImportStats) Failures() int64 { return atomic.LoadInt64(&s.failures) }

// FailedFiles returns a copy of the paths that failed to parse
func (s *ImportStats) FailedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.failedFiles...)
}

// Summary is the one-line result printed after an import.
func (s *ImportStats) Summary() string {
	msg := fmt.Sprintf("Imported %d intakes from %d files (%d already present, %d invalid lines)",
		s.Imported(), s.Files(), s.Duplicates(), s.Invalid())
	if failures := s.Failures(); failures > 0 {
		msg += fmt.Sprintf(", %d files unreadable", failures)
	}
	return msg
}

// PrintProgress logs how many files have been processed so far
func (s *ImportStats) PrintProgress(processed, total int64) {
	util.LogInfof("Import progress: processed %d/%d files, %d imported/%d duplicates/%d invalid",
		processed, total, s.Imported(), s.Duplicates(), s.Invalid())
}

// PrintFinalStats logs the totals and the files that failed
func (s *ImportStats) PrintFinalStats() {
	util.LogInfo("Import finished",
		util.F("files", s.Files()),
		util.F("imported", s.Imported()),
		util.F("duplicates", s.Duplicates()),
		util.F("invalid", s.Invalid()),
		util.F("failures", s.Failures()))

	s.mu.Lock()
	failed := append([]string(nil), s.failedFiles...)
	dups := len(s.duplicateIDs)
	s.mu.Unlock()

	for _, path := range failed {
		util.LogWarn(fmt.Sprintf("  unreadable: %s", path))
	}
	if dups > 0 {
		util.LogDebug(fmt.Sprintf("Skipped %d records already in the store", dups))
	}
}
