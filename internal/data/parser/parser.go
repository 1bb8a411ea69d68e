package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// maxLineSize bounds a single JSONL record
const maxLineSize = 1024 * 1024

// Parser reads intake records stored one JSON object per line.
type Parser struct {
	concurrency int
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File    string
	Events  []model.IntakeEvent
	Skipped int
	Error   error
}

// NewParser creates a new Parser. Concurrency below one is treated as one.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{concurrency: concurrency}
}

// ParseFile parses the JSONL file at path. Lines that are not valid JSON or
// not valid intake records are skipped and counted.
func (p *Parser) ParseFile(path string) ([]model.IntakeEvent, int, error) {
	util.LogDebug(fmt.Sprintf("Start parsing file: %s", path))

	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	return p.Parse(file, path)
}

// Parse reads records from r. name is only used in log messages.
func (p *Parser) Parse(r io.Reader, name string) ([]model.IntakeEvent, int, error) {
	events := []model.IntakeEvent{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineCount := 0
	skipped := 0
	for scanner.Scan() {
		lineCount++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record model.IntakeRecord
		if err := sonic.Unmarshal(line, &record); err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %s:%d - %v", name, lineCount, err))
			skipped++
			continue
		}
		event, err := record.ToEvent()
		if err != nil {
			util.LogWarn(fmt.Sprintf("Skip invalid intake record %s:%d - %v", name, lineCount, err))
			skipped++
			continue
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan %s: %w", name, err)
	}
	return events, skipped, nil
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebug(fmt.Sprintf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency))

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			events, skipped, err := p.ParseFile(f)
			if err != nil {
				util.LogDebug(fmt.Sprintf("File parsing failed: %s - %v", f, err))
			}

			results <- ParseResult{
				File:    f,
				Events:  events,
				Skipped: skipped,
				Error:   err,
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug(fmt.Sprintf("Concurrent parsing finished, total duration: %v", time.Since(start)))
	}()

	return results
}

// Encode writes events as JSONL records in the given order.
func Encode(w io.Writer, events []model.IntakeEvent) error {
	buf := bufio.NewWriter(w)
	for _, e := range events {
		data, err := sonic.Marshal(e.ToRecord())
		if err != nil {
			return fmt.Errorf("encode intake %s: %w", e.ID, err)
		}
		if _, err := buf.Write(data); err != nil {
			return err
		}
		if err := buf.WriteByte('\n'); err != nil {
			return err
		}
	}
	return buf.Flush()
}
