package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/util"
)

// FileScanner finds intake export files below a directory
type FileScanner struct {
	baseDir string
	ext     string
}

// NewFileScanner creates a new FileScanner for .jsonl files
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir: baseDir,
		ext:     ".jsonl",
	}
}

// Scan walks the directory and returns the sorted paths of matching files.
// A base path that is itself a file is returned as is.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()

	info, err := os.Stat(s.baseDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{s.baseDir}, nil
	}

	var files []string
	dirCount := 0
	err = filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
			return nil
		}
		if info.IsDir() {
			dirCount++
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), s.ext) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d directories, found %d %s files",
		time.Since(start), dirCount, len(files), s.ext))
	return files, err
}

// ScanPaths scans several files or directories and removes duplicates.
func ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var all []string
	for _, p := range paths {
		files, err := NewFileScanner(p).Scan()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		for _, f := range files {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			all = append(all, f)
		}
	}
	sort.Strings(all)
	return all, nil
}
