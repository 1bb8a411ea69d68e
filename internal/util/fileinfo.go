package util

import (
	"fmt"
	"os"
	"syscall"
)

// FileInfo contains the identity of a file on disk: modification time, size and inode.
type FileInfo struct {
	ModTime int64
	Size    int64
	Inode   uint64
}

// GetFileInfo retrieves file information including the inode number.
// Supported on Linux and macOS.
func GetFileInfo(filepath string) (*FileInfo, error) {
	stat, err := os.Stat(filepath)
	if err != nil {
		return nil, err
	}

	sysStat, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("failed to get file system information: %s", filepath)
	}

	return &FileInfo{
		ModTime: stat.ModTime().UnixNano(),
		Size:    stat.Size(),
		Inode:   uint64(sysStat.Ino),
	}, nil
}

// SameAs reports whether two infos describe the same unchanged file.
// A nil info never matches.
func (fi *FileInfo) SameAs(other *FileInfo) bool {
	if fi == nil || other == nil {
		return false
	}
	return *fi == *other
}
