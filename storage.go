package alog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// RotateDecision is the result of a rotation check.
type RotateDecision int

const (
	RotateNone RotateDecision = iota
	RotateNow
)

// CheckAndRotate decides whether the active file must be rotated before the
// next append. A maxSize of 0 disables rotation.
func CheckAndRotate(currentSize, maxSize int64) RotateDecision {
	if maxSize > 0 && currentSize >= maxSize {
		return RotateNow
	}
	return RotateNone
}

// RotationManager tracks the active file's size and shifts the backup chain
// path.1 .. path.N when the size limit is reached. path.1 is always the most
// recent backup. It is owned by the writer goroutine and not safe for
// concurrent use.
type RotationManager struct {
	path       string
	maxSize    int64
	maxBackups int64
	size       int64
	retryAt    int64 // after a failed rotation, the size at which to try again

	rename func(oldpath, newpath string) error
	remove func(name string) error
}

// NewRotationManager creates a manager for path with a zero byte count.
func NewRotationManager(path string, maxSize, maxBackups int64) *RotationManager {
	return &RotationManager{
		path:       path,
		maxSize:    maxSize,
		maxBackups: maxBackups,
		rename:     renameFile,
		remove:     removeFile,
	}
}

// Filesystem calls used by rotation, replaceable in tests
var (
	renameFile = os.Rename
	removeFile = os.Remove
)

// Path returns the active file path.
func (r *RotationManager) Path() string { return r.path }

// Size returns the bytes appended to the active file so far.
func (r *RotationManager) Size() int64 { return r.size }

// Observe records n bytes appended to the active file.
func (r *RotationManager) Observe(n int64) { r.size += n }

// Reset sets the byte count, used when an existing file is reopened.
func (r *RotationManager) Reset(size int64) {
	r.size = size
	r.retryAt = 0
}

// SetLimits updates the thresholds. The new limits apply to the next check.
func (r *RotationManager) SetLimits(maxSize, maxBackups int64) {
	r.maxSize = maxSize
	r.maxBackups = maxBackups
}

// Check reports whether the active file must be rotated before the next append.
func (r *RotationManager) Check() RotateDecision {
	if CheckAndRotate(r.size, r.maxSize) == RotateNone {
		return RotateNone
	}
	if r.retryAt > 0 && r.size < r.retryAt {
		return RotateNone
	}
	return RotateNow
}

// Rotate shifts the backup chain: the oldest backup is removed, every
// path.i moves to path.i+1, and the active file becomes path.1. With zero
// backups the active file is removed. The caller must close the active file
// first and reopen path afterwards, whatever the outcome.
//
// On failure the chain is left as far as it got (renames only ever move a
// file into a slot that was just vacated, so nothing is overwritten), the
// byte count is kept, and the next attempt waits for another maxSize bytes.
func (r *RotationManager) Rotate() error {
	if err := r.shift(); err != nil {
		r.retryAt = r.size + r.maxSize
		return err
	}
	r.size = 0
	r.retryAt = 0
	return nil
}

func (r *RotationManager) shift() error {
	if r.maxBackups <= 0 {
		if err := r.remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmtErrorf("failed to discard rotated log file '%s': %w", r.path, err)
		}
		return nil
	}

	oldest := backupPath(r.path, r.maxBackups)
	if err := r.remove(oldest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmtErrorf("failed to remove oldest backup '%s': %w", oldest, err)
	}

	for i := r.maxBackups - 1; i >= 1; i-- {
		from, to := backupPath(r.path, i), backupPath(r.path, i+1)
		if err := r.rename(from, to); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // gap in the chain
			}
			return fmtErrorf("failed to rename backup '%s' to '%s': %w", from, to, err)
		}
	}

	first := backupPath(r.path, 1)
	if err := r.rename(r.path, first); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmtErrorf("failed to rename log file '%s' to '%s': %w", r.path, first, err)
	}
	return nil
}

// backupPath returns the name of the n-th backup of path.
func backupPath(path string, n int64) string {
	return path + "." + strconv.FormatInt(n, 10)
}

// openLogFile opens path for appending, creating it and its directory if
// needed, and returns the file with its current size. Errors are the
// underlying *fs.PathError, left for the caller to wrap.
func openLogFile(path string) (*os.File, int64, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, 0, err
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, 0, err
	}

	var size int64
	if fi, errStat := file.Stat(); errStat == nil {
		size = fi.Size()
	}
	return file, size, nil
}
