// Package tapfile performs trailer checks and repairs on tape image files.
package tapfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/acms-au/tapfix/pkg/simh"
)

// initialTailRead bounds the first read of the check path. 64 bytes covers
// 16 trailing marks; the window widens when the whole of it is marks.
const initialTailRead = 64

// CheckResult describes the trailer state of one tape image.
type CheckResult struct {
	Path          string `json:"path"`
	Size          int64  `json:"size"`
	TrailingMarks int    `json:"trailing_marks"`
	NeedsFix      bool   `json:"needs_fix"`
}

// FixResult describes one repair operation.
type FixResult struct {
	Path          string `json:"path"`
	Output        string `json:"output"`
	TrailingMarks int    `json:"trailing_marks"`
	Removed       int    `json:"removed"`
	Modified      bool   `json:"modified"`
}

// Check reads the trailer of the file at path and reports its trailing
// tape-mark count. Only the file's tail is read; if the entire tail window
// turns out to be tape marks and more of the file remains, the window is
// doubled and re-read until a non-mark boundary appears, so the count is
// exact even on heavily over-terminated images.
func Check(path string) (CheckResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return CheckResult{}, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return CheckResult{}, err
	}
	size := stat.Size()

	window := int64(initialTailRead)
	for {
		if window > size {
			window = size
		}
		tail := make([]byte, window)
		n, err := f.ReadAt(tail, size-window)
		if err != nil && !(err == io.EOF && int64(n) == window) {
			return CheckResult{}, fmt.Errorf("read tail of %s: %w", path, err)
		}

		count := simh.CountTrailingMarks(tail)
		if int64(count*simh.MarkSize) < window || window == size {
			return CheckResult{
				Path:          path,
				Size:          size,
				TrailingMarks: count,
				NeedsFix:      simh.NeedsTrailerFix(count),
			}, nil
		}
		window *= 2
	}
}

// Fix loads the file at path, trims over-termination, and writes the
// result to output (or back to path when output is empty). With dryRun set
// nothing is written; the returned result still reports what would change.
// A file with two or fewer trailing marks is left untouched and reported
// as not modified.
func Fix(path, output string, dryRun bool) (FixResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FixResult{}, err
	}

	count := simh.CountTrailingMarks(data)
	dest := output
	if dest == "" {
		dest = path
	}
	res := FixResult{
		Path:          path,
		Output:        dest,
		TrailingMarks: count,
	}

	trimmed, removed := simh.TrimTrailingMarks(data)
	if removed == 0 {
		return res, nil
	}
	res.Removed = removed
	res.Modified = true

	if dryRun {
		return res, nil
	}
	if err := writeComplete(dest, trimmed); err != nil {
		return FixResult{}, fmt.Errorf("write %s: %w", dest, err)
	}
	return res, nil
}

// writeComplete writes data through a uniquely named temp file in the
// destination directory and renames it into place, so a failed write never
// leaves a truncated tape behind.
func writeComplete(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp := filepath.Join(dir, "."+filepath.Base(dest)+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
