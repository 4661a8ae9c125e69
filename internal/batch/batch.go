// Package batch runs trailer checks and repairs over a set of tape images.
//
// Files are processed independently: an unreadable or missing file is
// recorded against that file only and never stops the rest of the batch.
// All outcome accounting lives in the returned Report rather than in
// process state, so callers decide how to surface it.
package batch

import (
	"errors"

	"github.com/acms-au/tapfix/internal/logger"
	"github.com/acms-au/tapfix/internal/tapfile"
)

// ErrOutputWithMultipleInputs is returned before any file is touched when
// an explicit output path is combined with more than one input.
var ErrOutputWithMultipleInputs = errors.New("batch: --output is only valid with a single input file")

// Mode selects between reporting and repairing.
type Mode int

const (
	ModeCheck Mode = iota
	ModeFix
)

// Options configures one batch run.
type Options struct {
	Mode   Mode
	Output string // destination for ModeFix; only valid with one input
	DryRun bool
}

// Status is the per-file outcome.
type Status string

const (
	StatusOK       Status = "OK"
	StatusNeedsFix Status = "NEEDS FIX"
	StatusFixed    Status = "FIXED"
	StatusError    Status = "ERROR"
)

// FileResult is the outcome for a single input file.
type FileResult struct {
	Path          string `json:"path"`
	Status        Status `json:"status"`
	TrailingMarks int    `json:"trailing_marks"`
	Removed       int    `json:"removed,omitempty"`
	Output        string `json:"output,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Report is the aggregate outcome of a batch run.
type Report struct {
	Mode     Mode         `json:"-"`
	DryRun   bool         `json:"dry_run,omitempty"`
	Files    []FileResult `json:"files"`
	Checked  int          `json:"checked"`
	NeedsFix int          `json:"needs_fix"`
	Fixed    int          `json:"fixed"`
	Failed   int          `json:"failed"`
}

// Ok reports whether the run as a whole succeeded: nothing failed and, in
// check mode, nothing was found needing a fix.
func (r *Report) Ok() bool {
	if r.Failed > 0 {
		return false
	}
	if r.Mode == ModeCheck && r.NeedsFix > 0 {
		return false
	}
	return true
}

// Run processes each path independently and returns the collected report.
// The only non-nil error it returns is a usage error detected before any
// file I/O happens.
func Run(paths []string, opts Options, log logger.Logger) (*Report, error) {
	if opts.Output != "" && len(paths) > 1 {
		return nil, ErrOutputWithMultipleInputs
	}

	report := &Report{Mode: opts.Mode, DryRun: opts.DryRun}
	for _, path := range paths {
		res := runOne(path, opts, log)
		if res.Status == StatusError {
			report.Failed++
		} else {
			report.Checked++
		}
		if res.Status == StatusNeedsFix || res.Removed > 0 {
			report.NeedsFix++
		}
		if res.Status == StatusFixed && !opts.DryRun {
			report.Fixed++
		}
		report.Files = append(report.Files, res)
	}
	return report, nil
}

func runOne(path string, opts Options, log logger.Logger) FileResult {
	if opts.Mode == ModeCheck {
		check, err := tapfile.Check(path)
		if err != nil {
			log.Error("check failed", "path", path, "error", err)
			return FileResult{Path: path, Status: StatusError, Error: err.Error()}
		}
		status := StatusOK
		if check.NeedsFix {
			status = StatusNeedsFix
		}
		return FileResult{
			Path:          path,
			Status:        status,
			TrailingMarks: check.TrailingMarks,
		}
	}

	fix, err := tapfile.Fix(path, opts.Output, opts.DryRun)
	if err != nil {
		log.Error("fix failed", "path", path, "error", err)
		return FileResult{Path: path, Status: StatusError, Error: err.Error()}
	}
	res := FileResult{
		Path:          path,
		TrailingMarks: fix.TrailingMarks,
		Removed:       fix.Removed,
	}
	if !fix.Modified {
		res.Status = StatusOK
		return res
	}
	res.Status = StatusFixed
	res.Output = fix.Output
	log.Debug("trimmed trailer", "path", path, "removed", fix.Removed, "dry_run", opts.DryRun)
	return res
}
