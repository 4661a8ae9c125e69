package batch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/acms-au/tapfix/internal/logger"
	"github.com/acms-au/tapfix/pkg/simh"
)

func writeTape(t *testing.T, dir, name string, trailingMarks int) string {
	t.Helper()

	var buf bytes.Buffer
	tw := simh.NewWriter(&buf)
	if err := tw.WriteRecord([]byte("record")); err != nil {
		t.Fatalf("write record: %v", err)
	}
	for i := 0; i < trailingMarks; i++ {
		if err := tw.WriteTapeMark(); err != nil {
			t.Fatalf("write tape mark: %v", err)
		}
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write tape file: %v", err)
	}
	return path
}

func TestRunCheckMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeTape(t, dir, "good.tap", 2)
	bad := writeTape(t, dir, "bad.tap", 7)

	report, err := Run([]string{good, bad}, Options{Mode: ModeCheck}, logger.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Checked != 2 || report.NeedsFix != 1 || report.Failed != 0 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.Ok() {
		t.Fatalf("check run finding problems must not be Ok")
	}
	if report.Files[0].Status != StatusOK || report.Files[1].Status != StatusNeedsFix {
		t.Fatalf("unexpected statuses: %+v", report.Files)
	}
	if report.Files[1].TrailingMarks != 7 {
		t.Fatalf("TrailingMarks = %d, want 7", report.Files[1].TrailingMarks)
	}
}

func TestRunCheckModeAllClean(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeTape(t, dir, "a.tap", 2)
	b := writeTape(t, dir, "b.tap", 1)

	report, err := Run([]string{a, b}, Options{Mode: ModeCheck}, logger.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Ok() {
		t.Fatalf("clean check run must be Ok: %+v", report)
	}
}

func TestRunFixMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeTape(t, dir, "good.tap", 2)
	bad := writeTape(t, dir, "bad.tap", 5)

	report, err := Run([]string{good, bad}, Options{Mode: ModeFix}, logger.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Fixed != 1 || report.Failed != 0 || report.Checked != 2 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if !report.Ok() {
		t.Fatalf("successful fix run must be Ok")
	}

	data, err := os.ReadFile(bad)
	if err != nil {
		t.Fatalf("read fixed file: %v", err)
	}
	if simh.CountTrailingMarks(data) != 2 {
		t.Fatalf("fixed file has %d trailing marks", simh.CountTrailingMarks(data))
	}

	data, err = os.ReadFile(good)
	if err != nil {
		t.Fatalf("read clean file: %v", err)
	}
	if simh.CountTrailingMarks(data) != 2 {
		t.Fatalf("clean file was altered")
	}
}

func TestRunMissingFileContinuesBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeTape(t, dir, "a.tap", 4)
	missing := filepath.Join(dir, "gone.tap")
	c := writeTape(t, dir, "c.tap", 3)

	report, err := Run([]string{a, missing, c}, Options{Mode: ModeFix}, logger.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Failed != 1 || report.Fixed != 2 || report.Checked != 2 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.Ok() {
		t.Fatalf("run with a missing file must not be Ok")
	}
	if report.Files[1].Status != StatusError || report.Files[1].Error == "" {
		t.Fatalf("missing file not recorded: %+v", report.Files[1])
	}

	for _, path := range []string{a, c} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if simh.CountTrailingMarks(data) != 2 {
			t.Fatalf("%s not fixed despite sibling failure", path)
		}
	}
}

func TestRunOutputWithMultipleInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeTape(t, dir, "a.tap", 9)
	b := writeTape(t, dir, "b.tap", 9)
	before, err := os.ReadFile(a)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	opts := Options{Mode: ModeFix, Output: filepath.Join(dir, "out.tap")}
	report, err := Run([]string{a, b}, opts, logger.Default())
	if !errors.Is(err, ErrOutputWithMultipleInputs) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if report != nil {
		t.Fatalf("usage error must yield no report, got %+v", report)
	}

	// Fails fast: no file may have been touched.
	after, err := os.ReadFile(a)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("usage error modified an input file")
	}
	if _, err := os.Stat(opts.Output); !os.IsNotExist(err) {
		t.Fatalf("usage error created the output file")
	}
}

func TestRunDryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTape(t, dir, "a.tap", 6)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	report, err := Run([]string{path}, Options{Mode: ModeFix, DryRun: true}, logger.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Fixed != 0 || report.NeedsFix != 1 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.Files[0].Removed != 4 {
		t.Fatalf("Removed = %d, want 4", report.Files[0].Removed)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("dry run modified the file")
	}
}
