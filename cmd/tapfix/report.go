package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/acms-au/tapfix/internal/batch"
)

// printReport renders a batch report: one line per file, plus a summary
// when more than one input was given. Error lines go to stderr so they
// stay visible when stdout is piped.
func printReport(report *batch.Report, verbose, jsonOut bool) error {
	if jsonOut {
		body, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	}

	for _, f := range report.Files {
		switch f.Status {
		case batch.StatusError:
			fmt.Fprintf(os.Stderr, "%s: error - %s\n", f.Path, f.Error)
		case batch.StatusNeedsFix:
			fmt.Printf("%s: NEEDS FIX - %d trailing tape marks (expected 2)\n",
				f.Path, f.TrailingMarks)
		case batch.StatusFixed:
			if report.DryRun {
				fmt.Printf("%s: would remove %d extra tape mark(s)\n", f.Path, f.Removed)
			} else {
				fmt.Printf("%s: fixed - removed %d extra tape mark(s) -> %s\n",
					f.Path, f.Removed, f.Output)
			}
		case batch.StatusOK:
			if verbose {
				if report.Mode == batch.ModeCheck {
					fmt.Printf("%s: OK - %d trailing tape marks\n", f.Path, f.TrailingMarks)
				} else {
					fmt.Printf("%s: OK - no fix needed\n", f.Path)
				}
			}
		}
	}

	if len(report.Files) > 1 {
		fmt.Println()
		if report.Mode == batch.ModeCheck {
			fmt.Printf("Checked %d files: %d need fixing\n", report.Checked, report.NeedsFix)
		} else {
			fmt.Printf("Checked %d files: %d fixed, %d failed\n",
				report.Checked, report.Fixed, report.Failed)
		}
	}
	return nil
}
