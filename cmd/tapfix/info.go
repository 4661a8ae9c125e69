package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/acms-au/tapfix/internal/analyzer"
)

func infoCmd() *cli.Command {
	var (
		showRecords bool
		recordLimit int
	)

	return &cli.Command{
		Name:      "info",
		Usage:     "Summarize the structure of a tape image",
		ArgsUsage: "<file.tap>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "records",
				Aliases:     []string{"r"},
				Usage:       "list individual records",
				Destination: &showRecords,
			},
			&cli.IntFlag{
				Name:        "records-limit",
				Usage:       "limit record listing per file (0 = no limit)",
				Value:       25,
				Destination: &recordLimit,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return cli.Exit("error: info takes exactly one tape image", 1)
			}
			path := c.Args().First()

			a, err := analyzer.AnalyzeFile(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			fmt.Printf("Tape: %s (%s)\n", path, formatBytes(a.Size))

			section("Summary")
			row("files", fmt.Sprintf("%d", len(a.Files)))
			row("records", fmt.Sprintf("%d", a.TotalRecords))
			row("data_bytes", formatBytes(a.TotalDataBytes))
			row("trailing_marks", fmt.Sprintf("%d", a.TrailingMarks))
			if a.NeedsTrailerFix {
				row("trailer", fmt.Sprintf("NEEDS FIX (%d extra marks, run 'tapfix fix')",
					a.TrailingMarks-2))
			} else {
				row("trailer", "OK")
			}
			if a.EndOfMediumOffset >= 0 {
				row("end_of_medium", fmt.Sprintf("offset %d", a.EndOfMediumOffset))
			}

			for _, f := range a.Files {
				section(fmt.Sprintf("File %d", f.Index))
				row("records", fmt.Sprintf("%d", len(f.Records)))
				row("data_bytes", formatBytes(f.DataBytes))
				for _, r := range f.Records {
					if r.Label != nil {
						row("label", describeLabel(r.Label))
					}
				}
				if showRecords {
					printRecords(f.Records, recordLimit)
				}
			}

			if len(a.Warnings) > 0 {
				section("Warnings")
				for _, w := range a.Warnings {
					fmt.Println(w)
				}
			}

			if a.NeedsTrailerFix {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func printRecords(records []analyzer.RecordInfo, limit int) {
	printed := 0
	for _, r := range records {
		line := fmt.Sprintf("#%-4d off=%-10d len=%-8d %s", r.Index, r.Offset, r.Length, r.Encoding)
		if r.Class != 0 {
			line += fmt.Sprintf(" class=0x%X", r.Class)
		}
		if r.Label != nil {
			line += " " + r.Label.ID
		}
		fmt.Println(line)
		printed++
		if limit > 0 && printed >= limit {
			break
		}
	}
	if limit > 0 && printed < len(records) {
		fmt.Printf("... (%d shown of %d)\n", printed, len(records))
	}
}

func describeLabel(l *analyzer.Label) string {
	switch l.ID {
	case "VOL1":
		return fmt.Sprintf("VOL1 serial=%s owner=%s", l.Serial, l.Owner)
	case "HDR1":
		return fmt.Sprintf("HDR1 file=%s set=%s created=%s", l.File, l.FileSet, l.Created)
	case "HDR2":
		return fmt.Sprintf("HDR2 format=%s block_len=%s record_len=%s",
			l.RecordFormat, l.BlockLen, l.RecordLen)
	case "EOF1", "EOV1":
		return fmt.Sprintf("%s file=%s blocks=%s", l.ID, l.File, l.Blocks)
	default:
		return l.ID
	}
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-18s %s\n", label+":", value)
}

func formatBytes(b int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
