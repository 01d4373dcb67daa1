package report

import (
	"fmt"
	"io"
	"os"

	"github.com/FarhamAghdasi/send-ai/pkg/models"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorSupported reports whether stdout is a terminal that gets colors
func ColorSupported() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// PrintSummary writes the end-of-run summary for the console
func PrintSummary(w io.Writer, result *models.ScanResult, written []string, colorOutput bool) {
	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed)
	for _, c := range []*color.Color{bold, gray, green, yellow, red} {
		if colorOutput {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	s := result.Summary
	fmt.Fprintln(w)
	bold.Fprintln(w, "SCAN COMPLETE")
	fmt.Fprintln(w)

	gray.Fprint(w, "  Path:      ")
	fmt.Fprintln(w, result.Root)
	gray.Fprint(w, "  Files:     ")
	fmt.Fprintf(w, "%d admitted of %d scanned, %d loaded\n", s.FilesAdmitted, s.FilesScanned, s.FilesLoaded)
	if s.TotalTokens > 0 {
		gray.Fprint(w, "  Tokens:    ")
		fmt.Fprintln(w, s.TotalTokens)
	}
	if skipped := s.FilesBinary + s.FilesFiltered + s.FilesFailed; skipped > 0 {
		gray.Fprint(w, "  Skipped:   ")
		fmt.Fprintf(w, "%d binary, %d filtered, %d failed\n", s.FilesBinary, s.FilesFiltered, s.FilesFailed)
	}
	if len(result.Skipped) > 0 {
		gray.Fprint(w, "  Entries:   ")
		red.Fprintf(w, "%d unreadable or cyclic entries skipped\n", len(result.Skipped))
	}
	fmt.Fprintln(w)

	if s.FilesSensitive > 0 {
		yellow.Fprintf(w, "  ⚠ Sensitive content in %d file(s):\n", s.FilesSensitive)
		for _, rec := range result.Files {
			if rec.IsSensitive() {
				fmt.Fprintf(w, "      %s ", rec.RelPath)
				gray.Fprintf(w, "%v\n", rec.Matches.Sensitive)
			}
		}
	} else {
		green.Fprintln(w, "  ✓ No sensitive content detected")
	}

	if len(written) > 0 {
		fmt.Fprintln(w)
		for _, p := range written {
			gray.Fprint(w, "  Saved:     ")
			fmt.Fprintln(w, p)
		}
	}
	fmt.Fprintln(w)
}
