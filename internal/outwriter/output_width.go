package outwriter

import (
	"os"

	"github.com/supplelab/tierank/internal/contract"
	"golang.org/x/term"
)

// getMaxTableNameWidth calculates the maximum width for product names in table output
// based on terminal width and the fixed grade columns.
func getMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Product ID, group, five axis grades, overall grade and score with borders
	baseWidth := 20 + 14 + 5*6 + 10 + 8

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 48 {
		return 48
	}
	return available
}
