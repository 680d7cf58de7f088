package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/config"
	"github.com/matzehuels/timegrid/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, holidays
	colorBlue   = lipgloss.Color("75")  // Light blue - external calendars
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// categoryStyles colour events in the terminal the way the page styles do.
var categoryStyles = map[calendar.Category]lipgloss.Style{
	calendar.Manual:              lipgloss.NewStyle().Foreground(colorWhite),
	calendar.PracticeAppointment: lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	calendar.ExternalCalendar:    lipgloss.NewStyle().Foreground(colorBlue),
	calendar.Holiday:             lipgloss.NewStyle().Foreground(colorRed),
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Export Summary
// =============================================================================

// statsLine formats export statistics on a single line.
func statsLine(r *pipeline.Result) string {
	parts := []string{
		fmt.Sprintf("%d events", r.Stats.EventCount),
		fmt.Sprintf("%d pages", r.Stats.PageCount),
	}

	status := styleComputed.Render(iconFresh)
	if len(r.CacheInfo.RenderHits) > 0 {
		status = styleCached.Render(iconCached + " " + strings.Join(r.CacheInfo.RenderHits, ","))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line + StyleDim.Render(" · ") + status
}

// printStats prints export statistics on a single line.
func printStats(r *pipeline.Result) {
	fmt.Println(statsLine(r))
}

// excludedTable lists the events that could not be placed, one row per
// event under the first page that dropped it. Start times are shown in loc.
func excludedTable(r *pipeline.Result, loc *time.Location) string {
	var rows [][]string
	seen := make(map[int]bool)
	for _, p := range r.Pages {
		for _, ex := range p.Layout.Excluded {
			if seen[ex.EventIndex] {
				continue
			}
			seen[ex.EventIndex] = true
			when := ""
			if ex.EventIndex >= 0 && ex.EventIndex < len(r.Events) {
				ev := r.Events[ex.EventIndex]
				when = ev.Start.In(loc).Format("Mon 02 15:04")
			}
			rows = append(rows, []string{p.Name, ex.Title, when, ex.Reason.String()})
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("Page", "Event", "Starts", "Reason").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			if col == 3 {
				return StyleWarning
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// printExcluded warns about events that could not be placed.
func printExcluded(r *pipeline.Result, loc *time.Location) {
	n := r.Excluded()
	if n == 0 {
		return
	}
	noun := "events"
	if n == 1 {
		noun = "event"
	}
	printWarning("%d %s could not be placed", n, noun)
	fmt.Println(excludedTable(r, loc))
}

// presetsTable lists the page presets.
func presetsTable(presets []config.Preset, current string) string {
	rows := make([][]string, len(presets))
	for i, p := range presets {
		name := p.Name
		if p.Name == current {
			name += " *"
		}
		rows[i] = []string{name, fmt.Sprintf("%g×%g %s", p.Width, p.Height, p.Unit), fmt.Sprintf("%g", p.Margin), p.Description}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("Preset", "Page", "Margin", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleTableHeader
			case col == 0:
				return StyleTitle
			case col == 3:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
