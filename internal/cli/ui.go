package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/samskiter/micropython-stubber/pkg/driver"
	"github.com/samskiter/micropython-stubber/pkg/observability"
	"github.com/samskiter/micropython-stubber/pkg/probe"
	"github.com/samskiter/micropython-stubber/pkg/snapshot"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
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

	// StyleError for failed counts.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
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
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
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

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Reports
// =============================================================================

// printRunReport summarises a driver run.
func printRunReport(r *driver.Report) {
	st := r.Stats
	printSuccess("Stubbed %s", StyleTitle.Render(r.FirmwareID))
	fmt.Println("  " + joinDim(
		fmt.Sprintf("%d succeeded", st.Succeeded),
		fmt.Sprintf("%d skipped", st.Skipped),
		failedText(st.Failed),
		fmt.Sprintf("%d resumed", st.Resumed),
	))
	for _, it := range r.Items {
		if it.Status.Failed() {
			printDetail("%s: %s", it.Module, it.Status)
		}
	}
	printFile(r.StubDir)
}

func failedText(n int) string {
	s := fmt.Sprintf("%d failed", n)
	if n > 0 {
		return StyleError.Render(s)
	}
	return s
}

// printCounters prints the counting hooks of a --stats run.
func printCounters(s observability.Snapshot) {
	fmt.Println()
	fmt.Println(StyleTitle.Render("Statistics"))
	statuses := make([]string, 0, len(s.Statuses))
	for k := range s.Statuses {
		statuses = append(statuses, k)
	}
	sort.Strings(statuses)
	for _, k := range statuses {
		printKeyValue(k, fmt.Sprint(s.Statuses[k]))
	}
	printKeyValue("checkpoints", fmt.Sprint(s.Checkpoints))
	if s.MinFree >= 0 {
		printKeyValue("min free", fmt.Sprintf("%d bytes", s.MinFree))
	}
	printKeyValue("low memory", fmt.Sprint(s.LowMemory))
	printKeyValue("restarts", fmt.Sprint(s.Restarts))
	printKeyValue("cache", fmt.Sprintf("%d hits, %d misses, %d bytes", s.CacheHits, s.CacheMisses, s.CacheBytes))
	printKeyValue("elapsed", s.Elapsed.String())
}

// printProfile prints a probed firmware profile.
func printProfile(p probe.Profile) {
	printKeyValue("firmware", p.FirmwareID())
	printKeyValue("family", p.Family)
	printKeyValue("version", p.Version)
	printKeyValue("build", p.Build)
	printKeyValue("port", p.Port)
	printKeyValue("board", p.Board)
	printKeyValue("cpu", p.CPU)
	printKeyValue("mpy", p.MPY)
	printKeyValue("arch", p.Arch)
	if p.Release != "" {
		printKeyValue("release", p.Release)
	}
}

// printSnapshotInfo prints the modules of a snapshot with member counts.
func printSnapshotInfo(doc *snapshot.Document) {
	if doc.Uname != nil {
		printKeyValue("machine", doc.Uname.Machine)
		printKeyValue("release", doc.Uname.Release)
	}
	if doc.Heap.Size > 0 {
		printKeyValue("heap", fmt.Sprintf("%d of %d bytes free", doc.Heap.Free, doc.Heap.Size))
	}
	printKeyValue("modules", fmt.Sprint(len(doc.Modules)))
	for _, name := range doc.ModuleNames() {
		printDetail("%-24s %d members", name, len(doc.Modules[name].Members))
	}
}

func joinDim(parts ...string) string {
	return strings.Join(parts, StyleDim.Render(" · "))
}
