package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleName    = lipgloss.NewStyle().Foreground(colorCyan)
	styleBefore  = lipgloss.NewStyle().Foreground(colorRed)
	styleAfter   = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true)
	styleURL     = lipgloss.NewStyle().Faint(true)
)

// urlKeys lists the URLs printed under an update, in order.
var urlKeys = []string{"upstream", "purl"}

func printReport(w io.Writer, updates []update, failures []error) {
	fmt.Fprintln(w, styleTitle.Render("The following packages were updated:"))

	nameWidth := len("Name")
	for _, u := range updates {
		nameWidth = max(nameWidth, len(u.Name))
	}
	for _, u := range updates {
		line := fmt.Sprintf("%s  %s -> %s",
			styleName.Render(pad(u.Name, nameWidth)),
			styleBefore.Render(u.Before),
			styleAfter.Render(u.After))
		if len(u.Warnings) > 0 {
			line += "  " + styleWarning.Render(strings.Join(u.Warnings, "; "))
		}
		fmt.Fprintln(w, line)
		for _, key := range urlKeys {
			if link := u.URLs[key]; link != "" {
				fmt.Fprintf(w, "%s  %s\n", pad("", nameWidth), styleURL.Render(link))
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styleTitle.Render("Errors:"))
	for _, err := range failures {
		fmt.Fprintln(w, styleError.Render(err.Error()))
	}
}

// printVersions prints "name version" for every package that resolved,
// updated or not.
func printVersions(w io.Writer, results []core.Result, comply bool) {
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", res.Package.Name, latestVersion(res.Latest, comply))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
