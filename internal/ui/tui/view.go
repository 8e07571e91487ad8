package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderStages(&b, m)
	renderHosts(&b, m)
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("swiftsetup deploy: %s", m.Role)))

	status := " "
	switch {
	case m.Done && m.Err == nil:
		status += readyStyle.Render("succeeded")
	case m.Done:
		status += failedStyle.Render("failed")
	case m.Aborted:
		status += warningStyle.Render("aborting")
	default:
		active := "starting"
		for _, s := range m.Stages {
			if s.Active {
				active = s.Name
			}
		}
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + warningStyle.Render(active)
	}
	b.WriteString(status)
	b.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", m.State)))
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = m.Width - 30
		if barWidth < 10 {
			barWidth = 10
		}
	}
	progress := m.progress()
	filled := int(float64(barWidth) * progress)
	if filled > barWidth {
		filled = barWidth
	}

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))
	fmt.Fprintf(b, "  %s %d%%\n", bar, int(progress*100))
}

func renderStages(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Stages"))
	b.WriteString("\n")

	hosts := len(m.Hosts)
	for _, s := range m.Stages {
		var icon string
		var style styleFunc
		switch {
		case s.Err != "" || len(s.Failed) > 0:
			icon, style = crossMark, sf(failedStyle)
		case s.Done:
			icon, style = checkMark, sf(readyStyle)
		case s.Active:
			icon, style = currentSpinner(m.SpinnerFrame), sf(activeStyle)
		default:
			icon, style = pending, sf(dimStyle)
		}

		count := ""
		if s.Active || s.Done || s.Succeeded > 0 {
			count = dimStyle.Render(fmt.Sprintf(" %d/%d", s.Succeeded, hosts))
		}
		fmt.Fprintf(b, "    %s %s%s\n", style(icon), style(s.Name), count)
		for _, host := range slices.Sorted(maps.Keys(s.Failed)) {
			fmt.Fprintf(b, "         %s %s\n", failedStyle.Render(host), dimStyle.Render(s.Failed[host]))
		}
	}
}

func renderHosts(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Hosts"))
	b.WriteString("\n")

	for _, h := range m.Hosts {
		if h.Failed {
			fmt.Fprintf(b, "    %s %-30s %s\n", failedStyle.Render(crossMark), h.Host, failedStyle.Render(h.Reason))
			continue
		}
		icon := dimStyle.Render(pending)
		if len(m.Stages) > 0 && h.Stages == len(m.Stages) {
			icon = readyStyle.Render(checkMark)
		}
		fmt.Fprintf(b, "    %s %-30s %s\n", icon, h.Host, dimStyle.Render(fmt.Sprintf("%d/%d stages", h.Stages, len(m.Stages))))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	parts := []string{fmt.Sprintf("elapsed: %s", formatDuration(time.Since(m.StartTime)))}
	if m.Status != "" {
		parts = append(parts, m.Status)
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s  |  q: quit", strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
