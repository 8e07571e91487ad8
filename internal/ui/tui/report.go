package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// DeployReport is the printable result of a deployment.
type DeployReport struct {
	Role       string        `yaml:"role"`
	OK         bool          `yaml:"ok"`
	State      string        `yaml:"state"`
	Repository string        `yaml:"repository"`
	Duration   time.Duration `yaml:"duration"`
	Hosts      []HostReport  `yaml:"hosts"`
	Stages     []StageReport `yaml:"stages"`
	Error      string        `yaml:"error,omitempty"`
}

// HostReport is the state one host reached.
type HostReport struct {
	Host  string `yaml:"host"`
	State string `yaml:"state"`
}

// StageReport is the outcome of one stage.
type StageReport struct {
	Name     string            `yaml:"name"`
	Duration time.Duration     `yaml:"duration"`
	Failed   map[string]string `yaml:"failed,omitempty"`
}

// RenderDeploy renders r as a styled summary.
func RenderDeploy(r *DeployReport) string {
	var b strings.Builder

	status := readyStyle.Render("succeeded")
	if !r.OK {
		status = failedStyle.Render("failed")
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("swiftsetup deploy: %s", r.Role)))
	b.WriteString(" " + status)
	b.WriteString(dimStyle.Render(fmt.Sprintf(" (%s, %s)", r.State, r.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Stages"))
	b.WriteString("\n")
	for _, s := range r.Stages {
		mark := readyStyle.Render(checkMark)
		if len(s.Failed) > 0 {
			mark = failedStyle.Render(crossMark)
		}
		fmt.Fprintf(&b, "  %s %-30s %s\n", mark, s.Name, dimStyle.Render(s.Duration.Round(time.Millisecond).String()))
		for _, host := range slices.Sorted(maps.Keys(s.Failed)) {
			fmt.Fprintf(&b, "       %s %s\n", failedStyle.Render(host), dimStyle.Render(firstLine(s.Failed[host])))
		}
	}

	b.WriteString(sectionStyle.Render("Hosts"))
	b.WriteString("\n")
	for _, h := range r.Hosts {
		fmt.Fprintf(&b, "  %s %-30s %s\n", hostMark(h.State), h.Host, h.State)
	}

	if r.Repository != "" {
		fmt.Fprintf(&b, "\n%s %s\n", dimStyle.Render("Repository:"), r.Repository)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "\n%s\n", failedStyle.Render(r.Error))
	}
	return b.String()
}

// RenderPlan renders the stage list of a dry run.
func RenderPlan(role string, hosts, stages []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("swiftsetup deploy: %s", role)))
	b.WriteString(warningStyle.Render(" (dry run)"))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Hosts"))
	b.WriteString("\n")
	for _, h := range hosts {
		fmt.Fprintf(&b, "  %s\n", h)
	}

	b.WriteString(sectionStyle.Render("Stages"))
	b.WriteString("\n")
	for i, s := range stages {
		fmt.Fprintf(&b, "  %s %2d. %s\n", pending, i+1, s)
	}
	return b.String()
}

// RenderStatus renders the local template state and known host groups.
func RenderStatus(state string, groups map[string]int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("swiftsetup status"))
	b.WriteString("\n")

	mark := readyStyle.Render(checkMark)
	if state != "templated" {
		mark = warningStyle.Render(warnMark)
	}
	fmt.Fprintf(&b, "  %s templates %s\n", mark, state)

	b.WriteString(sectionStyle.Render("Host groups"))
	b.WriteString("\n")
	if len(groups) == 0 {
		b.WriteString(dimStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, g := range slices.Sorted(maps.Keys(groups)) {
		fmt.Fprintf(&b, "  %-20s %d hosts\n", g, groups[g])
	}
	return b.String()
}

func hostMark(state string) string {
	switch state {
	case "RoleProvisioned":
		return readyStyle.Render(checkMark)
	case "Failed":
		return failedStyle.Render(crossMark)
	default:
		return dimStyle.Render(pending)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
