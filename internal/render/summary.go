package render

import (
	"fmt"
	"strings"

	"warroom-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

var (
	sumTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "235", Dark: "252"})
	sumHead  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "62"})
	sumLabel = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "243"})
)

// Summary renders a compact styled snapshot of a worksheet: problem, impact,
// likely cause, and progress counters. One screen, no pager; Markdown builds
// the full report.
func Summary(st *model.State, width int) string {
	if width <= 0 {
		width = 80
	}
	if width < 40 {
		width = 40
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(clipLine(s, width))
		b.WriteString("\n")
	}
	section := func(name string) {
		b.WriteString("\n")
		line(sumHead.Render(name))
	}
	field := func(name, value string) {
		value = strings.TrimSpace(strings.ReplaceAll(value, "\n", " "))
		if value == "" {
			return
		}
		line("  " + sumLabel.Render(name+":") + " " + value)
	}

	title := strings.TrimSpace(st.Pre.OneLine)
	if title == "" {
		title = "Untitled incident"
	}
	line(sumTitle.Render(title))

	var badges []string
	if v := strings.TrimSpace(st.Ops.Severity); v != "" {
		badges = append(badges, "severity "+v)
	}
	if st.Ops.ContainStatus != model.ContainNone {
		badges = append(badges, string(st.Ops.ContainStatus))
	}
	if v := strings.TrimSpace(st.Ops.Owner); v != "" {
		badges = append(badges, "owner "+v)
	}
	if len(badges) > 0 {
		line(sumLabel.Render(strings.Join(badges, " · ")))
	}

	if st.Pre.Symptoms != "" || st.Pre.Affected != "" || st.Pre.Started != "" {
		section("Problem")
		field("What's wrong", st.Pre.Symptoms)
		field("Affected", st.Pre.Affected)
		field("Since", st.Pre.Started)
	}
	if st.Impact.Now != "" || st.Impact.Future != "" || st.Impact.Time != "" {
		section("Impact")
		field("Now", st.Impact.Now)
		field("If it continues", st.Impact.Future)
		field("Time pressure", st.Impact.Time)
	}
	if v := strings.TrimSpace(st.Ops.ContainSummary); v != "" {
		section("Containment")
		field("Summary", v)
	}

	if c := likelyCause(st); c != nil {
		section("Likely cause")
		name := strings.TrimSpace(c.Suspect)
		if name == "" {
			name = c.ID
		}
		if c.Confidence != model.ConfidenceNone {
			name += "  (" + string(c.Confidence) + ")"
		}
		line("  " + name)
		field("Accusation", c.Accusation)
	}

	section("Progress")
	done := 0
	for _, s := range st.Steps.Items {
		if s.Checked {
			done++
		}
	}
	open := 0
	if st.Actions != nil {
		for _, a := range st.Actions.Items {
			if !a.Done {
				open++
			}
		}
	}
	line("  " + fmt.Sprintf("causes %d · steps %d/%d · open actions %d",
		len(st.Causes), done, len(st.Steps.Items), open))

	if v := strings.TrimSpace(st.Ops.CommCadence); v != "" {
		section("Next update")
		due := "every " + v + " min"
		if st.Ops.CommNextDueISO != "" {
			due += " · due " + st.Ops.CommNextDueISO
		}
		line("  " + due)
	}

	return b.String()
}

func likelyCause(st *model.State) *model.Cause {
	if st.LikelyCauseID == nil {
		return nil
	}
	for i := range st.Causes {
		if st.Causes[i].ID == *st.LikelyCauseID {
			return &st.Causes[i]
		}
	}
	return nil
}

// clipLine cuts a styled line to the display width, closing any open
// escape so the next row starts clean.
func clipLine(s string, width int) string {
	if xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Cut(s, 0, width) + "\x1b[0m"
}
