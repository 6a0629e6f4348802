package tui

import (
	"fmt"
	"strconv"
	"strings"

	"warroom-cli/internal/render"

	"github.com/charmbracelet/lipgloss"
)

// The overview, table, and comms tabs are plain renders; only the list
// tabs are interactive.

func (m appModel) bodyWidth() int {
	if m.width < 40 {
		return 40
	}
	return m.width
}

func (m appModel) viewOverview() string {
	label := styleMuted()
	var b strings.Builder

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n", styleTitle().Render(title))
	}
	field := func(name, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "  %s %s\n", label.Render(name+":"), value)
	}

	section("Problem")
	field("What's wrong", m.st.Pre.Symptoms)
	field("Affected", m.st.Pre.Affected)
	field("Since", m.st.Pre.Started)
	field("Context", m.st.Pre.Context)

	section("Impact")
	field("Now", m.st.Impact.Now)
	field("If it continues", m.st.Impact.Future)
	field("Time pressure", m.st.Impact.Time)

	section("Containment")
	status := string(m.st.Ops.ContainStatus)
	if status == "" {
		status = "-"
	}
	field("Status", status)
	field("Summary", m.st.Ops.ContainSummary)

	section("Progress")
	done := 0
	for _, s := range m.st.Steps.Items {
		if s.Checked {
			done++
		}
	}
	field("Causes", strconv.Itoa(len(m.st.Causes)))
	field("Steps", fmt.Sprintf("%d/%d done", done, len(m.st.Steps.Items)))
	openActions := 0
	if m.st.Actions != nil {
		for _, a := range m.st.Actions.Items {
			if !a.Done {
				openActions++
			}
		}
	}
	field("Open actions", strconv.Itoa(openActions))

	return b.String()
}

func (m appModel) viewTable() string {
	if len(m.st.Table) == 0 {
		return "\n" + styleMuted().Render("  No dimension rows yet. Add one with `warroom table add`.")
	}

	cols := []struct {
		key   string
		label string
	}{
		{"dimension", "Dimension"},
		{"is", "Is"},
		{"isNot", "Is not"},
		{"distinction", "Distinction"},
		{"change", "Change"},
	}

	w := (m.bodyWidth() - 2) / len(cols)
	if w < 10 {
		w = 10
	}

	headStyle := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	var b strings.Builder
	b.WriteString("\n ")
	for _, c := range cols {
		b.WriteString(headStyle.Render(render.FitLine(c.label, w)))
	}
	b.WriteString("\n")
	for _, row := range m.st.Table {
		b.WriteString(" ")
		for _, c := range cols {
			cell := ""
			if v, ok := row[c.key]; ok && v != nil {
				cell = fmt.Sprintf("%v", v)
			}
			cell = strings.ReplaceAll(cell, "\n", " ")
			b.WriteString(render.FitLine(cell, w))
		}
		b.WriteString("\n")
	}
	if v := strings.TrimSpace(m.st.Ops.TableFocusMode); v != "" {
		b.WriteString("\n " + styleMuted().Render("focus: "+v) + "\n")
	}
	return b.String()
}

func (m appModel) viewComms() string {
	var b strings.Builder
	b.WriteString("\n")
	if v := strings.TrimSpace(m.st.Ops.CommCadence); v != "" {
		line := "cadence: every " + v + " min"
		if m.st.Ops.CommNextDueISO != "" {
			line += "  next due " + m.st.Ops.CommNextDueISO
		}
		b.WriteString(" " + styleMuted().Render(line) + "\n\n")
	}
	if len(m.st.Ops.CommLog) == 0 {
		b.WriteString(styleMuted().Render("  No comm entries yet. Add one with `warroom comm add`."))
		return b.String()
	}
	// Newest first, like `warroom comm list`.
	for i := len(m.st.Ops.CommLog) - 1; i >= 0; i-- {
		e := m.st.Ops.CommLog[i]
		meta := e.At
		if e.Type != "" {
			meta += " [" + e.Type + "]"
		}
		if meta != "" {
			b.WriteString(" " + styleMuted().Render(meta) + "\n")
		}
		b.WriteString("   " + strings.ReplaceAll(e.Message, "\n", " ") + "\n")
	}
	return b.String()
}
