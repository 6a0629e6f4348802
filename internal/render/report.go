// Package render turns a worksheet into shareable output: a markdown
// incident report and its ANSI rendering for the terminal.
package render

import (
	"fmt"
	"sort"
	"strings"

	"warroom-cli/internal/model"
)

// Markdown builds the incident report for a worksheet. Sections with no
// content are omitted so an intake-only worksheet produces a short doc,
// not a skeleton of empty headings.
func Markdown(st *model.State) string {
	var b strings.Builder

	title := strings.TrimSpace(st.Pre.OneLine)
	if title == "" {
		title = "Untitled incident"
	}
	fmt.Fprintf(&b, "# %s\n", title)

	if line := statusLine(st); line != "" {
		fmt.Fprintf(&b, "\n%s\n", line)
	}

	writeKVSection(&b, "Problem", []kv{
		{"What's wrong", st.Pre.Symptoms},
		{"Who/what is affected", st.Pre.Affected},
		{"Since", st.Pre.Started},
		{"Context", st.Pre.Context},
	})
	writeKVSection(&b, "Impact", []kv{
		{"Now", st.Impact.Now},
		{"If it continues", st.Impact.Future},
		{"Time pressure", st.Impact.Time},
	})

	writeTable(&b, st.Table)
	writeCauses(&b, st)
	writeSteps(&b, st.Steps)
	writeActions(&b, st.Actions)
	writeComms(&b, st.Ops)
	writeHandover(&b, st.Handover)

	return b.String()
}

type kv struct {
	label string
	value string
}

func writeKVSection(b *strings.Builder, heading string, rows []kv) {
	any := false
	for _, r := range rows {
		if strings.TrimSpace(r.value) != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, r := range rows {
		if v := strings.TrimSpace(r.value); v != "" {
			fmt.Fprintf(b, "- **%s:** %s\n", r.label, v)
		}
	}
}

func statusLine(st *model.State) string {
	var parts []string
	if v := strings.TrimSpace(st.Ops.Severity); v != "" {
		parts = append(parts, "severity "+v)
	}
	if v := strings.TrimSpace(st.Ops.Owner); v != "" {
		parts = append(parts, "owner "+v)
	}
	if st.Ops.ContainStatus != model.ContainNone {
		parts = append(parts, "containment: "+string(st.Ops.ContainStatus))
	}
	if v := strings.TrimSpace(st.Ops.Bridge); v != "" {
		parts = append(parts, "bridge "+v)
	}
	return strings.Join(parts, " | ")
}

var tableColumns = []struct {
	key   string
	label string
}{
	{"dimension", "Dimension"},
	{"is", "Is"},
	{"isNot", "Is not"},
	{"distinction", "Distinction"},
	{"change", "Change"},
}

func writeTable(b *strings.Builder, rows []model.TableRow) {
	if len(rows) == 0 {
		return
	}
	b.WriteString("\n## Is / Is not\n\n")
	var head, sep []string
	for _, c := range tableColumns {
		head = append(head, c.label)
		sep = append(sep, "---")
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(head, " | "))
	fmt.Fprintf(b, "| %s |\n", strings.Join(sep, " | "))
	for _, row := range rows {
		var cells []string
		for _, c := range tableColumns {
			cells = append(cells, tableCell(row[c.key]))
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(cells, " | "))
	}
}

func tableCell(v any) string {
	if v == nil {
		return ""
	}
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func writeCauses(b *strings.Builder, st *model.State) {
	if len(st.Causes) == 0 {
		return
	}
	b.WriteString("\n## Causes\n")
	for i, c := range st.Causes {
		name := strings.TrimSpace(c.Suspect)
		if name == "" {
			name = "(unnamed)"
		}
		marker := ""
		if st.LikelyCauseID != nil && *st.LikelyCauseID == c.ID {
			marker = " (likely)"
		}
		fmt.Fprintf(b, "\n### %d. %s%s\n\n", i+1, name, marker)
		if v := strings.TrimSpace(c.SummaryText); v != "" {
			fmt.Fprintf(b, "%s\n\n", v)
		} else if s := causeSentence(c); s != "" {
			fmt.Fprintf(b, "%s\n\n", s)
		}
		if c.Confidence != "" {
			fmt.Fprintf(b, "- confidence: %s\n", c.Confidence)
		}
		if v := strings.TrimSpace(c.Evidence); v != "" {
			fmt.Fprintf(b, "- evidence: %s\n", v)
		}
		writeFindings(b, c.Findings)
	}
}

// causeSentence assembles the suspect/accusation/impact fragments into the
// hypothesis sentence the worksheet UI shows.
func causeSentence(c model.Cause) string {
	var parts []string
	if v := strings.TrimSpace(c.Suspect); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(c.Accusation); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(c.Impact); v != "" {
		parts = append(parts, "causing "+v)
	}
	return strings.Join(parts, " ")
}

func writeFindings(b *strings.Builder, findings map[string]model.Finding) {
	if len(findings) == 0 {
		return
	}
	facts := make([]string, 0, len(findings))
	for fact := range findings {
		facts = append(facts, fact)
	}
	sort.Strings(facts)
	b.WriteString("- findings:\n")
	for _, fact := range facts {
		f := findings[fact]
		line := fmt.Sprintf("  - %s: %s", fact, f.Mode)
		if v := strings.TrimSpace(f.Note); v != "" {
			line += " (" + v + ")"
		}
		b.WriteString(line + "\n")
	}
}

func writeSteps(b *strings.Builder, steps model.Steps) {
	if len(steps.Items) == 0 {
		return
	}
	b.WriteString("\n## Verification steps\n\n")
	for _, s := range steps.Items {
		box := " "
		if s.Checked {
			box = "x"
		}
		fmt.Fprintf(b, "- [%s] %s\n", box, s.Label)
	}
}

func writeActions(b *strings.Builder, acts *model.Actions) {
	if acts == nil || len(acts.Items) == 0 {
		return
	}
	b.WriteString("\n## Action items\n\n")
	for _, a := range acts.Items {
		box := " "
		if a.Done {
			box = "x"
		}
		line := fmt.Sprintf("- [%s] %s", box, a.Title)
		var tail []string
		if v := strings.TrimSpace(a.Owner); v != "" {
			tail = append(tail, "owner "+v)
		}
		if v := strings.TrimSpace(a.Due); v != "" {
			tail = append(tail, "due "+v)
		}
		if len(tail) > 0 {
			line += " (" + strings.Join(tail, ", ") + ")"
		}
		b.WriteString(line + "\n")
		if v := strings.TrimSpace(a.Notes); v != "" {
			fmt.Fprintf(b, "  - %s\n", v)
		}
	}
}

func writeComms(b *strings.Builder, ops model.Ops) {
	if len(ops.CommLog) == 0 && strings.TrimSpace(ops.CommCadence) == "" {
		return
	}
	b.WriteString("\n## Comms\n\n")
	if v := strings.TrimSpace(ops.CommCadence); v != "" {
		line := "Cadence: every " + v + " min"
		if ops.CommNextDueISO != "" {
			line += ", next update due " + ops.CommNextDueISO
		}
		b.WriteString(line + "\n\n")
	}
	for _, e := range ops.CommLog {
		prefix := e.At
		if e.Type != "" {
			prefix += " [" + e.Type + "]"
		}
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			fmt.Fprintf(b, "- %s %s\n", prefix, e.Message)
		} else {
			fmt.Fprintf(b, "- %s\n", e.Message)
		}
	}
}

var handoverLabels = map[string]string{
	"summary":   "Summary",
	"status":    "Status",
	"risks":     "Risks",
	"nextSteps": "Next steps",
	"contacts":  "Contacts",
}

func writeHandover(b *strings.Builder, h model.Handover) {
	any := false
	for _, sec := range model.HandoverSections {
		if v, _ := h.Get(sec); strings.TrimSpace(v) != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}
	b.WriteString("\n## Handover\n")
	for _, sec := range model.HandoverSections {
		v, _ := h.Get(sec)
		if strings.TrimSpace(v) == "" {
			continue
		}
		fmt.Fprintf(b, "\n### %s\n\n%s\n", handoverLabels[sec], strings.TrimSpace(v))
	}
}
