package tui

import (
	"strconv"
	"strings"

	"warroom-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type causeItem struct {
	cause  model.Cause
	likely bool
}

func (i causeItem) Title() string {
	name := strings.TrimSpace(i.cause.Suspect)
	if name == "" {
		name = "(unnamed)"
	}
	if i.likely {
		name += "  ★ likely"
	}
	return name
}

func (i causeItem) Description() string {
	parts := []string{}
	if i.cause.Confidence != "" {
		parts = append(parts, "confidence "+string(i.cause.Confidence))
	}
	if n := len(i.cause.Findings); n > 0 {
		parts = append(parts, plural(n, "finding"))
	}
	if v := strings.TrimSpace(i.cause.SummaryText); v != "" {
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return "no findings yet"
	}
	return strings.Join(parts, " · ")
}

func (i causeItem) FilterValue() string { return i.cause.Suspect + " " + i.cause.SummaryText }

type stepItem struct {
	step model.Step
}

func (i stepItem) Title() string {
	box := "[ ]"
	if i.step.Checked {
		box = "[x]"
	}
	return box + " " + i.step.Label
}

func (i stepItem) Description() string {
	if i.step.Checked {
		return "done"
	}
	return "pending"
}

func (i stepItem) FilterValue() string { return i.step.Label }

type actionItem struct {
	action model.Action
}

func (i actionItem) Title() string {
	box := "[ ]"
	if i.action.Done {
		box = "[x]"
	}
	return box + " " + i.action.Title
}

func (i actionItem) Description() string {
	var parts []string
	if v := strings.TrimSpace(i.action.Owner); v != "" {
		parts = append(parts, "owner "+v)
	}
	if v := strings.TrimSpace(i.action.Due); v != "" {
		parts = append(parts, "due "+v)
	}
	if v := strings.TrimSpace(i.action.Notes); v != "" {
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return "unassigned"
	}
	return strings.Join(parts, " · ")
}

func (i actionItem) FilterValue() string { return i.action.Title + " " + i.action.Owner }

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

func newList(items []list.Item, singular, pluralName string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	// The dashboard renders its own header and footer chrome.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName(singular, pluralName)
	// The bubbles list quits on ESC by default; here ESC clears the filter
	// and q quits.
	l.KeyMap.Quit.SetKeys("q")
	return l
}
