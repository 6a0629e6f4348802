package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"warroom-cli/internal/model"
	"warroom-cli/internal/state"
	"warroom-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tab int

const (
	tabOverview tab = iota
	tabTable
	tabCauses
	tabSteps
	tabActions
	tabComms
)

var tabNames = []string{"Overview", "Is/Is-Not", "Causes", "Steps", "Actions", "Comms"}

type reloadTickMsg struct{}

type appModel struct {
	store store.Store
	st    *model.State

	width  int
	height int

	tab tab

	causesList  list.Model
	stepsList   list.Model
	actionsList list.Model

	lastModTime time.Time

	// One-line feedback after a save or reload.
	status string
}

func newAppModel(s store.Store, st *model.State) appModel {
	m := appModel{store: s, st: st}

	m.causesList = newList(nil, "cause", "causes")
	m.stepsList = newList(nil, "step", "steps")
	m.actionsList = newList(nil, "action", "actions")

	m.refreshLists()
	m.captureModTime()
	return m
}

func (m appModel) Init() tea.Cmd { return tickReload() }

func tickReload() tea.Cmd {
	return tea.Tick(750*time.Millisecond, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case reloadTickMsg:
		if m.storeChanged() {
			m.reloadFromDisk()
		}
		return m, tickReload()

	case tea.KeyMsg:
		// While a list filter is being typed, every key belongs to it.
		if l := m.activeList(); l != nil && l.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			// Pick up edits made by CLI commands in another terminal.
			m.reloadFromDisk()
			return m, nil
		case "tab", "right":
			m.tab = (m.tab + 1) % tab(len(tabNames))
			return m, nil
		case "shift+tab", "left":
			m.tab = (m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames))
			return m, nil
		case "1", "2", "3", "4", "5", "6":
			m.tab = tab(msg.String()[0] - '1')
			return m, nil
		case " ", "enter":
			switch m.tab {
			case tabSteps:
				m.toggleStep()
				return m, nil
			case tabActions:
				m.toggleAction()
				return m, nil
			case tabCauses:
				if msg.String() == "enter" {
					m.toggleLikely()
					return m, nil
				}
			}
		}
	}

	switch m.tab {
	case tabCauses:
		var cmd tea.Cmd
		m.causesList, cmd = m.causesList.Update(msg)
		return m, cmd
	case tabSteps:
		var cmd tea.Cmd
		m.stepsList, cmd = m.stepsList.Update(msg)
		return m, cmd
	case tabActions:
		var cmd tea.Cmd
		m.actionsList, cmd = m.actionsList.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *appModel) activeList() *list.Model {
	switch m.tab {
	case tabCauses:
		return &m.causesList
	case tabSteps:
		return &m.stepsList
	case tabActions:
		return &m.actionsList
	default:
		return nil
	}
}

func (m appModel) View() string {
	header := m.viewHeader()
	tabs := m.viewTabs()

	var body string
	switch m.tab {
	case tabOverview:
		body = m.viewOverview()
	case tabTable:
		body = m.viewTable()
	case tabCauses:
		body = m.causesList.View()
	case tabSteps:
		body = m.stepsList.View()
	case tabActions:
		body = m.actionsList.View()
	case tabComms:
		body = m.viewComms()
	}

	footer := styleMuted().Render(m.footerHelp())
	parts := []string{header, tabs, body, footer}
	if m.status != "" {
		parts = append(parts, styleMuted().Render(m.status))
	}
	return strings.Join(parts, "\n")
}

func (m appModel) viewHeader() string {
	title := strings.TrimSpace(m.st.Pre.OneLine)
	if title == "" {
		title = "(no one-line summary yet)"
	}
	head := styleTitle().Render(m.store.Name()) + "  " + title

	var badges []string
	if v := strings.TrimSpace(m.st.Ops.Severity); v != "" {
		badges = append(badges, v)
	}
	if m.st.Ops.ContainStatus != model.ContainNone {
		badges = append(badges, string(m.st.Ops.ContainStatus))
	}
	if v := strings.TrimSpace(m.st.Ops.Owner); v != "" {
		badges = append(badges, "owner "+v)
	}
	if len(badges) > 0 {
		head += "  " + styleMuted().Render(strings.Join(badges, " · "))
	}
	return head
}

func (m appModel) viewTabs() string {
	on := lipgloss.NewStyle().Bold(true).Foreground(colorTabOn).Underline(true)
	off := lipgloss.NewStyle().Foreground(colorTabOff)
	var parts []string
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == m.tab {
			parts = append(parts, on.Render(label))
		} else {
			parts = append(parts, off.Render(label))
		}
	}
	return strings.Join(parts, "   ")
}

func (m appModel) footerHelp() string {
	switch m.tab {
	case tabSteps:
		return "space/enter: toggle  /: filter  tab: next  r: reload  q: quit"
	case tabActions:
		return "space/enter: toggle done  /: filter  tab: next  r: reload  q: quit"
	case tabCauses:
		return "enter: mark likely  /: filter  tab: next  r: reload  q: quit"
	default:
		return "tab/1-6: switch  r: reload  q: quit"
	}
}

func (m *appModel) resizeLists() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.causesList.SetSize(w, h)
	m.stepsList.SetSize(w, h)
	m.actionsList.SetSize(w, h)
}

func (m *appModel) refreshLists() {
	m.refreshCauses()
	m.refreshSteps()
	m.refreshActions()
}

func (m *appModel) refreshCauses() {
	cur := ""
	if it, ok := m.causesList.SelectedItem().(causeItem); ok {
		cur = it.cause.ID
	}
	var items []list.Item
	for _, c := range m.st.Causes {
		likely := m.st.LikelyCauseID != nil && *m.st.LikelyCauseID == c.ID
		items = append(items, causeItem{cause: c, likely: likely})
	}
	m.causesList.SetItems(items)
	if cur != "" {
		for i, it := range m.causesList.Items() {
			if ci, ok := it.(causeItem); ok && ci.cause.ID == cur {
				m.causesList.Select(i)
				break
			}
		}
	}
}

func (m *appModel) refreshSteps() {
	cur := ""
	if it, ok := m.stepsList.SelectedItem().(stepItem); ok {
		cur = it.step.ID
	}
	var items []list.Item
	for _, s := range m.st.Steps.Items {
		items = append(items, stepItem{step: s})
	}
	m.stepsList.SetItems(items)
	if cur != "" {
		for i, it := range m.stepsList.Items() {
			if si, ok := it.(stepItem); ok && si.step.ID == cur {
				m.stepsList.Select(i)
				break
			}
		}
	}
}

func (m *appModel) refreshActions() {
	cur := ""
	if it, ok := m.actionsList.SelectedItem().(actionItem); ok {
		cur = it.action.ID
	}
	var items []list.Item
	if m.st.Actions != nil {
		for _, a := range m.st.Actions.Items {
			items = append(items, actionItem{action: a})
		}
	}
	m.actionsList.SetItems(items)
	if cur != "" {
		for i, it := range m.actionsList.Items() {
			if ai, ok := it.(actionItem); ok && ai.action.ID == cur {
				m.actionsList.Select(i)
				break
			}
		}
	}
}

func (m *appModel) toggleStep() {
	it, ok := m.stepsList.SelectedItem().(stepItem)
	if !ok {
		return
	}
	for i := range m.st.Steps.Items {
		if m.st.Steps.Items[i].ID == it.step.ID {
			m.st.Steps.Items[i].Checked = !m.st.Steps.Items[i].Checked
			m.save("step toggle")
			return
		}
	}
}

func (m *appModel) toggleAction() {
	it, ok := m.actionsList.SelectedItem().(actionItem)
	if !ok || m.st.Actions == nil {
		return
	}
	for i := range m.st.Actions.Items {
		if m.st.Actions.Items[i].ID == it.action.ID {
			m.st.Actions.Items[i].Done = !m.st.Actions.Items[i].Done
			m.save("action toggle")
			return
		}
	}
}

func (m *appModel) toggleLikely() {
	it, ok := m.causesList.SelectedItem().(causeItem)
	if !ok {
		return
	}
	if m.st.LikelyCauseID != nil && *m.st.LikelyCauseID == it.cause.ID {
		m.st.LikelyCauseID = nil
	} else {
		id := it.cause.ID
		m.st.LikelyCauseID = &id
	}
	m.save("likely")
}

func (m *appModel) save(reason string) {
	m.st.Causes = state.SerializeCauses(m.st.Causes, nil)
	saved, err := m.store.Save(context.Background(), m.st, reason)
	if err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.st = saved
	m.captureModTime()
	m.refreshLists()
	m.status = "saved (" + reason + ")"
}

func (m *appModel) captureModTime() {
	m.lastModTime = fileModTime(m.store.SnapshotPath())
}

func (m *appModel) storeChanged() bool {
	return fileModTime(m.store.SnapshotPath()).After(m.lastModTime)
}

func fileModTime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

func (m *appModel) reloadFromDisk() {
	st, err := m.store.Load()
	if err != nil {
		m.status = "reload failed: " + err.Error()
		return
	}
	m.st = st
	m.captureModTime()
	m.refreshLists()
	m.status = "reloaded"
}
