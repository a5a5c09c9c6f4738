package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dashtodo/app"
	"dashtodo/model"
	"dashtodo/session"
	"dashtodo/store"
)

type uiMode int

const (
	modeLogin uiMode = iota
	modeNormal
	modeAdd
	modeEdit
	modeDrag
	modeConfirmClear
)

type tickMsg time.Time

type Model struct {
	auth *session.Auth
	mgr  *app.Manager
	view model.View

	mode   uiMode
	cursor int
	input  textinput.Model

	keys     keyMap
	help     help.Model
	showHelp bool

	status    string
	statusErr bool

	now    func() time.Time
	clock  time.Time
	copyFn func(string) error

	width  int
	height int
}

// NewModel wires a session and a task manager over b. startupStatus, when
// set, is shown in the footer until the first action.
func NewModel(b store.Backend, startupStatus string) *Model {
	ti := textinput.New()
	ti.Prompt = "› "

	m := &Model{
		input:  ti,
		keys:   newKeyMap(),
		help:   help.New(),
		now:    time.Now,
		copyFn: clipboard.WriteAll,
	}
	m.mgr = app.NewStoreManager(b, app.RenderFunc(m.render))
	m.auth = session.New(b, m.mgr.SetAccess)
	m.auth.Restore()
	m.clock = m.now()

	if m.auth.LoggedIn() {
		m.mode = modeNormal
	} else {
		m.startLogin()
	}
	if status := strings.TrimSpace(startupStatus); status != "" {
		m.setStatus(status, false)
	}
	return m
}

func (m *Model) render(v model.View) {
	m.view = v
	m.cursor = clamp(m.cursor, 0, max(len(v.Items)-1, 0))
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	if m.mode == modeLogin {
		return tea.Batch(tick(), textinput.Blink)
	}
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case tickMsg:
		m.clock = time.Time(msg)
		return m, tick()
	case tea.KeyMsg:
		switch m.mode {
		case modeLogin:
			return m, m.updateLoginMode(msg)
		case modeAdd, modeEdit:
			return m, m.updateInputMode(msg)
		case modeDrag:
			m.updateDragMode(msg)
		case modeConfirmClear:
			m.updateConfirmMode(msg)
		default:
			if quit := m.updateNormalMode(msg); quit {
				return m, tea.Quit
			}
			if m.mode == modeAdd || m.mode == modeEdit || m.mode == modeLogin {
				return m, textinput.Blink
			}
		}
	}
	return m, nil
}

func (m *Model) updateLoginMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit
	case "enter":
		name, err := m.auth.Login(m.input.Value())
		if err != nil {
			m.setStatus(m.auth.Helper().Text, true)
			return nil
		}
		m.input.Reset()
		m.input.Blur()
		m.mode = modeNormal
		m.cursor = 0
		m.setStatus("Signed in as "+name+".", false)
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) bool {
	m.clearStatus()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return true
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Add):
		m.startAdd()
	case key.Matches(msg, m.keys.Edit):
		m.startEdit()
	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
	case key.Matches(msg, m.keys.Filter):
		m.cycleFilter()
	case key.Matches(msg, m.keys.All):
		m.setFilter(model.FilterAll)
	case key.Matches(msg, m.keys.Active):
		m.setFilter(model.FilterActive)
	case key.Matches(msg, m.keys.Done):
		m.setFilter(model.FilterDone)
	case key.Matches(msg, m.keys.Clear):
		m.startClearConfirm()
	case key.Matches(msg, m.keys.Grab):
		m.grabSelected()
	case key.Matches(msg, m.keys.MoveDown):
		m.moveSelected(1)
	case key.Matches(msg, m.keys.MoveUp):
		m.moveSelected(-1)
	case key.Matches(msg, m.keys.Copy):
		m.copyActiveTodos()
	case key.Matches(msg, m.keys.Logout):
		m.logout()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Cancel):
		m.showHelp = false
		m.help.ShowAll = false
	}
	return false
}

func (m *Model) updateInputMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.mode == modeEdit {
			m.mgr.Apply(app.CancelEdit{})
		}
		m.leaveInput()
		m.setStatus("Cancelled", false)
		return nil
	case "enter":
		m.applyInput()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) applyInput() {
	switch m.mode {
	case modeAdd:
		res := m.mgr.Apply(app.CreateTask{Text: m.input.Value()})
		if res.Err != nil {
			m.statusFromHelper()
			return
		}
		m.leaveInput()
		m.cursor = m.indexOfItem(res.Task.ID)
		m.setStatus("Task added", false)
	case modeEdit:
		id, editing := m.mgr.EditingID()
		if !editing {
			m.leaveInput()
			return
		}
		res := m.mgr.Apply(app.SaveEdit{ID: id, Text: m.input.Value()})
		if err := res.UserError(); err != nil {
			m.statusFromHelper()
			return
		}
		m.leaveInput()
		if res.OK {
			m.setStatus("Task updated", false)
		}
	}
}

func (m *Model) updateDragMode(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.hover(-1)
	case key.Matches(msg, m.keys.Down):
		m.hover(1)
	case key.Matches(msg, m.keys.DropAtEnd):
		m.mgr.Apply(app.DragOverEmpty{})
		m.cursor = max(len(m.view.Items)-1, 0)
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Grab):
		source, _ := m.mgr.Dragging()
		res := m.mgr.Apply(app.Drop{})
		m.mode = modeNormal
		if res.OK {
			m.cursor = m.indexOfItem(source)
			m.statusFromHelper()
		} else {
			m.setStatus("Order unchanged", false)
		}
	case key.Matches(msg, m.keys.Cancel), msg.String() == "ctrl+c":
		m.mgr.Apply(app.CancelDrag{})
		m.mode = modeNormal
		m.setStatus("Move cancelled", false)
	}
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) {
	switch strings.ToLower(msg.String()) {
	case "y":
		res := m.mgr.Apply(app.ClearCompleted{})
		m.mode = modeNormal
		if res.Err != nil {
			m.statusFromHelper()
			return
		}
		m.setStatus(fmt.Sprintf("%d completed tasks removed", res.Removed), false)
	case "n", "esc", "enter":
		m.mode = modeNormal
		m.setStatus("Cancelled", false)
	}
}

func (m *Model) startLogin() {
	m.mode = modeLogin
	m.input.Reset()
	m.input.Placeholder = "Your name"
	m.input.Focus()
}

func (m *Model) startAdd() {
	m.mode = modeAdd
	m.input.Reset()
	m.input.Placeholder = "What needs doing?"
	m.input.Focus()
}

func (m *Model) startEdit() {
	item, ok := m.selectedItem()
	if !ok {
		return
	}
	if res := m.mgr.Apply(app.BeginEdit{ID: item.ID}); !res.OK {
		m.statusFromHelper()
		return
	}
	m.mode = modeEdit
	m.input.Placeholder = ""
	m.input.SetValue(item.Text)
	m.input.CursorEnd()
	m.input.Focus()
	m.statusFromHelper()
}

func (m *Model) leaveInput() {
	m.mode = modeNormal
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) toggleSelected() {
	item, ok := m.selectedItem()
	if !ok {
		return
	}
	res := m.mgr.Apply(app.ToggleTask{ID: item.ID})
	if err := res.UserError(); err != nil {
		m.statusFromHelper()
		return
	}
	if res.Task.Done {
		m.setStatus("Marked done: "+truncateRunes(res.Task.Text, 40), false)
	} else {
		m.setStatus("Reopened: "+truncateRunes(res.Task.Text, 40), false)
	}
}

func (m *Model) deleteSelected() {
	item, ok := m.selectedItem()
	if !ok {
		return
	}
	if err := m.mgr.Apply(app.DeleteTask{ID: item.ID}).UserError(); err != nil {
		m.statusFromHelper()
		return
	}
	m.setStatus("Task deleted", false)
}

func (m *Model) cycleFilter() {
	next := model.FilterAll
	switch m.mgr.Filter() {
	case model.FilterAll:
		next = model.FilterActive
	case model.FilterActive:
		next = model.FilterDone
	}
	m.setFilter(next)
}

func (m *Model) setFilter(f model.Filter) {
	if err := m.mgr.Apply(app.SetFilter{Filter: f}).Err; err != nil {
		m.statusFromHelper()
		return
	}
	m.cursor = 0
	m.setStatus("Filter: "+filterLabel(f), false)
}

func (m *Model) startClearConfirm() {
	if m.view.Counts.Done == 0 {
		m.setStatus("No completed tasks to clear", false)
		return
	}
	m.mode = modeConfirmClear
}

func (m *Model) grabSelected() {
	item, ok := m.selectedItem()
	if !ok {
		return
	}
	if !m.mgr.Apply(app.BeginDrag{ID: item.ID}).OK {
		m.setStatus("Only open tasks can be moved", false)
		return
	}
	m.mode = modeDrag
	m.setStatus("Moving: "+truncateRunes(item.Text, 40), false)
}

// hover moves the drop cursor and reports the slot it points at. Moving
// down drops after the hovered task, moving up drops before it.
func (m *Model) hover(delta int) {
	if len(m.view.Items) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.view.Items)-1)
	target := m.view.Items[m.cursor]
	pos := model.Before
	source, _ := m.mgr.Dragging()
	if m.cursor > m.indexOfItem(source) {
		pos = model.After
	}
	m.mgr.Apply(app.DragOver{Target: target.ID, Position: pos})
}

// moveSelected swaps the selected open task with its nearest open
// neighbour in the visible list.
func (m *Model) moveSelected(delta int) {
	item, ok := m.selectedItem()
	if !ok || item.Done {
		return
	}
	neighbour, ok := m.activeNeighbour(delta)
	if !ok {
		return
	}
	pos := model.After
	if delta < 0 {
		pos = model.Before
	}
	if !m.mgr.Apply(app.MoveTask{Source: item.ID, Target: neighbour.ID, Position: pos}).OK {
		return
	}
	m.cursor = m.indexOfItem(item.ID)
	m.statusFromHelper()
}

func (m *Model) activeNeighbour(delta int) (model.Task, bool) {
	for i := m.cursor + delta; i >= 0 && i < len(m.view.Items); i += delta {
		if !m.view.Items[i].Done {
			return m.view.Items[i].Task, true
		}
	}
	return model.Task{}, false
}

func (m *Model) copyActiveTodos() {
	parts := make([]string, 0, len(m.view.Items))
	for _, t := range m.mgr.Tasks() {
		if !t.Done {
			parts = append(parts, "- "+t.Text)
		}
	}
	if len(parts) == 0 {
		m.setStatus("No active tasks to copy", false)
		return
	}
	if err := m.copyFn(strings.Join(parts, "\n")); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%d active tasks copied to clipboard", len(parts)), false)
}

func (m *Model) logout() {
	if err := m.auth.Logout(); err != nil {
		m.setStatus(m.auth.Helper().Text, true)
		return
	}
	m.cursor = 0
	m.showHelp = false
	m.help.ShowAll = false
	m.startLogin()
	m.setStatus("Signed out", false)
}

func (m *Model) moveCursor(delta int) {
	if len(m.view.Items) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.view.Items)-1)
}

func (m *Model) selectedItem() (model.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Items) {
		return model.Item{}, false
	}
	return m.view.Items[m.cursor], true
}

func (m *Model) indexOfItem(id int64) int {
	for i, it := range m.view.Items {
		if it.ID == id {
			return i
		}
	}
	return 0
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *Model) statusFromHelper() {
	h := m.mgr.Helper()
	m.setStatus(h.Text, h.IsError)
}
