package app

import (
	"fmt"

	"dashtodo/model"
)

// VisibleTasks returns the tasks the current filter shows, in stored order.
func (m *Manager) VisibleTasks() []model.Task {
	out := make([]model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if m.filter.Matches(t.Done) {
			out = append(out, t)
		}
	}
	return out
}

// Counts summarizes the whole collection regardless of filter.
func (m *Manager) Counts() model.Counts {
	return model.CountTasks(m.tasks)
}

// View builds the render contract for the current state.
func (m *Manager) View() model.View {
	v := model.View{
		Locked:   !m.unlocked,
		Username: m.username,
		Filter:   m.filter,
		Items:    []model.Item{},
		Helper:   m.helper,
	}
	if !m.unlocked {
		v.Summary = "Login required"
		return v
	}

	for _, t := range m.VisibleTasks() {
		editing := m.edit.is(t.ID)
		item := model.Item{
			Task:      t,
			Editing:   editing,
			Draggable: !t.Done && !editing,
			Dragging:  m.drag.holds(t.ID),
		}
		if m.drag.active && m.drag.kind == dropRelative && m.drag.target == t.ID {
			item.DropHint = m.drag.position
		}
		v.Items = append(v.Items, item)
	}
	if m.edit.active {
		v.EditingID = m.edit.id
	}
	v.Dragging = m.drag.active
	v.DropAtEnd = m.drag.active && m.drag.kind == dropEnd
	v.Counts = m.Counts()
	v.Summary = summaryText(v.Counts)
	v.Empty = m.emptyText(len(v.Items))
	v.CanClear = v.Counts.Done > 0
	return v
}

func summaryText(c model.Counts) string {
	if c.Total == 0 {
		return "0 tasks"
	}
	return fmt.Sprintf("%d active · %d done · %d total", c.Active, c.Done, c.Total)
}

func (m *Manager) emptyText(visible int) string {
	if visible > 0 {
		return ""
	}
	if len(m.tasks) == 0 {
		return "No tasks yet. Add your first task."
	}
	switch m.filter {
	case model.FilterActive:
		return "No active tasks. Nice progress."
	case model.FilterDone:
		return "No completed tasks yet."
	default:
		return "No tasks to show."
	}
}
