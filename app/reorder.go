package app

import "dashtodo/model"

type dropKind int

const (
	// dropNone means no usable target; dropping moves nothing.
	dropNone dropKind = iota
	// dropEnd moves the source to the end of the active tasks.
	dropEnd
	// dropRelative inserts the source before or after target.
	dropRelative
)

type dragState struct {
	source   int64
	active   bool
	kind     dropKind
	target   int64
	position model.Position
}

func (d *dragState) clear() { *d = dragState{} }

func (d dragState) holds(id int64) bool {
	return d.active && d.source == id
}

// BeginDrag starts dragging an open task that is not being edited.
func (m *Manager) BeginDrag(id int64) bool {
	if !m.unlocked {
		return false
	}
	i := m.indexOf(id)
	if i < 0 || m.tasks[i].Done || m.edit.is(id) {
		return false
	}
	m.drag = dragState{source: id, active: true, kind: dropNone, position: model.Before}
	m.refresh()
	return true
}

// DragOver records the task under the pointer and which half of it the
// pointer is in. A done target resolves to the end of the active tasks.
func (m *Manager) DragOver(target int64, pos model.Position) {
	if !m.drag.active {
		return
	}
	if pos != model.After {
		pos = model.Before
	}

	next := dragState{source: m.drag.source, active: true, kind: dropNone, position: model.Before}
	if i := m.indexOf(target); i >= 0 && target != m.drag.source {
		if m.tasks[i].Done {
			next.kind = dropEnd
		} else {
			next.kind = dropRelative
			next.target = target
			next.position = pos
		}
	}
	if next == m.drag {
		return
	}
	m.drag = next
	m.refresh()
}

// DragOverEmpty records that the pointer is over no task.
func (m *Manager) DragOverEmpty() {
	if !m.drag.active || m.drag.kind == dropEnd {
		return
	}
	m.drag = dragState{source: m.drag.source, active: true, kind: dropEnd, position: model.Before}
	m.refresh()
}

// Drop finishes the drag at the last recorded hover position and reports
// whether the order changed.
func (m *Manager) Drop() bool {
	if !m.drag.active {
		return false
	}
	d := m.drag
	m.drag.clear()

	var (
		reordered []model.Task
		ok        bool
	)
	switch d.kind {
	case dropEnd:
		reordered, ok = moveActiveToEnd(m.tasks, d.source)
	case dropRelative:
		reordered, ok = moveActive(m.tasks, d.source, d.target, d.position)
	}
	return m.finishMove(reordered, ok)
}

// CancelDrag abandons the drag in progress.
func (m *Manager) CancelDrag() {
	if !m.drag.active {
		return
	}
	m.drag.clear()
	m.refresh()
}

// Dragging returns the task being dragged.
func (m *Manager) Dragging() (int64, bool) {
	return m.drag.source, m.drag.active
}

// MoveActiveTodo moves an open task next to another open task. Done tasks
// keep their slots.
func (m *Manager) MoveActiveTodo(source, target int64, pos model.Position) bool {
	if !m.unlocked {
		return false
	}
	m.drag.clear()
	if pos != model.Before && pos != model.After {
		m.refresh()
		return false
	}
	reordered, ok := moveActive(m.tasks, source, target, pos)
	return m.finishMove(reordered, ok)
}

// MoveActiveTodoToEnd moves an open task behind every other open task.
func (m *Manager) MoveActiveTodoToEnd(source int64) bool {
	if !m.unlocked {
		return false
	}
	m.drag.clear()
	reordered, ok := moveActiveToEnd(m.tasks, source)
	return m.finishMove(reordered, ok)
}

func (m *Manager) finishMove(reordered []model.Task, ok bool) bool {
	if !ok {
		m.refresh()
		return false
	}
	m.tasks = reordered
	m.setHelper(helpReordered, false)
	m.persist()
	m.refresh()
	return true
}

func findTask(tasks []model.Task, id int64) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func activeTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Done {
			out = append(out, t)
		}
	}
	return out
}

func indexIn(tasks []model.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// recombine fills the open slots of tasks, in order, from active. Done
// tasks stay where they are.
func recombine(tasks, active []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	cursor := 0
	for i, t := range tasks {
		if t.Done {
			out[i] = t
			continue
		}
		out[i] = active[cursor]
		cursor++
	}
	return out
}

func moveActive(tasks []model.Task, source, target int64, pos model.Position) ([]model.Task, bool) {
	if source == target {
		return nil, false
	}
	src, ok := findTask(tasks, source)
	if !ok || src.Done {
		return nil, false
	}
	dst, ok := findTask(tasks, target)
	if !ok || dst.Done {
		return nil, false
	}

	active := activeTasks(tasks)
	from := indexIn(active, source)
	if from < 0 {
		return nil, false
	}
	active = append(active[:from], active[from+1:]...)

	at := indexIn(active, target)
	if at < 0 {
		return nil, false
	}
	if pos == model.After {
		at++
	}
	active = append(active[:at], append([]model.Task{src}, active[at:]...)...)
	return recombine(tasks, active), true
}

func moveActiveToEnd(tasks []model.Task, source int64) ([]model.Task, bool) {
	src, ok := findTask(tasks, source)
	if !ok || src.Done {
		return nil, false
	}

	active := activeTasks(tasks)
	from := indexIn(active, source)
	if from < 0 || from == len(active)-1 {
		return nil, false
	}
	active = append(active[:from], active[from+1:]...)
	active = append(active, src)
	return recombine(tasks, active), true
}
