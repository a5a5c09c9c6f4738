package app

import (
	"fmt"

	"dashtodo/model"
)

// validateText normalizes raw and checks it against the collection.
// excludeID, when non-zero, is skipped by the duplicate check.
func (m *Manager) validateText(raw string, excludeID int64) (string, error) {
	text := model.NormalizeText(raw)
	if text == "" {
		return "", ErrEmptyInput
	}
	if model.TextLength(text) > model.MaxTaskLength {
		return "", ErrTooLong
	}
	if m.hasDuplicate(text, excludeID) {
		return "", ErrDuplicateTask
	}
	return text, nil
}

func (m *Manager) hasDuplicate(text string, excludeID int64) bool {
	for _, t := range m.tasks {
		if excludeID != 0 && t.ID == excludeID {
			continue
		}
		if model.SameText(t.Text, text) {
			return true
		}
	}
	return false
}

func (m *Manager) rejectText(err error) error {
	switch err {
	case ErrEmptyInput:
		m.setHelper(helpEmpty, true)
	case ErrTooLong:
		m.setHelper(helpTooLong, true)
	case ErrDuplicateTask:
		m.setHelper(helpDuplicate, true)
	}
	m.refresh()
	return err
}

func (m *Manager) nextID() int64 {
	id := m.now().UnixMilli() + m.jitter()
	for m.indexOf(id) >= 0 {
		id++
	}
	return id
}

// Create prepends a new open task.
func (m *Manager) Create(raw string) (model.Task, error) {
	if err := m.guard(); err != nil {
		return model.Task{}, err
	}
	text, err := m.validateText(raw, 0)
	if err != nil {
		return model.Task{}, m.rejectText(err)
	}

	task := model.Task{
		ID:        m.nextID(),
		Text:      text,
		Done:      false,
		CreatedAt: model.Timestamp(m.now()),
	}
	m.tasks = append([]model.Task{task}, m.tasks...)
	m.setHelper(helpDefault, false)
	m.persist()
	m.refresh()
	return task, nil
}

// Toggle flips the done flag of a task. Editing or dragging that task is
// cancelled.
func (m *Manager) Toggle(id int64) (model.Task, error) {
	if err := m.guard(); err != nil {
		return model.Task{}, err
	}
	i := m.indexOf(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	m.tasks[i].Done = !m.tasks[i].Done
	if m.edit.is(id) {
		m.edit.clear()
	}
	if m.drag.holds(id) {
		m.drag.clear()
	}
	m.setHelper(helpDefault, false)
	m.persist()
	m.refresh()
	return m.tasks[i], nil
}

// BeginEdit puts a task in edit mode, replacing any other edit.
func (m *Manager) BeginEdit(id int64) error {
	if err := m.guard(); err != nil {
		return err
	}
	if m.indexOf(id) < 0 {
		return ErrNotFound
	}
	m.edit.begin(id)
	m.setHelper(helpEditing, false)
	m.refresh()
	return nil
}

// CancelEdit leaves edit mode without saving.
func (m *Manager) CancelEdit() {
	if !m.unlocked {
		return
	}
	m.edit.clear()
	m.setHelper(helpDefault, false)
	m.refresh()
}

// SaveEdit replaces the text of a task. On a validation error edit mode
// stays active.
func (m *Manager) SaveEdit(id int64, raw string) (model.Task, error) {
	if err := m.guard(); err != nil {
		return model.Task{}, err
	}
	i := m.indexOf(id)
	if i < 0 {
		m.edit.clear()
		m.refresh()
		return model.Task{}, ErrNotFound
	}
	text, err := m.validateText(raw, id)
	if err != nil {
		return model.Task{}, m.rejectText(err)
	}

	m.tasks[i].Text = text
	m.edit.clear()
	m.setHelper(helpDefault, false)
	m.persist()
	m.refresh()
	return m.tasks[i], nil
}

// Delete removes a task.
func (m *Manager) Delete(id int64) error {
	if err := m.guard(); err != nil {
		return err
	}
	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	if m.edit.is(id) {
		m.edit.clear()
	}
	if m.drag.holds(id) {
		m.drag.clear()
	}
	m.setHelper(helpDefault, false)
	m.persist()
	m.refresh()
	return nil
}

// ClearCompleted removes every done task and returns how many went away.
// Nothing is persisted when no task was done.
func (m *Manager) ClearCompleted() (int, error) {
	if err := m.guard(); err != nil {
		return 0, err
	}
	kept := make([]model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.Done {
			kept = append(kept, t)
		}
	}
	removed := len(m.tasks) - len(kept)
	wasDragging := m.drag.active
	m.drag.clear()
	if removed == 0 {
		if wasDragging {
			m.refresh()
		}
		return 0, nil
	}

	m.tasks = kept
	if m.edit.active && m.indexOf(m.edit.id) < 0 {
		m.edit.clear()
	}
	m.setHelper(helpCleared, false)
	m.persist()
	m.refresh()
	return removed, nil
}

// SetFilter changes which tasks the view shows. Switching mode cancels any
// drag and edit in progress.
func (m *Manager) SetFilter(filter model.Filter) error {
	if !filter.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}
	if err := m.guard(); err != nil {
		return err
	}
	if filter == m.filter {
		return nil
	}
	m.drag.clear()
	m.edit.clear()
	m.filter = filter
	m.refresh()
	return nil
}
