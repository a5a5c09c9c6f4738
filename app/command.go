package app

import (
	"errors"

	"dashtodo/model"
)

// Command is a user intent that Apply executes against a Manager.
type Command interface {
	apply(m *Manager) Result
}

// Result reports what a command did.
type Result struct {
	OK      bool
	Task    model.Task
	Removed int
	Err     error
}

// UserError returns the error a UI should show. ErrNotFound usually means
// a stale reference and is hidden.
func (r Result) UserError() error {
	if errors.Is(r.Err, ErrNotFound) {
		return nil
	}
	return r.Err
}

// Apply runs cmd. Commands execute synchronously and one at a time.
func (m *Manager) Apply(cmd Command) Result {
	if cmd == nil {
		return Result{}
	}
	return cmd.apply(m)
}

type (
	SessionChange struct {
		LoggedIn bool
		Username string
	}
	CreateTask struct{ Text string }
	ToggleTask struct{ ID int64 }
	BeginEdit  struct{ ID int64 }
	CancelEdit struct{}
	SaveEdit   struct {
		ID   int64
		Text string
	}
	DeleteTask     struct{ ID int64 }
	ClearCompleted struct{}
	SetFilter      struct{ Filter model.Filter }
	BeginDrag      struct{ ID int64 }
	DragOver       struct {
		Target   int64
		Position model.Position
	}
	DragOverEmpty struct{}
	Drop          struct{}
	CancelDrag    struct{}
	MoveTask      struct {
		Source   int64
		Target   int64
		Position model.Position
	}
	MoveTaskToEnd struct{ Source int64 }
)

func resultOf(task model.Task, err error) Result {
	return Result{OK: err == nil, Task: task, Err: err}
}

func errResult(err error) Result {
	return Result{OK: err == nil, Err: err}
}

func (c SessionChange) apply(m *Manager) Result {
	m.SetAccess(c.LoggedIn, c.Username)
	return Result{OK: !m.Locked()}
}

func (c CreateTask) apply(m *Manager) Result { return resultOf(m.Create(c.Text)) }
func (c ToggleTask) apply(m *Manager) Result { return resultOf(m.Toggle(c.ID)) }
func (c BeginEdit) apply(m *Manager) Result  { return errResult(m.BeginEdit(c.ID)) }

func (c CancelEdit) apply(m *Manager) Result {
	m.CancelEdit()
	return Result{OK: !m.Locked()}
}

func (c SaveEdit) apply(m *Manager) Result   { return resultOf(m.SaveEdit(c.ID, c.Text)) }
func (c DeleteTask) apply(m *Manager) Result { return errResult(m.Delete(c.ID)) }

func (c ClearCompleted) apply(m *Manager) Result {
	n, err := m.ClearCompleted()
	return Result{OK: err == nil && n > 0, Removed: n, Err: err}
}

func (c SetFilter) apply(m *Manager) Result { return errResult(m.SetFilter(c.Filter)) }
func (c BeginDrag) apply(m *Manager) Result { return Result{OK: m.BeginDrag(c.ID)} }

func (c DragOver) apply(m *Manager) Result {
	if c.Position != model.Before && c.Position != model.After {
		return Result{Err: ErrInvalidPosition}
	}
	m.DragOver(c.Target, c.Position)
	return Result{OK: m.drag.active}
}

func (c DragOverEmpty) apply(m *Manager) Result {
	m.DragOverEmpty()
	return Result{OK: m.drag.active}
}

func (c Drop) apply(m *Manager) Result { return Result{OK: m.Drop()} }

func (c CancelDrag) apply(m *Manager) Result {
	m.CancelDrag()
	return Result{OK: true}
}

func (c MoveTask) apply(m *Manager) Result {
	if c.Position != model.Before && c.Position != model.After {
		return Result{Err: ErrInvalidPosition}
	}
	return Result{OK: m.MoveActiveTodo(c.Source, c.Target, c.Position)}
}

func (c MoveTaskToEnd) apply(m *Manager) Result {
	return Result{OK: m.MoveActiveTodoToEnd(c.Source)}
}
