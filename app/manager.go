package app

import (
	"errors"
	"log"
	"math/rand/v2"
	"time"

	"dashtodo/model"
	"dashtodo/store"
)

const (
	helpDefault   = "Maximum 80 characters."
	helpLocked    = "Login first to use todo features."
	helpEmpty     = "Please enter a task."
	helpTooLong   = "Task must be 80 characters or less."
	helpDuplicate = "This task already exists."
	helpEditing   = "Press Enter to save or Escape to cancel."
	helpReordered = "Active task order updated."
	helpCleared   = "Completed tasks removed."
)

var (
	ErrEmptyInput      = errors.New("task text must not be empty")
	ErrTooLong         = errors.New("task text is too long")
	ErrDuplicateTask   = errors.New("task already exists")
	ErrLocked          = errors.New("login required")
	ErrNotFound        = errors.New("task not found")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrInvalidPosition = errors.New("invalid drop position")
)

// Persistence is the key-value capability the manager stores collections in.
type Persistence interface {
	LoadCollection(key string) []model.Task
	SaveCollection(key string, tasks []model.Task) bool
	Exists(key string) bool
	Erase(key string) bool
}

// Renderer draws a view. It is called after every state change.
type Renderer interface {
	Render(v model.View)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(v model.View)

func (f RenderFunc) Render(v model.View) { f(v) }

// editSlot holds the id of the task in edit mode, if any.
type editSlot struct {
	id     int64
	active bool
}

func (e *editSlot) begin(id int64) { *e = editSlot{id: id, active: true} }
func (e *editSlot) clear()         { *e = editSlot{} }
func (e editSlot) is(id int64) bool {
	return e.active && e.id == id
}

// Manager owns the task collection of the signed-in user. It is not safe
// for concurrent use; callers serialize operations.
type Manager struct {
	store    Persistence
	renderer Renderer

	now    func() time.Time
	jitter func() int64

	unlocked bool
	username string
	key      string
	tasks    []model.Task

	filter model.Filter
	edit   editSlot
	drag   dragState
	helper model.Helper
}

// NewManager returns a locked manager. renderer may be nil.
func NewManager(p Persistence, renderer Renderer) *Manager {
	m := &Manager{
		store:    p,
		renderer: renderer,
		now:      time.Now,
		jitter:   func() int64 { return rand.Int64N(1000) },
		filter:   model.FilterAll,
		tasks:    []model.Task{},
		helper:   model.Helper{Text: helpLocked},
	}
	return m
}

// NewStoreManager builds a manager persisting to b.
func NewStoreManager(b store.Backend, renderer Renderer) *Manager {
	return NewManager(store.NewCollections(b), renderer)
}

// SetAccess applies a session change from the login collaborator. The
// manager unlocks only when loggedIn is set and username is not blank.
func (m *Manager) SetAccess(loggedIn bool, username string) {
	username = model.NormalizeUsername(username)
	m.drag.clear()
	m.edit.clear()

	if loggedIn && username != "" {
		m.unlocked = true
		m.username = username
		m.loadByUser(username)
		m.setHelper(helpDefault, false)
	} else {
		m.unlocked = false
		m.username = ""
		m.key = ""
		m.tasks = []model.Task{}
		m.setHelper(helpLocked, false)
	}
	m.refresh()
}

// Locked reports whether no user is signed in.
func (m *Manager) Locked() bool {
	return !m.unlocked
}

// Username returns the normalized signed-in username.
func (m *Manager) Username() string {
	return m.username
}

// StorageKey returns the key the current collection persists under.
func (m *Manager) StorageKey() string {
	return m.key
}

// Tasks returns a copy of the full collection in stored order.
func (m *Manager) Tasks() []model.Task {
	out := make([]model.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// GetTask returns a task by id.
func (m *Manager) GetTask(id int64) (model.Task, error) {
	if i := m.indexOf(id); i >= 0 {
		return m.tasks[i], nil
	}
	return model.Task{}, ErrNotFound
}

// Filter returns the current filter mode.
func (m *Manager) Filter() model.Filter {
	return m.filter
}

// EditingID returns the task in edit mode.
func (m *Manager) EditingID() (int64, bool) {
	return m.edit.id, m.edit.active
}

// Helper returns the current helper message.
func (m *Manager) Helper() model.Helper {
	return m.helper
}

func (m *Manager) loadByUser(username string) {
	m.key = store.TodoKey(username)
	m.migrateLegacy(m.key)
	m.tasks = m.store.LoadCollection(m.key)
}

// migrateLegacy copies the unscoped collection to key when key has never
// been written, then erases the unscoped one.
func (m *Manager) migrateLegacy(key string) {
	if m.store.Exists(key) {
		return
	}
	if !m.store.Exists(store.TodosKey) {
		return
	}
	legacy := m.store.LoadCollection(store.TodosKey)
	if len(legacy) > 0 {
		if !m.store.SaveCollection(key, legacy) {
			log.Printf("app: migrate %d legacy tasks to %q: write failed", len(legacy), key)
		}
	}
	m.store.Erase(store.TodosKey)
	log.Printf("app: migrated %d legacy tasks to %q", len(legacy), key)
}

func (m *Manager) persist() {
	if m.key == "" {
		return
	}
	if !m.store.SaveCollection(m.key, m.tasks) {
		log.Printf("app: save %q failed; keeping in-memory changes", m.key)
	}
}

func (m *Manager) setHelper(text string, isErr bool) {
	m.helper = model.Helper{Text: text, IsError: isErr}
}

func (m *Manager) refresh() {
	if m.renderer != nil {
		m.renderer.Render(m.View())
	}
}

// guard reports ErrLocked and shows the locked helper while signed out.
func (m *Manager) guard() error {
	if m.unlocked {
		return nil
	}
	m.setHelper(helpLocked, true)
	m.refresh()
	return ErrLocked
}

func (m *Manager) indexOf(id int64) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
