package model

// MaxTaskLength is the maximum task text length, counted in runes.
const MaxTaskLength = 80

// Filter represents how tasks should be shown.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterActive Filter = "active"
	FilterDone   Filter = "done"
)

// Valid reports whether f is one of the known filter modes.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterDone:
		return true
	}
	return false
}

// Matches reports whether a task with the given done flag is visible under f.
func (f Filter) Matches(done bool) bool {
	switch f {
	case FilterActive:
		return !done
	case FilterDone:
		return done
	default:
		return true
	}
}

// Position is where a dragged task lands relative to its drop target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// Task is an individual todo item.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"createdAt"`
}

// Counts summarizes a collection.
type Counts struct {
	Active int `json:"active"`
	Done   int `json:"done"`
	Total  int `json:"total"`
}

// CountTasks tallies active and done tasks.
func CountTasks(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			c.Done++
		}
	}
	c.Active = c.Total - c.Done
	return c
}

// Item is a task as it should be drawn by a view.
type Item struct {
	Task
	Editing   bool     `json:"editing,omitempty"`
	Draggable bool     `json:"draggable,omitempty"`
	Dragging  bool     `json:"dragging,omitempty"`
	DropHint  Position `json:"dropHint,omitempty"`
}

// Helper is the one-line message shown under the input.
type Helper struct {
	Text    string `json:"text"`
	IsError bool   `json:"isError,omitempty"`
}

// View is everything a UI layer needs to draw the task list.
type View struct {
	Locked    bool   `json:"locked"`
	Username  string `json:"username,omitempty"`
	Filter    Filter `json:"filter"`
	Items     []Item `json:"items"`
	EditingID int64  `json:"editingId,omitempty"`
	Dragging  bool   `json:"dragging,omitempty"`
	DropAtEnd bool   `json:"dropAtEnd,omitempty"`
	Counts    Counts `json:"counts"`
	Summary   string `json:"summary"`
	Empty     string `json:"empty,omitempty"`
	Helper    Helper `json:"helper"`
	CanClear  bool   `json:"canClear"`
}

// TimestampLayout is the createdAt format: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
