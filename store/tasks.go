package store

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"dashtodo/model"
)

// Collections stores task collections as JSON arrays on top of a Backend.
type Collections struct {
	backend Backend
	now     func() time.Time
}

// NewCollections wraps b.
func NewCollections(b Backend) *Collections {
	return &Collections{backend: b, now: time.Now}
}

// LoadCollection returns the normalized collection at key. Missing,
// unreadable or malformed values load as an empty collection.
func (c *Collections) LoadCollection(key string) []model.Task {
	return DecodeTasks(GetRaw(c.backend, key), c.now())
}

// SaveCollection writes tasks at key and reports whether the write succeeded.
func (c *Collections) SaveCollection(key string, tasks []model.Task) bool {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return SetJSON(c.backend, key, tasks)
}

// Exists reports whether anything is stored at key, valid or not.
func (c *Collections) Exists(key string) bool {
	return Has(c.backend, key)
}

// Erase removes key.
func (c *Collections) Erase(key string) bool {
	return Remove(c.backend, key)
}

// DecodeTasks parses a stored collection. A value that is not a JSON array
// is discarded wholesale. Elements without a string text are dropped; the
// other fields are coerced and defaulted from now.
func DecodeTasks(data []byte, now time.Time) []model.Task {
	out := []model.Task{}
	if len(data) == 0 {
		return out
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return out
	}

	fallbackID := now.UnixMilli()
	createdAt := model.Timestamp(now)
	seen := make(map[int64]bool, len(elems))

	for _, raw := range elems {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			continue
		}
		text, ok := fields["text"].(string)
		if !ok {
			continue
		}

		id, ok := coerceID(fields["id"])
		if !ok {
			id = fallbackID
		}
		for seen[id] {
			id++
		}
		seen[id] = true

		task := model.Task{
			ID:        id,
			Text:      text,
			Done:      truthy(fields["done"]),
			CreatedAt: createdAt,
		}
		if s, ok := createdAtText(fields["createdAt"]); ok {
			task.CreatedAt = s
		}
		out = append(out, task)
	}
	return out
}

func coerceID(v any) (int64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if !x {
			return 0, false
		}
		f = 1
	default:
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	id := int64(f)
	if id == 0 {
		return 0, false
	}
	return id, true
}

// createdAtText keeps any truthy stored value, stringifying non-strings.
func createdAtText(v any) (string, bool) {
	if !truthy(v) {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return "true", true
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}
