package store

// Memory is an in-process Backend. Writes can be switched off to behave
// like storage that is full or disabled.
type Memory struct {
	entries    map[string]string
	failWrites bool
	writes     int
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{entries: map[string]string{}}
}

// FailWrites makes every later Set and Delete return ErrQuotaExceeded.
func (m *Memory) FailWrites(fail bool) {
	m.failWrites = fail
}

// Writes counts successful Set and Delete calls.
func (m *Memory) Writes() int {
	return m.writes
}

func (m *Memory) Get(key string) (string, bool, error) {
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	if m.failWrites {
		return ErrQuotaExceeded
	}
	m.entries[key] = value
	m.writes++
	return nil
}

func (m *Memory) Delete(key string) error {
	if m.failWrites {
		return ErrQuotaExceeded
	}
	delete(m.entries, key)
	m.writes++
	return nil
}

func (m *Memory) Close() error {
	return nil
}
