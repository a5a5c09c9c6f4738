package store

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"dashtodo/model"
)

func mustOpenFile(t *testing.T, path string) *FileBackend {
	t.Helper()
	b, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open file backend failed: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func mustSet(t *testing.T, b Backend, key, value string) {
	t.Helper()
	if err := b.Set(key, value); err != nil {
		t.Fatalf("set %q failed: %v", key, err)
	}
}

func TestFileGetMissingKey(t *testing.T) {
	b := mustOpenFile(t, filepath.Join(t.TempDir(), "storage.json"))

	v, ok, err := b.Get("nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok || v != "" {
		t.Fatalf("expected missing key, got ok=%v value=%q", ok, v)
	}
}

func TestFileSetIsVisibleToOtherHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	first := mustOpenFile(t, path)
	second := mustOpenFile(t, path)

	mustSet(t, first, "todo.username", "Alice")

	v, ok, err := second.Get("todo.username")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || v != "Alice" {
		t.Fatalf("expected value written by first handle, got ok=%v value=%q", ok, v)
	}

	if err := second.Delete("todo.username"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if Has(first, "todo.username") {
		t.Fatalf("expected key deleted through second handle to be gone")
	}
}

func TestFileAutosaveCreatesBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	b := mustOpenFile(t, path)

	mustSet(t, b, "k", "old")
	mustSet(t, b, "k", "new")

	data, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup failed: %v", err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		t.Fatalf("decode backup failed: %v", err)
	}
	if doc.Entries["k"] != "old" {
		t.Fatalf("expected backup to hold previous value, got %q", doc.Entries["k"])
	}
	if got := GetText(b, "k", ""); got != "new" {
		t.Fatalf("expected latest value new, got %q", got)
	}
}

func TestFileRotatingBackupsArePruned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	b := mustOpenFile(t, path)

	for i := 0; i < 15; i++ {
		mustSet(t, b, "k", fmt.Sprintf("%d", i))
		time.Sleep(1 * time.Millisecond)
	}

	files, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		t.Fatalf("glob rotating backups failed: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected rotating backups, found none")
	}
	if len(files) > maxRotatingBackups {
		t.Fatalf("expected at most %d rotating backups, got %d", maxRotatingBackups, len(files))
	}
}

func TestOpenFileRecoversFromBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storage.json")
	b := mustOpenFile(t, path)
	mustSet(t, b, "k", "v1")
	mustSet(t, b, "k", "v2")
	mustSet(t, b, "k", "v3")
	_ = b.Close()

	if err := os.WriteFile(path, []byte("{invalid"), 0o644); err != nil {
		t.Fatalf("corrupt write failed: %v", err)
	}

	recovered := mustOpenFile(t, path)
	if recovered.Status() == "" {
		t.Fatalf("expected recovery status message, got empty")
	}
	if got := GetText(recovered, "k", ""); got != "v2" {
		t.Fatalf("expected recovery from latest backup (v2), got %q", got)
	}

	corruptFiles, err := filepath.Glob(filepath.Join(dir, "storage.corrupt-*.json"))
	if err != nil {
		t.Fatalf("glob corrupt files failed: %v", err)
	}
	if len(corruptFiles) != 1 {
		t.Fatalf("expected exactly one moved corrupt file, got %d", len(corruptFiles))
	}
}

func TestOpenFileWithoutBackupStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{bad json"), 0o644); err != nil {
		t.Fatalf("write corrupt state failed: %v", err)
	}

	b := mustOpenFile(t, path)
	if b.Status() == "" {
		t.Fatalf("expected recovery status message")
	}
	if Has(b, "anything") {
		t.Fatalf("expected empty storage after recovery")
	}

	doc, err := loadDocument(path)
	if err != nil {
		t.Fatalf("load persisted empty document failed: %v", err)
	}
	if !reflect.DeepEqual(newDocument(), doc) {
		t.Fatalf("expected persisted empty document, got %+v", doc)
	}
}

func TestSQLiteSetGetDelete(t *testing.T) {
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "storage.db"))
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	defer b.Close()

	if Has(b, "k") {
		t.Fatalf("expected empty database")
	}
	mustSet(t, b, "k", "one")
	mustSet(t, b, "k", "two")
	if got := GetText(b, "k", ""); got != "two" {
		t.Fatalf("expected upserted value two, got %q", got)
	}
	if !Remove(b, "k") {
		t.Fatalf("remove failed")
	}
	if Has(b, "k") {
		t.Fatalf("expected key removed")
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := Open("floppy", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown backend kind")
	}
}

func TestHelpersReportWriteFailures(t *testing.T) {
	m := NewMemory()
	m.FailWrites(true)

	if SetText(m, "k", "v") {
		t.Fatalf("expected SetText to report failure")
	}
	if SetJSON(m, "k", []int{1}) {
		t.Fatalf("expected SetJSON to report failure")
	}
	if Remove(m, "k") {
		t.Fatalf("expected Remove to report failure")
	}
	if got := GetText(m, "k", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for missing key, got %q", got)
	}
}

func TestTodoKey(t *testing.T) {
	if got := TodoKey("  Alice  "); got != "todo.items:alice" {
		t.Fatalf("unexpected key %q", got)
	}
	if TodoKey("Alice") != TodoKey("alice ") {
		t.Fatalf("expected casing and whitespace variants to share a key")
	}
	if got := TodoKey("Mary   Ann"); got != "todo.items:mary ann" {
		t.Fatalf("expected collapsed whitespace in key, got %q", got)
	}
	if got := TodoKey("   "); got != TodosKey {
		t.Fatalf("expected legacy key for empty username, got %q", got)
	}
}

func TestCollectionsSaveThenLoad(t *testing.T) {
	c := NewCollections(NewMemory())
	want := []model.Task{
		{ID: 2, Text: "second", Done: true, CreatedAt: "2026-02-19T12:00:00.000Z"},
		{ID: 1, Text: "first", CreatedAt: "2026-02-19T11:00:00.000Z"},
	}

	if c.Exists("todo.items:bob") {
		t.Fatalf("expected no collection before save")
	}
	if !c.SaveCollection("todo.items:bob", want) {
		t.Fatalf("save failed")
	}
	if !c.Exists("todo.items:bob") {
		t.Fatalf("expected collection after save")
	}
	got := c.LoadCollection("todo.items:bob")
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("save/load mismatch\nwant=%+v\ngot=%+v", want, got)
	}
	if !c.Erase("todo.items:bob") || c.Exists("todo.items:bob") {
		t.Fatalf("expected erase to remove the collection")
	}
}

func TestDecodeTasksDiscardsNonArrays(t *testing.T) {
	now := time.Date(2026, 2, 19, 12, 30, 0, 0, time.UTC)
	for _, raw := range []string{"", "null", "{}", `"text"`, "42", "{broken"} {
		got := DecodeTasks([]byte(raw), now)
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty collection for %q, got %+v", raw, got)
		}
	}
}

func TestDecodeTasksNormalizesLegacyRecords(t *testing.T) {
	now := time.Date(2026, 2, 19, 12, 30, 0, 0, time.UTC)
	legacy := `[
  {"id": 11, "text": "kept", "done": true, "createdAt": "2026-01-01T00:00:00.000Z"},
  {"id": "12", "text": "string id", "done": 1},
  {"text": "no id", "done": ""},
  {"id": "abc", "text": "bad id", "done": "yes"},
  {"id": 13, "done": false},
  {"id": 14, "text": 99},
  null,
  "loose string",
  7
]`

	got := DecodeTasks([]byte(legacy), now)
	if len(got) != 4 {
		t.Fatalf("expected 4 kept records, got %d: %+v", len(got), got)
	}

	if got[0] != (model.Task{ID: 11, Text: "kept", Done: true, CreatedAt: "2026-01-01T00:00:00.000Z"}) {
		t.Fatalf("unexpected first record %+v", got[0])
	}
	if got[1].ID != 12 || !got[1].Done {
		t.Fatalf("expected numeric string id and truthy done, got %+v", got[1])
	}
	if got[1].CreatedAt != "2026-02-19T12:30:00.000Z" {
		t.Fatalf("expected createdAt defaulted to now, got %q", got[1].CreatedAt)
	}
	if got[2].ID != now.UnixMilli() || got[2].Done {
		t.Fatalf("expected fallback id and falsy done, got %+v", got[2])
	}
	if got[3].ID == got[2].ID {
		t.Fatalf("expected fallback ids to stay unique, both are %d", got[3].ID)
	}
	if !got[3].Done {
		t.Fatalf("expected non-empty string done to be truthy")
	}
}

func TestDecodeTasksRejectsOutOfRangeIDs(t *testing.T) {
	now := time.Date(2026, 2, 19, 12, 30, 0, 0, time.UTC)
	legacy := `[
  {"id": 1e300, "text": "huge"},
  {"id": "-1e19", "text": "huge negative string"},
  {"id": 9223372036854775807, "text": "rounds past max"},
  {"id": 42, "text": "in range"}
]`

	got := DecodeTasks([]byte(legacy), now)
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d: %+v", len(got), got)
	}
	fallback := now.UnixMilli()
	for i, want := range []int64{fallback, fallback + 1, fallback + 2, 42} {
		if got[i].ID != want {
			t.Fatalf("record %d (%q): expected id %d, got %d", i, got[i].Text, want, got[i].ID)
		}
	}
}

func TestDecodeTasksKeepsTruthyCreatedAt(t *testing.T) {
	now := time.Date(2026, 2, 19, 12, 30, 0, 0, time.UTC)
	stamp := "2026-02-19T12:30:00.000Z"
	legacy := `[
  {"id": 1, "text": "millis", "createdAt": 1767225600000},
  {"id": 2, "text": "flag", "createdAt": true},
  {"id": 3, "text": "zero", "createdAt": 0},
  {"id": 4, "text": "false", "createdAt": false},
  {"id": 5, "text": "null", "createdAt": null},
  {"id": 6, "text": "empty", "createdAt": ""}
]`

	got := DecodeTasks([]byte(legacy), now)
	want := []string{"1767225600000", "true", stamp, stamp, stamp, stamp}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].CreatedAt != want[i] {
			t.Fatalf("record %q: expected createdAt %q, got %q", got[i].Text, want[i], got[i].CreatedAt)
		}
	}
}
