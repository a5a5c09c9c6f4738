package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	maxRotatingBackups = 10
	documentVersion    = 1
)

var errNoValidBackup = errors.New("no valid backup found")

// document is the on-disk shape of a FileBackend.
type document struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

func newDocument() document {
	return document{Version: documentVersion, Entries: map[string]string{}}
}

// FileBackend keeps every key in one JSON document. Each operation re-reads
// the file under an exclusive lock so separate processes see each other's
// writes; the last writer wins.
type FileBackend struct {
	path   string
	lock   *flock.Flock
	status string
}

// OpenFile opens or creates the document at path. A corrupted document is
// recovered from the newest valid backup, or reset to empty.
func OpenFile(path string) (*FileBackend, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	b := &FileBackend{path: path, lock: flock.New(path + ".lock")}
	err := b.withLock(func() error {
		_, status, err := loadWithRecovery(b.path)
		b.status = status
		return err
	})
	if err != nil {
		return nil, err
	}
	if b.status != "" {
		log.Printf("store: %s", b.status)
	}
	return b, nil
}

// Status returns the recovery message produced while opening, if any.
func (b *FileBackend) Status() string {
	return b.status
}

// Path returns the document path.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Get(key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := b.withLock(func() error {
		doc, _, err := loadWithRecovery(b.path)
		if err != nil {
			return err
		}
		value, ok = doc.Entries[key]
		return nil
	})
	return value, ok, err
}

func (b *FileBackend) Set(key, value string) error {
	return b.withLock(func() error {
		doc, _, err := loadWithRecovery(b.path)
		if err != nil {
			return err
		}
		doc.Entries[key] = value
		return autosave(b.path, doc)
	})
}

func (b *FileBackend) Delete(key string) error {
	return b.withLock(func() error {
		doc, _, err := loadWithRecovery(b.path)
		if err != nil {
			return err
		}
		if _, ok := doc.Entries[key]; !ok {
			return nil
		}
		delete(doc.Entries, key)
		return autosave(b.path, doc)
	})
}

func (b *FileBackend) Close() error {
	return b.lock.Close()
}

func (b *FileBackend) withLock(fn func() error) error {
	if err := b.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", b.path, err)
	}
	defer func() {
		_ = b.lock.Unlock()
	}()
	return fn()
}

// loadDocument reads a document. A missing file is an empty document.
func loadDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newDocument(), nil
		}
		return document{}, err
	}
	return decodeDocument(data)
}

// loadWithRecovery loads the document and, when it is corrupted, moves it
// aside and restores the newest valid backup. The returned message is
// empty unless recovery happened.
func loadWithRecovery(path string) (document, string, error) {
	doc, err := loadDocument(path)
	if err == nil {
		return doc, "", nil
	}
	if !isCorruptDocumentError(err) {
		return document{}, "", err
	}

	corruptPath, moveErr := moveCorruptFile(path)
	if moveErr != nil {
		return document{}, "", fmt.Errorf("move corrupted file: %w", moveErr)
	}

	recovered, backupPath, backupErr := loadLatestValidBackup(path)
	if backupErr == nil {
		if err := writeDocument(path, recovered); err != nil {
			return document{}, "", fmt.Errorf("restore backup: %w", err)
		}
		msg := fmt.Sprintf("corrupted storage recovered from %s", filepath.Base(backupPath))
		if corruptPath != "" {
			msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
		}
		return recovered, msg, nil
	}
	if !errors.Is(backupErr, errNoValidBackup) {
		return document{}, "", fmt.Errorf("inspect backups: %w", backupErr)
	}

	empty := newDocument()
	if err := writeDocument(path, empty); err != nil {
		return document{}, "", fmt.Errorf("reset storage after corruption: %w", err)
	}
	msg := "corrupted storage without a valid backup; started empty"
	if corruptPath != "" {
		msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
	}
	return empty, msg, nil
}

// autosave writes through a temporary file and an atomic rename, keeping a
// latest backup (.bak) and a rotating timestamped set.
func autosave(path string, doc document) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	if err := backup(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func decodeDocument(data []byte) (document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, err
	}
	if doc.Entries == nil {
		doc.Entries = map[string]string{}
	}
	if doc.Version == 0 {
		doc.Version = documentVersion
	}
	return doc, nil
}

func writeDocument(path string, doc document) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
		return err
	}

	timestamp := time.Now().UTC().Format("20060102-150405.000000000")
	rotatingPath := fmt.Sprintf("%s.bak.%s", path, timestamp)
	if err := os.WriteFile(rotatingPath, data, 0o644); err != nil {
		return err
	}

	return pruneRotatingBackups(path)
}

func pruneRotatingBackups(path string) error {
	files, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return err
	}
	if len(files) <= maxRotatingBackups {
		return nil
	}

	sort.Strings(files)
	for _, old := range files[:len(files)-maxRotatingBackups] {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func loadLatestValidBackup(path string) (document, string, error) {
	candidates := make([]string, 0, maxRotatingBackups+1)
	latest := path + ".bak"
	if _, err := os.Stat(latest); err == nil {
		candidates = append(candidates, latest)
	}
	rotating, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		return document{}, "", err
	}
	candidates = append(candidates, rotating...)
	if len(candidates) == 0 {
		return document{}, "", errNoValidBackup
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		iInfo, iErr := os.Stat(candidates[i])
		jInfo, jErr := os.Stat(candidates[j])
		if iErr != nil || jErr != nil {
			return candidates[i] > candidates[j]
		}
		return iInfo.ModTime().After(jInfo.ModTime())
	})

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		doc, err := decodeDocument(data)
		if err != nil {
			continue
		}
		return doc, candidate, nil
	}

	return document{}, "", errNoValidBackup
}

func moveCorruptFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	timestamp := time.Now().UTC().Format("20060102-150405")
	corruptPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.corrupt-%s%s", name, timestamp, ext))
	if err := os.Rename(path, corruptPath); err != nil {
		return "", err
	}
	return corruptPath, nil
}

func isCorruptDocumentError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
