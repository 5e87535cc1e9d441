package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"ArxivSummarizer/internal/domain"
	"ArxivSummarizer/internal/ports"
)

// FileLedger persists the processed set as a JSON array of identifier
// strings. A missing file is an empty set; a corrupt file degrades to an
// empty set with a warning so one bad byte cannot block future processing.
type FileLedger struct {
	path   string
	logger *slog.Logger

	mu  sync.Mutex
	ids map[domain.PaperID]struct{}
}

var _ ports.Ledger = (*FileLedger)(nil)

// NewFileLedger loads the set at path, degrading on corruption.
func NewFileLedger(path string, logger *slog.Logger) (*FileLedger, error) {
	ledger := &FileLedger{
		path:   path,
		logger: logger,
		ids:    map[domain.PaperID]struct{}{},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		if logger != nil {
			logger.Warn("ledger corrupt, treating as empty", "path", path, "error", err)
		}
		return ledger, nil
	}

	for _, id := range ids {
		ledger.ids[domain.PaperID(id)] = struct{}{}
	}

	return ledger, nil
}

// Contains reports whether id has already been processed.
func (l *FileLedger) Contains(_ context.Context, id domain.PaperID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.ids[id]
	return ok, nil
}

// Record adds id to the set and persists immediately. Adding an
// already-present id is a no-op.
func (l *FileLedger) Record(_ context.Context, id domain.PaperID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[id]; ok {
		return nil
	}

	l.ids[id] = struct{}{}
	if err := l.save(); err != nil {
		delete(l.ids, id)
		return err
	}

	return nil
}

// save writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write cannot truncate the ledger.
func (l *FileLedger) save() error {
	ids := make([]string, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger: %w", err)
	}

	return nil
}
