package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func ledgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "processed.json")
}

func TestMissingFileIsEmptySet(t *testing.T) {
	t.Parallel()

	ledger, err := NewFileLedger(ledgerPath(t), nil)
	if err != nil {
		t.Fatalf("NewFileLedger: %v", err)
	}

	ok, err := ledger.Contains(context.Background(), "2301.08727")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Fatal("empty ledger should contain nothing")
	}
}

func TestRecordRoundTripAcrossProcesses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := ledgerPath(t)

	first, err := NewFileLedger(path, nil)
	if err != nil {
		t.Fatalf("NewFileLedger: %v", err)
	}
	if err := first.Record(ctx, "2301.08727"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Fresh instance simulates the next run.
	second, err := NewFileLedger(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	ok, err := second.Contains(ctx, "2301.08727")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Fatal("recorded id lost across reload")
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := ledgerPath(t)

	ledger, err := NewFileLedger(path, nil)
	if err != nil {
		t.Fatalf("NewFileLedger: %v", err)
	}

	if err := ledger.Record(ctx, "2301.08727"); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := ledger.Record(ctx, "2301.08727"); err != nil {
		t.Fatalf("second Record: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if got := strings.Count(string(raw), "2301.08727"); got != 1 {
		t.Fatalf("id persisted %d times, want 1: %s", got, raw)
	}
}

func TestCorruptLedgerDegradesToEmpty(t *testing.T) {
	t.Parallel()

	path := ledgerPath(t)
	if err := os.WriteFile(path, []byte(`["2301.08727",`), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	ledger, err := NewFileLedger(path, nil)
	if err != nil {
		t.Fatalf("corrupt ledger must not be fatal: %v", err)
	}

	ok, err := ledger.Contains(context.Background(), "2301.08727")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if ok {
		t.Fatal("corrupt ledger should be treated as empty")
	}

	// Processing proceeds: the next record rewrites a valid file.
	if err := ledger.Record(context.Background(), "2405.11111"); err != nil {
		t.Fatalf("Record after corruption: %v", err)
	}
	reloaded, err := NewFileLedger(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	ok, _ = reloaded.Contains(context.Background(), "2405.11111")
	if !ok {
		t.Fatal("rewritten ledger lost the new id")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	path := ledgerPath(t)
	ledger, err := NewFileLedger(path, nil)
	if err != nil {
		t.Fatalf("NewFileLedger: %v", err)
	}
	if err := ledger.Record(context.Background(), "2301.08727"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(path) {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}
