package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewScannerRejectsMissingRoot(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "nope"), "")
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if !IsFatal(err) {
		t.Errorf("expected fatal error, got %v", err)
	}
}

func TestNewScannerRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFile(t, file)

	if _, err := NewScanner(file, ""); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}

func TestScanFindsPlaceholdersAcrossSubtree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Music.cloudf"))
	writeFile(t, filepath.Join(root, "Documents", "Taxes.cloudf"))
	writeFile(t, filepath.Join(root, "Documents", "deep", "nested", "Old.cloudf"))
	writeFile(t, filepath.Join(root, "Documents", "notes.txt"))
	writeFile(t, filepath.Join(root, "readme.md"))

	scanner, err := NewScanner(root, "")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	entries, err := scanner.Scan(context.Background(), 3)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(entries), entries)
	}
	for _, entry := range entries {
		if !filepath.IsAbs(entry.Path) {
			t.Errorf("entry path %s is not absolute", entry.Path)
		}
		if entry.Cycle != 3 {
			t.Errorf("entry %s has cycle %d, want 3", entry.Path, entry.Cycle)
		}
	}
}

func TestScanMatchesPlaceholderDirectoriesWithoutDescending(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Pictures.cloudf")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "inner.cloudf"))

	scanner, err := NewScanner(root, "")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	entries, err := scanner.Scan(context.Background(), 1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %v", len(entries), entries)
	}
	if entries[0].Path != dir {
		t.Errorf("expected %s, got %s", dir, entries[0].Path)
	}
}

func TestScanIsFreshEachCall(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Stale.cloudf")
	writeFile(t, path)

	scanner, err := NewScanner(root, "")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	entries, err := scanner.Scan(context.Background(), 1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	// Materialized between scans: the entry must not linger in any cache.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	entries, err = scanner.Scan(context.Background(), 2)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries after removal, got %d", len(entries))
	}
}

func TestScanHonorsCustomSuffix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "video.cloud"))
	writeFile(t, filepath.Join(root, "folder.cloudf"))

	scanner, err := NewScanner(root, ".cloud")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	entries, err := scanner.Scan(context.Background(), 1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %v", len(entries), entries)
	}
	if filepath.Base(entries[0].Path) != "video.cloud" {
		t.Errorf("unexpected entry %s", entries[0].Path)
	}
}

func TestScanSkipsUnreadableDirectories(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits work differently on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission checks")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Reachable.cloudf"))

	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "Hidden.cloudf"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	scanner, err := NewScanner(root, "")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	entries, err := scanner.Scan(context.Background(), 1)
	if err != nil {
		t.Fatalf("an unreadable subtree must not fail the scan: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 reachable entry, got %d: %v", len(entries), entries)
	}
	if filepath.Base(entries[0].Path) != "Reachable.cloudf" {
		t.Errorf("unexpected entry %s", entries[0].Path)
	}
}

func TestScanStopsOnCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cloudf"))

	scanner, err := NewScanner(root, "")
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := scanner.Scan(ctx, 1); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
