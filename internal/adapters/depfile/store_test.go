package depfile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.trai.ch/weft/internal/adapters/depfile"
	"go.trai.ch/weft/internal/core/domain"
)

func TestStore_WriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := depfile.NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	d := domain.Depfile{
		Inputs:  []string{"lib/main.dart"},
		Outputs: []string{"build/main.dart.js"},
	}
	if err := store.Write("dart2js.d", d); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// The depfile is a plain make-rule file an external scheduler can read.
	raw, err := os.ReadFile(filepath.Join(tmpDir, "dart2js.d"))
	if err != nil {
		t.Fatalf("depfile not written: %v", err)
	}
	if string(raw) != "build/main.dart.js: lib/main.dart\n" {
		t.Errorf("unexpected depfile contents: %q", raw)
	}

	got, err := store.Read("dart2js.d")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got == nil {
		t.Fatal("Read returned nil")
	}
	if len(got.Inputs) != 1 || got.Inputs[0] != "lib/main.dart" {
		t.Errorf("unexpected inputs: %v", got.Inputs)
	}
}

func TestStore_Read_Missing(t *testing.T) {
	store, err := depfile.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	got, err := store.Read("absent.d")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing depfile, got %+v", got)
	}
}

func TestStore_RecordPersistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := depfile.NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore 1 failed: %v", err)
	}

	rec := domain.TargetRecord{
		TargetName:  "dart2js",
		InputDigest: "abc123",
		Timestamp:   time.Now(),
	}
	if err := store1.PutRecord(rec); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	// A new store instance over the same directory sees the record.
	store2, err := depfile.NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore 2 failed: %v", err)
	}

	got, err := store2.GetRecord("dart2js")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetRecord returned nil")
	}
	if got.InputDigest != "abc123" {
		t.Errorf("expected digest abc123, got %q", got.InputDigest)
	}

	missing, err := store2.GetRecord("unknown")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown target, got %+v", missing)
	}
}
