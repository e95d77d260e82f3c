package migration

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoad_OrdersByVersionAndSkipsOtherFiles(t *testing.T) {
	src := fstest.MapFS{
		"V2__second.sql": {Data: []byte("SELECT 2;")},
		"V1__first.sql":  {Data: []byte("SELECT 1;\n")},
		"README.md":      {Data: []byte("ignored")},
		"embed.go":       {Data: []byte("package migrations")},
	}

	migs, err := Load(src)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[0].Name != "first" {
		t.Fatalf("unexpected first migration: %+v", migs[0])
	}
	if migs[1].Version != 2 {
		t.Fatalf("unexpected second migration: %+v", migs[1])
	}
	if migs[0].SQL != "SELECT 1;" {
		t.Fatalf("expected trimmed sql got %q", migs[0].SQL)
	}
	if len(migs[0].Checksum) != 64 {
		t.Fatalf("expected sha256 hex checksum got %q", migs[0].Checksum)
	}
}

func TestLoad_RejectsDuplicateVersion(t *testing.T) {
	src := fstest.MapFS{
		"V1__a.sql": {Data: []byte("SELECT 1;")},
		"V1__b.sql": {Data: []byte("SELECT 2;")},
	}

	_, err := Load(src)
	if err == nil || !strings.Contains(err.Error(), "duplicate migration version") {
		t.Fatalf("expected duplicate version error got %v", err)
	}
}

func TestLoad_RejectsEmptyFile(t *testing.T) {
	src := fstest.MapFS{"V1__empty.sql": {Data: []byte("  \n")}}

	if _, err := Load(src); err == nil {
		t.Fatalf("expected error for empty migration")
	}
}
