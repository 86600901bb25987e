package database

import (
	"testing"
	"testing/fstest"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_create_assessments.up.sql":   {Data: []byte("CREATE TABLE b ();")},
		"000002_create_assessments.down.sql": {Data: []byte("DROP TABLE b;")},
		"000001_create_templates.up.sql":     {Data: []byte("CREATE TABLE a ();")},
		"000001_create_templates.down.sql":   {Data: []byte("DROP TABLE a;")},
		"000003_only_down.down.sql":          {Data: []byte("SELECT 1;")},
		"README.md":                          {Data: []byte("ignored")},
	}

	migrations, err := ReadMigrations(fsys)
	if err != nil {
		t.Fatalf("ReadMigrations() failed: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "000001" || migrations[1].Version != "000002" {
		t.Errorf("migrations not sorted: %s, %s", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Title != "create templates" {
		t.Errorf("unexpected title %q", migrations[0].Title)
	}
	if migrations[1].DownSQL != "DROP TABLE b;" {
		t.Errorf("down SQL not attached: %q", migrations[1].DownSQL)
	}
	if migrations[0].Checksum != calculateChecksum("CREATE TABLE a ();") {
		t.Error("checksum mismatch")
	}
}

func TestCalculateChecksumStable(t *testing.T) {
	a := calculateChecksum("SELECT 1;")
	b := calculateChecksum("SELECT 1;")
	c := calculateChecksum("SELECT 2;")

	if a != b {
		t.Error("checksum should be deterministic")
	}
	if a == c {
		t.Error("different content should give different checksums")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
